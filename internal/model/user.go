package model

import (
	"time"
)

type UserRole string

const (
	Student UserRole = "student"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

var UserRoles = []UserRole{Student, Teacher, Admin}

func (r UserRole) Valid() bool {
	for _, role := range UserRoles {
		if r == role {
			return true
		}
	}
	return false
}

type User struct {
	BaseModel
	Name      string    `gorm:"size:100;not null" json:"name"`
	LastName  string    `gorm:"size:100;not null" json:"lastName"`
	DNI       string    `gorm:"size:9;uniqueIndex;not null" json:"dni"`
	BirthDate time.Time `gorm:"not null" json:"birthDate"`
	Email     string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:100;not null" json:"-"`
	Role      UserRole  `gorm:"size:20;not null;default:'student';index" json:"role"`
}

func (User) TableName() string {
	return "users"
}
