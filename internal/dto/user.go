package dto

import (
	"strings"
	"time"

	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/util"
)

type CreateUserRequest struct {
	Name            string `json:"name" binding:"required,max=100"`
	LastName        string `json:"lastName" binding:"required,max=100"`
	DNI             string `json:"dni" binding:"required,dni"`
	BirthDate       string `json:"birthDate" binding:"required,birthdate"`
	Email           string `json:"email" binding:"required,email,max=100"`
	Password        string `json:"password" binding:"required,min=6,max=72"`
	ConfirmPassword string `json:"confirmPassword" binding:"omitempty,eqfield=Password"`
	Role            string `json:"role" binding:"required,oneof=student teacher admin"`
}

// NormalizeEmail is the stored form of an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ToModel builds the user without its password hash.
func (r CreateUserRequest) ToModel() *model.User {
	birth, _ := time.Parse(util.DateFormat, r.BirthDate)
	return &model.User{
		Name:      strings.TrimSpace(r.Name),
		LastName:  strings.TrimSpace(r.LastName),
		DNI:       r.DNI,
		BirthDate: birth,
		Email:     NormalizeEmail(r.Email),
		Role:      model.UserRole(r.Role),
	}
}

// UpdateUserRequest is the partial form: absent fields are left untouched,
// supplied ones get the full rule set.
type UpdateUserRequest struct {
	Name            *string `json:"name" binding:"omitnil,min=1,max=100"`
	LastName        *string `json:"lastName" binding:"omitnil,min=1,max=100"`
	DNI             *string `json:"dni" binding:"omitnil,dni"`
	BirthDate       *string `json:"birthDate" binding:"omitnil,birthdate"`
	Email           *string `json:"email" binding:"omitnil,email,max=100"`
	Password        *string `json:"password" binding:"omitnil,min=6,max=72"`
	ConfirmPassword *string `json:"confirmPassword" binding:"omitnil,eqfield=Password"`
	Role            *string `json:"role" binding:"omitnil,oneof=student teacher admin"`
}

// Apply copies the supplied fields onto u. The password is handled by the
// caller since it needs hashing.
func (r UpdateUserRequest) Apply(u *model.User) {
	if r.Name != nil {
		u.Name = strings.TrimSpace(*r.Name)
	}
	if r.LastName != nil {
		u.LastName = strings.TrimSpace(*r.LastName)
	}
	if r.DNI != nil {
		u.DNI = *r.DNI
	}
	if r.BirthDate != nil {
		u.BirthDate, _ = time.Parse(util.DateFormat, *r.BirthDate)
	}
	if r.Email != nil {
		u.Email = NormalizeEmail(*r.Email)
	}
	if r.Role != nil {
		u.Role = model.UserRole(*r.Role)
	}
}
