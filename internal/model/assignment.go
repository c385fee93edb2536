package model

import (
	"time"
)

type MembershipStatus string

const (
	MembershipActive   MembershipStatus = "active"
	MembershipInactive MembershipStatus = "inactive"
)

func (s MembershipStatus) Valid() bool {
	return s == MembershipActive || s == MembershipInactive
}

// IsAccessible is the historical access rule: a membership grants access while
// it is active, and unconditionally once its course has been finalized.
func IsAccessible(status MembershipStatus, courseFinished bool) bool {
	return status == MembershipActive || courseFinished
}

// Membership is implemented by the user<->course join entities.
type Membership interface {
	MembershipStatus() MembershipStatus
	CourseFinished() bool
}

type TeacherAssignment struct {
	ID        uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID  uint             `gorm:"uniqueIndex:idx_teacher_course;not null" json:"courseId"`
	TeacherID uint             `gorm:"uniqueIndex:idx_teacher_course;not null" json:"teacherId"`
	Status    MembershipStatus `gorm:"size:10;not null;default:'active'" json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Course    *Course          `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Teacher   *User            `gorm:"foreignKey:TeacherID" json:"teacher,omitempty"`
}

func (TeacherAssignment) TableName() string {
	return "teacher_assignments"
}

func (a TeacherAssignment) MembershipStatus() MembershipStatus { return a.Status }

func (a TeacherAssignment) CourseFinished() bool {
	return a.Course != nil && a.Course.Finished()
}

type StudentEnrollment struct {
	ID        uint             `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID  uint             `gorm:"uniqueIndex:idx_student_course;not null" json:"courseId"`
	StudentID uint             `gorm:"uniqueIndex:idx_student_course;not null" json:"studentId"`
	Status    MembershipStatus `gorm:"size:10;not null;default:'active'" json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Course    *Course          `gorm:"foreignKey:CourseID" json:"course,omitempty"`
	Student   *User            `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (StudentEnrollment) TableName() string {
	return "student_enrollments"
}

func (e StudentEnrollment) MembershipStatus() MembershipStatus { return e.Status }

func (e StudentEnrollment) CourseFinished() bool {
	return e.Course != nil && e.Course.Finished()
}
