package model

import (
	"time"
)

type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

type Course struct {
	BaseModel
	Title              string              `gorm:"size:150;not null" json:"title"`
	Description        string              `gorm:"size:500" json:"description"`
	Password           string              `gorm:"size:100" json:"-"`
	Schedules          []CourseSchedule    `gorm:"foreignKey:CourseID" json:"schedules,omitempty"`
	TeacherAssignments []TeacherAssignment `gorm:"foreignKey:CourseID" json:"teacherAssignments,omitempty"`
	StudentEnrollments []StudentEnrollment `gorm:"foreignKey:CourseID" json:"studentEnrollments,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// Finished reports whether the course has been finalized (soft deleted).
func (c Course) Finished() bool {
	return c.DeletedAt.Valid
}

// CourseSchedule is one weekly slot of a course. Only the clock part of
// StartTime and EndTime is meaningful.
type CourseSchedule struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CourseID  uint      `gorm:"index;not null" json:"courseId"`
	Day       Weekday   `gorm:"size:10;not null" json:"day"`
	StartTime time.Time `gorm:"not null" json:"startTime"`
	EndTime   time.Time `gorm:"not null" json:"endTime"`
}

func (CourseSchedule) TableName() string {
	return "course_schedules"
}
