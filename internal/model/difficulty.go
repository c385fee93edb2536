package model

import (
	"time"
)

type DifficultyGrade string

const (
	GradeNone   DifficultyGrade = "none"
	GradeLow    DifficultyGrade = "low"
	GradeMedium DifficultyGrade = "medium"
	GradeHigh   DifficultyGrade = "high"
)

func (g DifficultyGrade) Valid() bool {
	switch g {
	case GradeNone, GradeLow, GradeMedium, GradeHigh:
		return true
	}
	return false
}

// Difficulty is a topic students may struggle with.
type Difficulty struct {
	BaseModel
	Topic       string `gorm:"size:100;not null" json:"topic"`
	Description string `gorm:"size:500" json:"description"`
}

func (Difficulty) TableName() string {
	return "difficulties"
}

// StudentDifficulty is the grade a student has for a difficulty within a course.
type StudentDifficulty struct {
	ID           uint            `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID    uint            `gorm:"uniqueIndex:idx_student_course_difficulty;not null" json:"studentId"`
	CourseID     uint            `gorm:"uniqueIndex:idx_student_course_difficulty;not null" json:"courseId"`
	DifficultyID uint            `gorm:"uniqueIndex:idx_student_course_difficulty;not null" json:"difficultyId"`
	Grade        DifficultyGrade `gorm:"size:10;not null;default:'none'" json:"grade"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	Difficulty   *Difficulty     `gorm:"foreignKey:DifficultyID" json:"difficulty,omitempty"`
}

func (StudentDifficulty) TableName() string {
	return "student_difficulties"
}
