package model

import (
	"time"
)

const DefaultMissionMaxStars = 3

type Mission struct {
	BaseModel
	Name         string      `gorm:"size:150;not null" json:"name"`
	Description  string      `gorm:"size:1000" json:"description"`
	DifficultyID *uint       `gorm:"index" json:"difficultyId,omitempty"`
	MaxStars     int         `gorm:"not null;default:3" json:"maxStars"`
	Experience   int         `gorm:"not null;default:0" json:"experience"`
	Difficulty   *Difficulty `gorm:"foreignKey:DifficultyID" json:"difficulty,omitempty"`
}

func (Mission) TableName() string {
	return "missions"
}

// MissionCompletion keeps the best result and the number of attempts a
// student made on a mission inside a course.
type MissionCompletion struct {
	ID            uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	StudentID     uint      `gorm:"uniqueIndex:idx_student_course_mission;not null" json:"studentId"`
	CourseID      uint      `gorm:"uniqueIndex:idx_student_course_mission;not null" json:"courseId"`
	MissionID     uint      `gorm:"uniqueIndex:idx_student_course_mission;not null" json:"missionId"`
	Stars         int       `gorm:"not null;default:0" json:"stars"`
	Experience    int       `gorm:"not null;default:0" json:"experience"`
	Attempts      int       `gorm:"not null;default:0" json:"attempts"`
	LastAttemptAt time.Time `json:"lastAttemptAt"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
	Mission       *Mission  `gorm:"foreignKey:MissionID" json:"mission,omitempty"`
	Student       *User     `gorm:"foreignKey:StudentID" json:"student,omitempty"`
}

func (MissionCompletion) TableName() string {
	return "mission_completions"
}
