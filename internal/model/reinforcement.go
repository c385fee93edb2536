package model

import (
	"gorm.io/datatypes"
)

const (
	MinSessionTimeLimit = 1
	MaxSessionTimeLimit = 180
)

// Question belongs to the reinforcement question bank.
type Question struct {
	BaseModel
	DifficultyID uint            `gorm:"index;not null" json:"difficultyId"`
	Grade        DifficultyGrade `gorm:"size:10;not null" json:"grade"`
	Statement    string          `gorm:"size:2000;not null" json:"statement"`
	Options      datatypes.JSON  `json:"options"`
	Answer       string          `gorm:"size:500;not null" json:"-"`
}

func (Question) TableName() string {
	return "questions"
}

// ReinforcementSession is a timed set of questions a teacher prepares for a
// course around one difficulty grade.
type ReinforcementSession struct {
	BaseModel
	CourseID     uint            `gorm:"index;not null" json:"courseId"`
	TeacherID    uint            `gorm:"index;not null" json:"teacherId"`
	DifficultyID uint            `gorm:"index;not null" json:"difficultyId"`
	Grade        DifficultyGrade `gorm:"size:10;not null" json:"grade"`
	Name         string          `gorm:"size:150;not null" json:"name"`
	Description  string          `gorm:"size:1000" json:"description"`
	TimeLimit    int             `gorm:"not null" json:"timeLimit"`
	Questions    []Question      `gorm:"many2many:reinforcement_session_questions" json:"questions,omitempty"`
	Difficulty   *Difficulty     `gorm:"foreignKey:DifficultyID" json:"difficulty,omitempty"`
}

func (ReinforcementSession) TableName() string {
	return "reinforcement_sessions"
}
