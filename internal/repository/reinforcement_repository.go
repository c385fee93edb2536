package repository

import (
	"context"

	"algoritmia_backend/internal/model"

	"gorm.io/gorm"
)

type QuestionFilter struct {
	Pagination
	DifficultyID uint
	Grade        model.DifficultyGrade
}

var questionSortColumns = SortColumns{
	"id":        "id",
	"grade":     "grade",
	"createdAt": "created_at",
}

var sessionSortColumns = SortColumns{
	"id":        "id",
	"name":      "name",
	"timeLimit": "time_limit",
	"createdAt": "created_at",
}

type ReinforcementRepository struct {
	DB *gorm.DB
}

func NewReinforcementRepository(db *gorm.DB) *ReinforcementRepository {
	return &ReinforcementRepository{DB: db}
}

func (r *ReinforcementRepository) WithTx(tx *gorm.DB) *ReinforcementRepository {
	return &ReinforcementRepository{DB: tx}
}

func (r *ReinforcementRepository) CreateQuestion(ctx context.Context, q *model.Question) error {
	return r.DB.WithContext(ctx).Create(q).Error
}

func (r *ReinforcementRepository) FindQuestionsByIDs(ctx context.Context, ids []uint) ([]model.Question, error) {
	var qs []model.Question
	if len(ids) == 0 {
		return qs, nil
	}
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Order("id asc").Find(&qs).Error
	return qs, err
}

func (r *ReinforcementRepository) ListQuestions(ctx context.Context, f QuestionFilter) ([]model.Question, int64, error) {
	p := f.Pagination.Normalized()
	query := r.DB.WithContext(ctx).Model(&model.Question{})
	if f.DifficultyID > 0 {
		query = query.Where("difficulty_id = ?", f.DifficultyID)
	}
	if f.Grade != "" {
		query = query.Where("grade = ?", f.Grade)
	}
	query = applySearch(query, p.Search, "statement")

	var qs []model.Question
	total, err := findPage(query, p, questionSortColumns, "id", &qs)
	return qs, total, err
}

// CreateSession inserts the session and links the already stored questions
// without upserting them.
func (r *ReinforcementRepository) CreateSession(ctx context.Context, s *model.ReinforcementSession) error {
	return r.DB.WithContext(ctx).Omit("Difficulty", "Questions.*").Create(s).Error
}

func (r *ReinforcementRepository) FindSession(ctx context.Context, id uint) (*model.ReinforcementSession, error) {
	var s model.ReinforcementSession
	err := r.DB.WithContext(ctx).
		Preload("Questions", func(db *gorm.DB) *gorm.DB {
			return db.Unscoped().Order("questions.id asc")
		}).
		Preload("Difficulty", unscoped).
		First(&s, id).Error
	return &s, err
}

func (r *ReinforcementRepository) FindSessionUnscoped(ctx context.Context, id uint) (*model.ReinforcementSession, error) {
	var s model.ReinforcementSession
	err := r.DB.WithContext(ctx).Unscoped().First(&s, id).Error
	return &s, err
}

func (r *ReinforcementRepository) ListSessions(ctx context.Context, courseID uint, p Pagination) ([]model.ReinforcementSession, int64, error) {
	p = p.Normalized()
	query := r.DB.WithContext(ctx).Model(&model.ReinforcementSession{}).Where("course_id = ?", courseID)
	query = applySearch(query, p.Search, "name", "description")

	var ss []model.ReinforcementSession
	total, err := findPage(query, p, sessionSortColumns, "id", &ss, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Difficulty", unscoped).Preload("Questions", unscoped)
	})
	return ss, total, err
}

func (r *ReinforcementRepository) SoftDeleteSession(ctx context.Context, s *model.ReinforcementSession) error {
	return r.DB.WithContext(ctx).Delete(s).Error
}
