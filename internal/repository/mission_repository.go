package repository

import (
	"context"

	"algoritmia_backend/internal/model"

	"gorm.io/gorm"
)

type MissionFilter struct {
	Pagination
	DifficultyID uint
}

type CompletionFilter struct {
	Pagination
	CourseID  uint
	StudentID uint
	Stars     NumberRange
}

var missionSortColumns = SortColumns{
	"id":         "id",
	"name":       "name",
	"experience": "experience",
	"createdAt":  "created_at",
}

var completionSortColumns = SortColumns{
	"id":            "id",
	"stars":         "stars",
	"experience":    "experience",
	"attempts":      "attempts",
	"lastAttemptAt": "last_attempt_at",
}

type MissionRepository struct {
	DB *gorm.DB
}

func NewMissionRepository(db *gorm.DB) *MissionRepository {
	return &MissionRepository{DB: db}
}

func (r *MissionRepository) WithTx(tx *gorm.DB) *MissionRepository {
	return &MissionRepository{DB: tx}
}

func (r *MissionRepository) Create(ctx context.Context, m *model.Mission) error {
	return r.DB.WithContext(ctx).Omit("Difficulty").Create(m).Error
}

func (r *MissionRepository) FindByID(ctx context.Context, id uint) (*model.Mission, error) {
	var m model.Mission
	err := r.DB.WithContext(ctx).First(&m, id).Error
	return &m, err
}

func (r *MissionRepository) FindByIDUnscoped(ctx context.Context, id uint) (*model.Mission, error) {
	var m model.Mission
	err := r.DB.WithContext(ctx).Unscoped().First(&m, id).Error
	return &m, err
}

func (r *MissionRepository) Update(ctx context.Context, m *model.Mission) error {
	return r.DB.WithContext(ctx).Omit("Difficulty").Save(m).Error
}

func (r *MissionRepository) SoftDelete(ctx context.Context, m *model.Mission) error {
	return r.DB.WithContext(ctx).Delete(m).Error
}

func (r *MissionRepository) List(ctx context.Context, f MissionFilter) ([]model.Mission, int64, error) {
	p := f.Pagination.Normalized()
	query := r.DB.WithContext(ctx).Model(&model.Mission{})
	if f.DifficultyID > 0 {
		query = query.Where("difficulty_id = ?", f.DifficultyID)
	}
	query = applySearch(query, p.Search, "name", "description")

	var ms []model.Mission
	total, err := findPage(query, p, missionSortColumns, "id", &ms, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Difficulty", unscoped)
	})
	return ms, total, err
}

func (r *MissionRepository) FindCompletion(ctx context.Context, studentID, courseID, missionID uint) (*model.MissionCompletion, error) {
	var c model.MissionCompletion
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND mission_id = ?", studentID, courseID, missionID).
		First(&c).Error
	return &c, err
}

func (r *MissionRepository) SaveCompletion(ctx context.Context, c *model.MissionCompletion) error {
	return r.DB.WithContext(ctx).Omit("Mission", "Student").Save(c).Error
}

func (r *MissionRepository) ListCompletions(ctx context.Context, f CompletionFilter) ([]model.MissionCompletion, int64, error) {
	p := f.Pagination.Normalized()
	query := r.DB.WithContext(ctx).Model(&model.MissionCompletion{}).Where("course_id = ?", f.CourseID)
	if f.StudentID > 0 {
		query = query.Where("student_id = ?", f.StudentID)
	}
	query = applyRange(query, "stars", f.Stars)

	var cs []model.MissionCompletion
	total, err := findPage(query, p, completionSortColumns, "id", &cs, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Mission", unscoped).Preload("Student", unscoped)
	})
	return cs, total, err
}
