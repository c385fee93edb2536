package repository

import (
	"context"

	"algoritmia_backend/internal/model"

	"gorm.io/gorm"
)

var difficultySortColumns = SortColumns{
	"id":        "id",
	"topic":     "topic",
	"createdAt": "created_at",
}

type DifficultyRepository struct {
	DB *gorm.DB
}

func NewDifficultyRepository(db *gorm.DB) *DifficultyRepository {
	return &DifficultyRepository{DB: db}
}

func (r *DifficultyRepository) WithTx(tx *gorm.DB) *DifficultyRepository {
	return &DifficultyRepository{DB: tx}
}

func (r *DifficultyRepository) Create(ctx context.Context, d *model.Difficulty) error {
	return r.DB.WithContext(ctx).Create(d).Error
}

func (r *DifficultyRepository) FindByID(ctx context.Context, id uint) (*model.Difficulty, error) {
	var d model.Difficulty
	err := r.DB.WithContext(ctx).First(&d, id).Error
	return &d, err
}

func (r *DifficultyRepository) FindByIDUnscoped(ctx context.Context, id uint) (*model.Difficulty, error) {
	var d model.Difficulty
	err := r.DB.WithContext(ctx).Unscoped().First(&d, id).Error
	return &d, err
}

func (r *DifficultyRepository) Update(ctx context.Context, d *model.Difficulty) error {
	return r.DB.WithContext(ctx).Save(d).Error
}

func (r *DifficultyRepository) SoftDelete(ctx context.Context, d *model.Difficulty) error {
	return r.DB.WithContext(ctx).Delete(d).Error
}

func (r *DifficultyRepository) List(ctx context.Context, p Pagination) ([]model.Difficulty, int64, error) {
	p = p.Normalized()
	query := applySearch(r.DB.WithContext(ctx).Model(&model.Difficulty{}), p.Search, "topic", "description")

	var ds []model.Difficulty
	total, err := findPage(query, p, difficultySortColumns, "topic", &ds)
	return ds, total, err
}

func (r *DifficultyRepository) FindStudentDifficulty(ctx context.Context, studentID, courseID, difficultyID uint) (*model.StudentDifficulty, error) {
	var sd model.StudentDifficulty
	err := r.DB.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND difficulty_id = ?", studentID, courseID, difficultyID).
		First(&sd).Error
	return &sd, err
}

func (r *DifficultyRepository) SaveStudentDifficulty(ctx context.Context, sd *model.StudentDifficulty) error {
	return r.DB.WithContext(ctx).Omit("Difficulty").Save(sd).Error
}

// ListStudentDifficulties keeps grades whose difficulty was deleted later on.
func (r *DifficultyRepository) ListStudentDifficulties(ctx context.Context, studentID, courseID uint) ([]model.StudentDifficulty, error) {
	var sds []model.StudentDifficulty
	err := r.DB.WithContext(ctx).
		Preload("Difficulty", unscoped).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		Order("difficulty_id asc").
		Find(&sds).Error
	return sds, err
}
