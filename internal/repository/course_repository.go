package repository

import (
	"context"

	"algoritmia_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	CourseStatusActive   = "active"
	CourseStatusFinished = "finished"
	CourseStatusAll      = "all"
)

type CourseFilter struct {
	Pagination
	Status string
	Day    model.Weekday
}

var courseSortColumns = SortColumns{
	"id":        "courses.id",
	"title":     "courses.title",
	"createdAt": "courses.created_at",
}

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) WithTx(tx *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: tx}
}

// Create inserts the course together with its schedules and assignments.
func (r *CourseRepository) Create(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Create(course).Error
}

// withRelations preloads what the course normalizer needs.
func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Schedules", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Preload("TeacherAssignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Preload("TeacherAssignments.Teacher", liveUsers)
}

// FindByID loads a course with its relations. Finalized courses are only
// returned when includeFinished is set; deleted teachers never are.
func (r *CourseRepository) FindByID(ctx context.Context, id uint, includeFinished bool) (*model.Course, error) {
	var course model.Course
	query := r.DB.WithContext(ctx)
	if includeFinished {
		query = query.Unscoped()
	}
	err := query.Scopes(withRelations).First(&course, id).Error
	return &course, err
}

func (r *CourseRepository) Update(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(course).Error
}

// ReplaceSchedules swaps every schedule of the course for schedules.
func (r *CourseRepository) ReplaceSchedules(ctx context.Context, courseID uint, schedules []model.CourseSchedule) error {
	db := r.DB.WithContext(ctx)
	if err := db.Where("course_id = ?", courseID).Delete(&model.CourseSchedule{}).Error; err != nil {
		return err
	}
	if len(schedules) == 0 {
		return nil
	}
	for i := range schedules {
		schedules[i].ID = 0
		schedules[i].CourseID = courseID
	}
	return db.Create(&schedules).Error
}

func (r *CourseRepository) SoftDelete(ctx context.Context, course *model.Course) error {
	return r.DB.WithContext(ctx).Delete(course).Error
}

func (r *CourseRepository) List(ctx context.Context, f CourseFilter) ([]model.Course, int64, error) {
	p := f.Pagination.Normalized()
	query := r.DB.WithContext(ctx).Model(&model.Course{})

	switch f.Status {
	case CourseStatusFinished:
		query = query.Unscoped().Where("courses.deleted_at IS NOT NULL")
	case CourseStatusAll:
		query = query.Unscoped()
	}

	if f.Day != "" {
		query = query.Where("EXISTS (SELECT 1 FROM course_schedules cs WHERE cs.course_id = courses.id AND cs.day = ?)", f.Day)
	}
	query = applySearch(query, p.Search, "courses.title", "courses.description")

	var courses []model.Course
	total, err := findPage(query, p, courseSortColumns, "id", &courses, withRelations)
	return courses, total, err
}
