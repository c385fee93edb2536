package repository

import (
	"context"

	"algoritmia_backend/internal/model"

	"gorm.io/gorm"
)

type StudentFilter struct {
	Pagination
	Status model.MembershipStatus
}

var studentSortColumns = SortColumns{
	"id":       "student_enrollments.id",
	"name":     "users.name",
	"lastName": "users.last_name",
	"dni":      "users.dni",
	"email":    "users.email",
	"status":   "student_enrollments.status",
}

// MembershipRepository stores teacher assignments and student enrollments.
type MembershipRepository struct {
	DB *gorm.DB
}

func NewMembershipRepository(db *gorm.DB) *MembershipRepository {
	return &MembershipRepository{DB: db}
}

func (r *MembershipRepository) WithTx(tx *gorm.DB) *MembershipRepository {
	return &MembershipRepository{DB: tx}
}

// The course is loaded unscoped so finalized courses stay visible to the
// access rule.
func (r *MembershipRepository) FindTeacherAssignment(ctx context.Context, teacherID, courseID uint) (*model.TeacherAssignment, error) {
	var a model.TeacherAssignment
	err := r.DB.WithContext(ctx).
		Preload("Course", unscoped).
		Where("teacher_id = ? AND course_id = ?", teacherID, courseID).
		First(&a).Error
	return &a, err
}

func (r *MembershipRepository) FindStudentEnrollment(ctx context.Context, studentID, courseID uint) (*model.StudentEnrollment, error) {
	var e model.StudentEnrollment
	err := r.DB.WithContext(ctx).
		Preload("Course", unscoped).
		Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&e).Error
	return &e, err
}

func (r *MembershipRepository) SaveTeacherAssignment(ctx context.Context, a *model.TeacherAssignment) error {
	return r.DB.WithContext(ctx).Omit("Course", "Teacher").Save(a).Error
}

func (r *MembershipRepository) SaveStudentEnrollment(ctx context.Context, e *model.StudentEnrollment) error {
	return r.DB.WithContext(ctx).Omit("Course", "Student").Save(e).Error
}

func memberCourse(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Course", unscoped).
		Preload("Course.Schedules", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Preload("Course.TeacherAssignments", func(db *gorm.DB) *gorm.DB {
			return db.Order("id asc")
		}).
		Preload("Course.TeacherAssignments.Teacher", liveUsers)
}

// ListTeacherAssignments returns every assignment of the teacher with the
// course and its relations loaded.
func (r *MembershipRepository) ListTeacherAssignments(ctx context.Context, teacherID uint) ([]model.TeacherAssignment, error) {
	var as []model.TeacherAssignment
	err := r.DB.WithContext(ctx).
		Scopes(memberCourse).
		Where("teacher_id = ?", teacherID).
		Order("id asc").
		Find(&as).Error
	return as, err
}

func (r *MembershipRepository) ListStudentEnrollments(ctx context.Context, studentID uint) ([]model.StudentEnrollment, error) {
	var es []model.StudentEnrollment
	err := r.DB.WithContext(ctx).
		Scopes(memberCourse).
		Where("student_id = ?", studentID).
		Order("id asc").
		Find(&es).Error
	return es, err
}

// ListCourseStudents pages the enrollments of a course. Search runs over the
// student's name, last name, dni and email.
func (r *MembershipRepository) ListCourseStudents(ctx context.Context, courseID uint, f StudentFilter) ([]model.StudentEnrollment, int64, error) {
	p := f.Pagination.Normalized()
	query := r.DB.WithContext(ctx).Model(&model.StudentEnrollment{}).
		Joins("JOIN users ON users.id = student_enrollments.student_id AND users.deleted_at IS NULL").
		Where("student_enrollments.course_id = ?", courseID)

	if f.Status != "" {
		query = query.Where("student_enrollments.status = ?", f.Status)
	}
	query = applySearch(query, p.Search, "users.name", "users.last_name", "users.dni", "users.email")

	var es []model.StudentEnrollment
	total, err := findPage(query, p, studentSortColumns, "lastName", &es, func(db *gorm.DB) *gorm.DB {
		return db.Preload("Student")
	})
	return es, total, err
}
