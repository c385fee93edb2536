package service

import (
	"context"

	"algoritmia_backend/internal/config"
	"algoritmia_backend/internal/dto"
	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/repository"
	"algoritmia_backend/internal/util"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type CourseService struct {
	DB             *gorm.DB
	CourseRepo     *repository.CourseRepository
	MembershipRepo *repository.MembershipRepository
	UserRepo       *repository.UserRepository
	AuditRepo      *repository.AuditRepository
	Guard          *AccessGuard
	Cfg            *config.Config
}

func NewCourseService(
	db *gorm.DB,
	courseRepo *repository.CourseRepository,
	membershipRepo *repository.MembershipRepository,
	userRepo *repository.UserRepository,
	auditRepo *repository.AuditRepository,
	guard *AccessGuard,
	cfg *config.Config,
) *CourseService {
	return &CourseService{
		DB:             db,
		CourseRepo:     courseRepo,
		MembershipRepo: membershipRepo,
		UserRepo:       userRepo,
		AuditRepo:      auditRepo,
		Guard:          guard,
		Cfg:            cfg,
	}
}

func (s *CourseService) find(ctx context.Context, id uint, includeFinished bool) (*model.Course, error) {
	course, err := s.CourseRepo.FindByID(ctx, id, includeFinished)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrCourseNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find course")
	}
	return course, nil
}

func (s *CourseService) List(ctx context.Context, f repository.CourseFilter) ([]dto.CourseView, int64, error) {
	courses, total, err := s.CourseRepo.List(ctx, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list courses")
	}
	return dto.NormalizeCourses(courses), total, nil
}

func (s *CourseService) Get(ctx context.Context, id uint) (*dto.CourseView, error) {
	course, err := s.find(ctx, id, true)
	if err != nil {
		return nil, err
	}
	v := dto.NormalizeCourse(course)
	return &v, nil
}

// requireRole loads the user and checks its role; field names the request
// field for the validation error.
func (s *CourseService) requireRole(ctx context.Context, id uint, role model.UserRole, field string) (*model.User, error) {
	user, err := s.UserRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find user")
	}
	if user.Role != role {
		return nil, util.FieldInvalid(field, "user %d is not a %s", id, role)
	}
	return user, nil
}

// Create stores the course, its schedules and its initial teacher
// assignments in one transaction.
func (s *CourseService) Create(ctx context.Context, actor model.Principal, req dto.CreateCourseRequest) (*dto.CourseView, error) {
	course := req.ToModel()

	schedules, err := dto.ToSchedules(req.Schedules)
	if err != nil {
		return nil, err
	}
	course.Schedules = schedules

	if len(req.TeacherIDs) > 0 {
		teachers, err := s.UserRepo.FindByIDs(ctx, req.TeacherIDs)
		if err != nil {
			return nil, errors.Wrap(err, "find teachers")
		}
		found := make(map[uint]model.UserRole, len(teachers))
		for _, t := range teachers {
			found[t.ID] = t.Role
		}
		for _, id := range req.TeacherIDs {
			if found[id] != model.Teacher {
				return nil, util.FieldInvalid("teacherIds", "user %d is not a teacher", id)
			}
			course.TeacherAssignments = append(course.TeacherAssignments, model.TeacherAssignment{
				TeacherID: id,
				Status:    model.MembershipActive,
			})
		}
	}

	if req.Password != "" {
		if course.Password, err = HashPassword(req.Password, s.Cfg.Security.BcryptCost); err != nil {
			return nil, err
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.CourseRepo.WithTx(tx).Create(ctx, course); err != nil {
			return errors.Wrap(err, "create course")
		}
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
			Table: "courses", RowID: course.ID, Op: model.AuditCreate, After: course,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, course.ID)
}

// Update applies a partial update. Supplied schedules replace the current ones.
// Finalized courses cannot be edited.
func (s *CourseService) Update(ctx context.Context, actor model.Principal, id uint, req dto.UpdateCourseRequest) (*dto.CourseView, error) {
	course, err := s.find(ctx, id, false)
	if err != nil {
		return nil, err
	}
	before := dto.NormalizeCourse(course)

	var schedules []model.CourseSchedule
	if req.Schedules != nil {
		if schedules, err = dto.ToSchedules(*req.Schedules); err != nil {
			return nil, err
		}
	}

	req.Apply(course)
	if req.Password != nil {
		course.Password = ""
		if *req.Password != "" {
			if course.Password, err = HashPassword(*req.Password, s.Cfg.Security.BcryptCost); err != nil {
				return nil, err
			}
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		courses := s.CourseRepo.WithTx(tx)
		if err := courses.Update(ctx, course); err != nil {
			return errors.Wrap(err, "update course")
		}
		if req.Schedules != nil {
			if err := courses.ReplaceSchedules(ctx, course.ID, schedules); err != nil {
				return errors.Wrap(err, "replace schedules")
			}
			course.Schedules = schedules
		}
		after := dto.NormalizeCourse(course)
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
			Table: "courses", RowID: course.ID, Op: model.AuditUpdate, Before: before, After: after,
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, course.ID)
}

// Delete finalizes the course. Finalizing it again is a no-op.
func (s *CourseService) Delete(ctx context.Context, actor model.Principal, id uint) error {
	course, err := s.find(ctx, id, true)
	if err != nil {
		return err
	}
	if course.Finished() {
		return nil
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.CourseRepo.WithTx(tx).SoftDelete(ctx, course); err != nil {
			return errors.Wrap(err, "finalize course")
		}
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
			Table: "courses", RowID: course.ID, Op: model.AuditDelete, Before: dto.NormalizeCourse(course),
		})
	})
}

// AssignTeacher creates the assignment or reactivates an inactive one.
func (s *CourseService) AssignTeacher(ctx context.Context, actor model.Principal, courseID, teacherID uint) (*model.TeacherAssignment, error) {
	if _, err := s.find(ctx, courseID, false); err != nil {
		return nil, err
	}
	if _, err := s.requireRole(ctx, teacherID, model.Teacher, "teacherId"); err != nil {
		return nil, err
	}

	var a *model.TeacherAssignment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		memberships := s.MembershipRepo.WithTx(tx)
		existing, err := memberships.FindTeacherAssignment(ctx, teacherID, courseID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			a = &model.TeacherAssignment{CourseID: courseID, TeacherID: teacherID, Status: model.MembershipActive}
			if err := memberships.SaveTeacherAssignment(ctx, a); err != nil {
				return conflictOr(err, "assign teacher")
			}
			return recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
				Table: "teacher_assignments", RowID: a.ID, Op: model.AuditCreate, After: a,
			})
		case err != nil:
			return errors.Wrap(err, "find assignment")
		}

		a = existing
		a.Course = nil
		if a.Status == model.MembershipActive {
			return nil
		}
		return s.saveTeacherStatus(ctx, tx, actor, a, model.MembershipActive)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *CourseService) saveTeacherStatus(ctx context.Context, tx *gorm.DB, actor model.Principal, a *model.TeacherAssignment, status model.MembershipStatus) error {
	before := *a
	a.Status = status
	if err := s.MembershipRepo.WithTx(tx).SaveTeacherAssignment(ctx, a); err != nil {
		return errors.Wrap(err, "update assignment")
	}
	return recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
		Table: "teacher_assignments", RowID: a.ID, Op: model.AuditUpdate, Before: before, After: a,
	})
}

func (s *CourseService) SetTeacherStatus(ctx context.Context, actor model.Principal, courseID, teacherID uint, status model.MembershipStatus) (*model.TeacherAssignment, error) {
	a, err := s.MembershipRepo.FindTeacherAssignment(ctx, teacherID, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrTeacherNotAssigned
	}
	if err != nil {
		return nil, errors.Wrap(err, "find assignment")
	}
	a.Course = nil
	if a.Status == status {
		return a, nil
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.saveTeacherStatus(ctx, tx, actor, a, status)
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

// EnrollStudent creates the enrollment or reactivates an inactive one.
func (s *CourseService) EnrollStudent(ctx context.Context, actor model.Principal, courseID, studentID uint) (*model.StudentEnrollment, error) {
	if _, err := s.find(ctx, courseID, false); err != nil {
		return nil, err
	}
	if _, err := s.requireRole(ctx, studentID, model.Student, "studentId"); err != nil {
		return nil, err
	}

	var e *model.StudentEnrollment
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		e, err = s.enroll(ctx, tx, actor, courseID, studentID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

func (s *CourseService) enroll(ctx context.Context, tx *gorm.DB, actor model.Principal, courseID, studentID uint) (*model.StudentEnrollment, error) {
	memberships := s.MembershipRepo.WithTx(tx)
	e, err := memberships.FindStudentEnrollment(ctx, studentID, courseID)
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		e = &model.StudentEnrollment{CourseID: courseID, StudentID: studentID, Status: model.MembershipActive}
		if err := memberships.SaveStudentEnrollment(ctx, e); err != nil {
			return nil, conflictOr(err, "enroll student")
		}
		return e, recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
			Table: "student_enrollments", RowID: e.ID, Op: model.AuditCreate, After: e,
		})
	case err != nil:
		return nil, errors.Wrap(err, "find enrollment")
	}

	e.Course = nil
	if e.Status == model.MembershipActive {
		return e, nil
	}
	return e, s.saveStudentStatus(ctx, tx, actor, e, model.MembershipActive)
}

func (s *CourseService) saveStudentStatus(ctx context.Context, tx *gorm.DB, actor model.Principal, e *model.StudentEnrollment, status model.MembershipStatus) error {
	before := *e
	e.Status = status
	if err := s.MembershipRepo.WithTx(tx).SaveStudentEnrollment(ctx, e); err != nil {
		return errors.Wrap(err, "update enrollment")
	}
	return recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
		Table: "student_enrollments", RowID: e.ID, Op: model.AuditUpdate, Before: before, After: e,
	})
}

func (s *CourseService) SetStudentStatus(ctx context.Context, actor model.Principal, courseID, studentID uint, status model.MembershipStatus) (*model.StudentEnrollment, error) {
	e, err := s.MembershipRepo.FindStudentEnrollment(ctx, studentID, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrStudentNotEnrolled
	}
	if err != nil {
		return nil, errors.Wrap(err, "find enrollment")
	}
	e.Course = nil
	if e.Status == status {
		return e, nil
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.saveStudentStatus(ctx, tx, actor, e, status)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// FindMyCourses lists the courses the teacher can access, active
// assignments first.
func (s *CourseService) FindMyCourses(ctx context.Context, p model.Principal) ([]dto.MemberCourseView, error) {
	as, err := s.MembershipRepo.ListTeacherAssignments(ctx, p.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "list assignments")
	}
	return dto.NormalizeTeacherCourses(as), nil
}

func (s *CourseService) StudentCourses(ctx context.Context, p model.Principal) ([]dto.MemberCourseView, error) {
	es, err := s.MembershipRepo.ListStudentEnrollments(ctx, p.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "list enrollments")
	}
	return dto.NormalizeStudentCourses(es), nil
}

// MemberCourse returns a course the principal has access to.
func (s *CourseService) MemberCourse(ctx context.Context, p model.Principal, courseID uint) (*dto.CourseView, error) {
	if err := s.Guard.CheckCourse(ctx, p, courseID); err != nil {
		return nil, err
	}
	return s.Get(ctx, courseID)
}

func (s *CourseService) CourseStudents(ctx context.Context, p model.Principal, courseID uint, f repository.StudentFilter) ([]dto.EnrolledStudentView, int64, error) {
	if err := s.Guard.CheckCourse(ctx, p, courseID); err != nil {
		return nil, 0, err
	}
	if _, err := s.find(ctx, courseID, true); err != nil {
		return nil, 0, err
	}

	es, total, err := s.MembershipRepo.ListCourseStudents(ctx, courseID, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list students")
	}
	return dto.Map(es, dto.NormalizeEnrolledStudent), total, nil
}

// JoinCourse enrolls the calling student after checking the course access
// password. Courses without a password cannot be joined this way.
func (s *CourseService) JoinCourse(ctx context.Context, p model.Principal, courseID uint, password string) (*model.StudentEnrollment, error) {
	course, err := s.find(ctx, courseID, false)
	if err != nil {
		return nil, err
	}
	if course.Password == "" || bcrypt.CompareHashAndPassword([]byte(course.Password), []byte(password)) != nil {
		return nil, util.ErrInvalidCoursePassword
	}

	var e *model.StudentEnrollment
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		e, err = s.enroll(ctx, tx, p, courseID, p.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}
