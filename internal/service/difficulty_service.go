package service

import (
	"context"
	"strings"

	"algoritmia_backend/internal/dto"
	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/repository"
	"algoritmia_backend/internal/util"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type DifficultyService struct {
	DB             *gorm.DB
	DifficultyRepo *repository.DifficultyRepository
	MembershipRepo *repository.MembershipRepository
	AuditRepo      *repository.AuditRepository
	Guard          *AccessGuard
}

func NewDifficultyService(
	db *gorm.DB,
	difficultyRepo *repository.DifficultyRepository,
	membershipRepo *repository.MembershipRepository,
	auditRepo *repository.AuditRepository,
	guard *AccessGuard,
) *DifficultyService {
	return &DifficultyService{
		DB:             db,
		DifficultyRepo: difficultyRepo,
		MembershipRepo: membershipRepo,
		AuditRepo:      auditRepo,
		Guard:          guard,
	}
}

func (s *DifficultyService) find(ctx context.Context, id uint) (*model.Difficulty, error) {
	d, err := s.DifficultyRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrDifficultyNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find difficulty")
	}
	return d, nil
}

func (s *DifficultyService) List(ctx context.Context, p repository.Pagination) ([]model.Difficulty, int64, error) {
	ds, total, err := s.DifficultyRepo.List(ctx, p)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list difficulties")
	}
	return ds, total, nil
}

func (s *DifficultyService) Create(ctx context.Context, actor model.Principal, req dto.CreateDifficultyRequest) (*model.Difficulty, error) {
	d := &model.Difficulty{
		Topic:       strings.TrimSpace(req.Topic),
		Description: strings.TrimSpace(req.Description),
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.DifficultyRepo.WithTx(tx).Create(ctx, d); err != nil {
			return errors.Wrap(err, "create difficulty")
		}
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
			Table: "difficulties", RowID: d.ID, Op: model.AuditCreate, After: d,
		})
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (s *DifficultyService) Update(ctx context.Context, actor model.Principal, id uint, req dto.UpdateDifficultyRequest) (*model.Difficulty, error) {
	d, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *d
	if req.Topic != nil {
		d.Topic = strings.TrimSpace(*req.Topic)
	}
	if req.Description != nil {
		d.Description = strings.TrimSpace(*req.Description)
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.DifficultyRepo.WithTx(tx).Update(ctx, d); err != nil {
			return errors.Wrap(err, "update difficulty")
		}
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
			Table: "difficulties", RowID: d.ID, Op: model.AuditUpdate, Before: before, After: d,
		})
	})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// Delete soft-deletes the difficulty; recorded grades keep pointing at it.
func (s *DifficultyService) Delete(ctx context.Context, actor model.Principal, id uint) error {
	d, err := s.DifficultyRepo.FindByIDUnscoped(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrDifficultyNotFound
	}
	if err != nil {
		return errors.Wrap(err, "find difficulty")
	}
	if d.IsDeleted() {
		return nil
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.DifficultyRepo.WithTx(tx).SoftDelete(ctx, d); err != nil {
			return errors.Wrap(err, "delete difficulty")
		}
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
			Table: "difficulties", RowID: d.ID, Op: model.AuditDelete, Before: d,
		})
	})
}

// requireEnrolled checks the student has an enrollment in the course,
// whatever its status.
func requireEnrolled(ctx context.Context, memberships *repository.MembershipRepository, studentID, courseID uint) error {
	_, err := memberships.FindStudentEnrollment(ctx, studentID, courseID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrStudentNotEnrolled
	}
	return errors.Wrap(err, "find enrollment")
}

func (s *DifficultyService) studentDifficulties(ctx context.Context, studentID, courseID uint) ([]dto.StudentDifficultyView, error) {
	sds, err := s.DifficultyRepo.ListStudentDifficulties(ctx, studentID, courseID)
	if err != nil {
		return nil, errors.Wrap(err, "list student difficulties")
	}
	return dto.Map(sds, dto.NormalizeStudentDifficulty), nil
}

// StudentDifficulties lists the grades of a student, as seen by a teacher of
// the course.
func (s *DifficultyService) StudentDifficulties(ctx context.Context, p model.Principal, courseID, studentID uint) ([]dto.StudentDifficultyView, error) {
	if err := s.Guard.CheckCourse(ctx, p, courseID); err != nil {
		return nil, err
	}
	if err := requireEnrolled(ctx, s.MembershipRepo, studentID, courseID); err != nil {
		return nil, err
	}
	return s.studentDifficulties(ctx, studentID, courseID)
}

// MyDifficulties lists the caller's own grades in the course.
func (s *DifficultyService) MyDifficulties(ctx context.Context, p model.Principal, courseID uint) ([]dto.StudentDifficultyView, error) {
	if err := s.Guard.CheckCourse(ctx, p, courseID); err != nil {
		return nil, err
	}
	return s.studentDifficulties(ctx, p.UserID, courseID)
}

// SetGrade records or replaces the grade of a student for one difficulty.
func (s *DifficultyService) SetGrade(ctx context.Context, p model.Principal, courseID, studentID uint, req dto.GradeRequest) (*dto.StudentDifficultyView, error) {
	if err := s.Guard.CheckCourse(ctx, p, courseID); err != nil {
		return nil, err
	}
	if err := requireEnrolled(ctx, s.MembershipRepo, studentID, courseID); err != nil {
		return nil, err
	}
	d, err := s.find(ctx, req.DifficultyID)
	if err != nil {
		return nil, err
	}

	var sd *model.StudentDifficulty
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		difficulties := s.DifficultyRepo.WithTx(tx)
		entry := auditEntry{Table: "student_difficulties"}

		existing, err := difficulties.FindStudentDifficulty(ctx, studentID, courseID, d.ID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			sd = &model.StudentDifficulty{StudentID: studentID, CourseID: courseID, DifficultyID: d.ID}
			entry.Op = model.AuditCreate
		case err != nil:
			return errors.Wrap(err, "find student difficulty")
		default:
			sd = existing
			before := *existing
			entry.Op, entry.Before = model.AuditUpdate, before
		}

		sd.Grade = model.DifficultyGrade(req.Grade)
		if err := difficulties.SaveStudentDifficulty(ctx, sd); err != nil {
			return conflictOr(err, "save student difficulty")
		}
		entry.RowID, entry.After = sd.ID, sd
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), p, entry)
	})
	if err != nil {
		return nil, err
	}

	sd.Difficulty = d
	v := dto.NormalizeStudentDifficulty(*sd)
	return &v, nil
}
