package service

import (
	"context"
	"strings"
	"time"

	"algoritmia_backend/internal/dto"
	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/repository"
	"algoritmia_backend/internal/util"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type MissionService struct {
	DB             *gorm.DB
	MissionRepo    *repository.MissionRepository
	DifficultyRepo *repository.DifficultyRepository
	AuditRepo      *repository.AuditRepository
	Guard          *AccessGuard
}

func NewMissionService(
	db *gorm.DB,
	missionRepo *repository.MissionRepository,
	difficultyRepo *repository.DifficultyRepository,
	auditRepo *repository.AuditRepository,
	guard *AccessGuard,
) *MissionService {
	return &MissionService{
		DB:             db,
		MissionRepo:    missionRepo,
		DifficultyRepo: difficultyRepo,
		AuditRepo:      auditRepo,
		Guard:          guard,
	}
}

func (s *MissionService) Get(ctx context.Context, id uint) (*model.Mission, error) {
	m, err := s.MissionRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrMissionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find mission")
	}
	return m, nil
}

func (s *MissionService) List(ctx context.Context, f repository.MissionFilter) ([]model.Mission, int64, error) {
	ms, total, err := s.MissionRepo.List(ctx, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list missions")
	}
	return ms, total, nil
}

func (s *MissionService) checkDifficulty(ctx context.Context, id *uint) error {
	if id == nil {
		return nil
	}
	_, err := s.DifficultyRepo.FindByID(ctx, *id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.FieldInvalid("difficultyId", "difficulty %d does not exist", *id)
	}
	return errors.Wrap(err, "find difficulty")
}

func (s *MissionService) Create(ctx context.Context, actor model.Principal, req dto.CreateMissionRequest) (*model.Mission, error) {
	if err := s.checkDifficulty(ctx, req.DifficultyID); err != nil {
		return nil, err
	}
	m := &model.Mission{
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		DifficultyID: req.DifficultyID,
		MaxStars:     req.MaxStars,
		Experience:   req.Experience,
	}
	if m.MaxStars == 0 {
		m.MaxStars = model.DefaultMissionMaxStars
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.MissionRepo.WithTx(tx).Create(ctx, m); err != nil {
			return errors.Wrap(err, "create mission")
		}
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
			Table: "missions", RowID: m.ID, Op: model.AuditCreate, After: m,
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MissionService) Update(ctx context.Context, actor model.Principal, id uint, req dto.UpdateMissionRequest) (*model.Mission, error) {
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkDifficulty(ctx, req.DifficultyID); err != nil {
		return nil, err
	}
	before := *m

	if req.Name != nil {
		m.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		m.Description = strings.TrimSpace(*req.Description)
	}
	if req.DifficultyID != nil {
		m.DifficultyID = req.DifficultyID
	}
	if req.MaxStars != nil {
		m.MaxStars = *req.MaxStars
	}
	if req.Experience != nil {
		m.Experience = *req.Experience
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.MissionRepo.WithTx(tx).Update(ctx, m); err != nil {
			return errors.Wrap(err, "update mission")
		}
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
			Table: "missions", RowID: m.ID, Op: model.AuditUpdate, Before: before, After: m,
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *MissionService) Delete(ctx context.Context, actor model.Principal, id uint) error {
	m, err := s.MissionRepo.FindByIDUnscoped(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrMissionNotFound
	}
	if err != nil {
		return errors.Wrap(err, "find mission")
	}
	if m.IsDeleted() {
		return nil
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.MissionRepo.WithTx(tx).SoftDelete(ctx, m); err != nil {
			return errors.Wrap(err, "delete mission")
		}
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
			Table: "missions", RowID: m.ID, Op: model.AuditDelete, Before: m,
		})
	})
}

// Complete records one attempt of the calling student. The stored result
// keeps the best stars and experience seen so far.
func (s *MissionService) Complete(ctx context.Context, p model.Principal, courseID, missionID uint, req dto.CompleteMissionRequest) (*dto.CompletionView, error) {
	if err := s.Guard.CheckCourse(ctx, p, courseID); err != nil {
		return nil, err
	}
	m, err := s.Get(ctx, missionID)
	if err != nil {
		return nil, err
	}
	if req.Stars > m.MaxStars {
		return nil, util.FieldInvalid("stars", "stars must be at most %d", m.MaxStars)
	}
	if req.Experience > m.Experience {
		return nil, util.FieldInvalid("experience", "experience must be at most %d", m.Experience)
	}

	var c *model.MissionCompletion
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		missions := s.MissionRepo.WithTx(tx)
		entry := auditEntry{Table: "mission_completions"}

		existing, err := missions.FindCompletion(ctx, p.UserID, courseID, missionID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c = &model.MissionCompletion{StudentID: p.UserID, CourseID: courseID, MissionID: missionID}
			entry.Op = model.AuditCreate
		case err != nil:
			return errors.Wrap(err, "find completion")
		default:
			c = existing
			before := *existing
			entry.Op, entry.Before = model.AuditUpdate, before
		}

		c.Attempts++
		c.LastAttemptAt = time.Now()
		if req.Stars > c.Stars {
			c.Stars = req.Stars
		}
		if req.Experience > c.Experience {
			c.Experience = req.Experience
		}
		if err := missions.SaveCompletion(ctx, c); err != nil {
			return conflictOr(err, "save completion")
		}
		entry.RowID, entry.After = c.ID, c
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), p, entry)
	})
	if err != nil {
		return nil, err
	}

	c.Mission = m
	v := dto.NormalizeCompletion(*c)
	return &v, nil
}

// MyCompletions lists the caller's results in the course.
func (s *MissionService) MyCompletions(ctx context.Context, p model.Principal, f repository.CompletionFilter) ([]dto.CompletionView, int64, error) {
	f.StudentID = p.UserID
	return s.Progress(ctx, p, f)
}

// Progress lists the results of the course's students.
func (s *MissionService) Progress(ctx context.Context, p model.Principal, f repository.CompletionFilter) ([]dto.CompletionView, int64, error) {
	if err := s.Guard.CheckCourse(ctx, p, f.CourseID); err != nil {
		return nil, 0, err
	}
	cs, total, err := s.MissionRepo.ListCompletions(ctx, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list completions")
	}
	return dto.Map(cs, dto.NormalizeCompletion), total, nil
}
