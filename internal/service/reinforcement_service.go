package service

import (
	"context"
	"encoding/json"
	"strings"

	"algoritmia_backend/internal/dto"
	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/repository"
	"algoritmia_backend/internal/util"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ReinforcementService struct {
	DB                *gorm.DB
	ReinforcementRepo *repository.ReinforcementRepository
	DifficultyRepo    *repository.DifficultyRepository
	AuditRepo         *repository.AuditRepository
	Guard             *AccessGuard
}

func NewReinforcementService(
	db *gorm.DB,
	reinforcementRepo *repository.ReinforcementRepository,
	difficultyRepo *repository.DifficultyRepository,
	auditRepo *repository.AuditRepository,
	guard *AccessGuard,
) *ReinforcementService {
	return &ReinforcementService{
		DB:                db,
		ReinforcementRepo: reinforcementRepo,
		DifficultyRepo:    difficultyRepo,
		AuditRepo:         auditRepo,
		Guard:             guard,
	}
}

func (s *ReinforcementService) requireDifficulty(ctx context.Context, id uint) (*model.Difficulty, error) {
	d, err := s.DifficultyRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.FieldInvalid("difficultyId", "difficulty %d does not exist", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, "find difficulty")
	}
	return d, nil
}

func (s *ReinforcementService) CreateQuestion(ctx context.Context, actor model.Principal, req dto.QuestionRequest) (*dto.AdminQuestionView, error) {
	if _, err := s.requireDifficulty(ctx, req.DifficultyID); err != nil {
		return nil, err
	}
	options := req.Options
	if options == nil {
		options = []string{}
	}
	raw, err := json.Marshal(options)
	if err != nil {
		return nil, errors.Wrap(err, "encode options")
	}

	q := &model.Question{
		DifficultyID: req.DifficultyID,
		Grade:        model.DifficultyGrade(req.Grade),
		Statement:    strings.TrimSpace(req.Statement),
		Options:      datatypes.JSON(raw),
		Answer:       strings.TrimSpace(req.Answer),
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ReinforcementRepo.WithTx(tx).CreateQuestion(ctx, q); err != nil {
			return errors.Wrap(err, "create question")
		}
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), actor, auditEntry{
			Table: "questions", RowID: q.ID, Op: model.AuditCreate, After: dto.NormalizeAdminQuestion(*q),
		})
	})
	if err != nil {
		return nil, err
	}
	v := dto.NormalizeAdminQuestion(*q)
	return &v, nil
}

func (s *ReinforcementService) ListQuestions(ctx context.Context, f repository.QuestionFilter) ([]dto.AdminQuestionView, int64, error) {
	qs, total, err := s.ReinforcementRepo.ListQuestions(ctx, f)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list questions")
	}
	return dto.Map(qs, dto.NormalizeAdminQuestion), total, nil
}

// CreateSession builds a session for the course out of questions that all
// belong to the chosen difficulty.
func (s *ReinforcementService) CreateSession(ctx context.Context, p model.Principal, courseID uint, req dto.CreateSessionRequest) (*dto.SessionView, error) {
	if err := s.Guard.CheckCourse(ctx, p, courseID); err != nil {
		return nil, err
	}
	d, err := s.requireDifficulty(ctx, req.DifficultyID)
	if err != nil {
		return nil, err
	}

	questions, err := s.ReinforcementRepo.FindQuestionsByIDs(ctx, req.QuestionIDs)
	if err != nil {
		return nil, errors.Wrap(err, "find questions")
	}
	if len(questions) != len(req.QuestionIDs) {
		return nil, util.FieldInvalid("questionIds", "some questions do not exist")
	}
	for _, q := range questions {
		if q.DifficultyID != d.ID {
			return nil, util.FieldInvalid("questionIds", "question %d belongs to another difficulty", q.ID)
		}
	}

	session := &model.ReinforcementSession{
		CourseID:     courseID,
		TeacherID:    p.UserID,
		DifficultyID: d.ID,
		Grade:        model.DifficultyGrade(req.Grade),
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		TimeLimit:    req.TimeLimit,
		Questions:    questions,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ReinforcementRepo.WithTx(tx).CreateSession(ctx, session); err != nil {
			return errors.Wrap(err, "create session")
		}
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), p, auditEntry{
			Table: "reinforcement_sessions", RowID: session.ID, Op: model.AuditCreate, After: dto.NormalizeSession(*session),
		})
	})
	if err != nil {
		return nil, err
	}

	session.Difficulty = d
	v := dto.NormalizeSession(*session)
	return &v, nil
}

func (s *ReinforcementService) ListSessions(ctx context.Context, p model.Principal, courseID uint, pg repository.Pagination) ([]dto.SessionView, int64, error) {
	if err := s.Guard.CheckCourse(ctx, p, courseID); err != nil {
		return nil, 0, err
	}
	ss, total, err := s.ReinforcementRepo.ListSessions(ctx, courseID, pg)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list sessions")
	}
	views := dto.Map(ss, func(rs model.ReinforcementSession) dto.SessionView {
		v := dto.NormalizeSession(rs)
		v.Questions = nil
		return v
	})
	return views, total, nil
}

// GetSession returns the session with its questions, answers stripped.
func (s *ReinforcementService) GetSession(ctx context.Context, p model.Principal, id uint) (*dto.SessionView, error) {
	session, err := s.ReinforcementRepo.FindSession(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrSessionNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "find session")
	}
	if err := s.Guard.CheckCourse(ctx, p, session.CourseID); err != nil {
		return nil, err
	}
	v := dto.NormalizeSession(*session)
	return &v, nil
}

// DeleteSession soft-deletes a session. Only its author or an admin may do it.
func (s *ReinforcementService) DeleteSession(ctx context.Context, p model.Principal, id uint) error {
	session, err := s.ReinforcementRepo.FindSessionUnscoped(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return util.ErrSessionNotFound
	}
	if err != nil {
		return errors.Wrap(err, "find session")
	}
	if err := s.Guard.CheckCourse(ctx, p, session.CourseID); err != nil {
		return err
	}
	if !p.IsAdmin() && session.TeacherID != p.UserID {
		return util.ErrPermissionDenied
	}
	if session.IsDeleted() {
		return nil
	}

	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.ReinforcementRepo.WithTx(tx).SoftDeleteSession(ctx, session); err != nil {
			return errors.Wrap(err, "delete session")
		}
		return recordAudit(ctx, s.AuditRepo.WithTx(tx), p, auditEntry{
			Table: "reinforcement_sessions", RowID: session.ID, Op: model.AuditDelete, Before: dto.NormalizeSession(*session),
		})
	})
}
