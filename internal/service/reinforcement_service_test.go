package service

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"algoritmia_backend/internal/dto"
	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/repository"
	"algoritmia_backend/internal/testutil"
	"algoritmia_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReinforcementSessions(t *testing.T) {
	s := setup(t)
	teacher := testutil.CreateUser(t, s.db, "t@example.com", model.Teacher)
	other := testutil.CreateUser(t, s.db, "o@example.com", model.Teacher)
	student := testutil.CreateUser(t, s.db, "s@example.com", model.Student)
	c := testutil.CreateCourse(t, s.db, "C")
	testutil.AssignTeacher(t, s.db, c.ID, teacher.ID, model.MembershipActive)
	testutil.AssignTeacher(t, s.db, c.ID, other.ID, model.MembershipActive)
	testutil.EnrollStudent(t, s.db, c.ID, student.ID, model.MembershipActive)

	recursion, err := s.difficulties.Create(ctx, admin, dto.CreateDifficultyRequest{Topic: "Recursion"})
	require.NoError(t, err)
	loops, err := s.difficulties.Create(ctx, admin, dto.CreateDifficultyRequest{Topic: "Loops"})
	require.NoError(t, err)

	q1, err := s.reinforcement.CreateQuestion(ctx, admin, dto.QuestionRequest{
		DifficultyID: recursion.ID, Grade: "high", Statement: "fib(5)?", Options: []string{"5", "8"}, Answer: "5",
	})
	require.NoError(t, err)
	q2, err := s.reinforcement.CreateQuestion(ctx, admin, dto.QuestionRequest{
		DifficultyID: loops.ID, Grade: "high", Statement: "for or while?", Answer: "both",
	})
	require.NoError(t, err)

	req := dto.CreateSessionRequest{
		Name: "Catch up", DifficultyID: recursion.ID, Grade: "high", TimeLimit: 30,
		QuestionIDs: []uint{q1.ID, q2.ID},
	}
	_, err = s.reinforcement.CreateSession(ctx, principal(teacher), c.ID, req)
	assert.ErrorIs(t, err, util.ErrValidation)

	req.QuestionIDs = []uint{q1.ID}
	created, err := s.reinforcement.CreateSession(ctx, principal(teacher), c.ID, req)
	require.NoError(t, err)
	assert.Equal(t, 1, created.QuestionCount)

	list, total, err := s.reinforcement.ListSessions(ctx, principal(student), c.ID, repository.Pagination{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, 1, list[0].QuestionCount)
	assert.Nil(t, list[0].Questions)

	got, err := s.reinforcement.GetSession(ctx, principal(student), created.ID)
	require.NoError(t, err)
	require.Len(t, got.Questions, 1)
	assert.Equal(t, []string{"5", "8"}, got.Questions[0].Options)

	assert.ErrorIs(t, s.reinforcement.DeleteSession(ctx, principal(other), created.ID), util.ErrForbidden)
	require.NoError(t, s.reinforcement.DeleteSession(ctx, principal(teacher), created.ID))
	require.NoError(t, s.reinforcement.DeleteSession(ctx, principal(teacher), created.ID))

	_, err = s.reinforcement.GetSession(ctx, principal(student), created.ID)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestAuditExport(t *testing.T) {
	s := setup(t)
	_, err := s.difficulties.Create(ctx, admin, dto.CreateDifficultyRequest{Topic: "Recursion"})
	require.NoError(t, err)
	_, err = s.difficulties.Create(ctx, admin, dto.CreateDifficultyRequest{Topic: "Loops"})
	require.NoError(t, err)

	logs, total, err := s.audit.List(ctx, repository.AuditFilter{Table: "difficulties"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, model.AuditCreate, logs[0].Operation)
	require.NotNil(t, logs[0].UserID)
	assert.Equal(t, admin.UserID, *logs[0].UserID)

	_, total, err = s.audit.List(ctx, repository.AuditFilter{Pagination: repository.Pagination{Search: "DIFFIC"}})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	_, total, err = s.audit.List(ctx, repository.AuditFilter{Pagination: repository.Pagination{Search: "missions"}})
	require.NoError(t, err)
	assert.Zero(t, total)

	res, err := s.audit.Export(ctx, admin, repository.AuditFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Count)

	path := filepath.Join(s.cfg.Storage.LocalPath, strings.TrimPrefix(res.URL, "/uploads/"))
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(content), "\n"))
	assert.Contains(t, string(content), `"affectedTable":"difficulties"`)
}
