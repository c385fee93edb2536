package service

import (
	"encoding/json"
	"testing"

	"algoritmia_backend/internal/dto"
	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/repository"
	"algoritmia_backend/internal/testutil"
	"algoritmia_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourse(t *testing.T) {
	s := setup(t)
	ada := testutil.CreateUser(t, s.db, "ada@example.com", model.Teacher)

	v, err := s.courses.Create(ctx, admin, dto.CreateCourseRequest{
		Title:      "Algorithms I",
		Password:   "letmein",
		Schedules:  []dto.ScheduleRequest{{Day: "monday", StartTime: "08:30", EndTime: "10:00"}},
		TeacherIDs: []uint{ada.ID},
	})
	require.NoError(t, err)

	assert.True(t, v.HasPassword)
	require.Len(t, v.Teachers, 1)
	assert.Equal(t, ada.ID, v.Teachers[0].ID)
	assert.Equal(t, []dto.ScheduleView{{Day: model.Monday, StartTime: "08:30", EndTime: "10:00"}}, v.Schedules)
	assert.Equal(t, int64(1), countRows(t, s.db, &model.AuditLog{}))
}

func TestCreateCourseIsAtomic(t *testing.T) {
	s := setup(t)
	ada := testutil.CreateUser(t, s.db, "ada@example.com", model.Teacher)

	// the second assignment violates the (course, teacher) unique index
	_, err := s.courses.Create(ctx, admin, dto.CreateCourseRequest{
		Title:      "Algorithms I",
		Schedules:  []dto.ScheduleRequest{{Day: "monday", StartTime: "08:30", EndTime: "10:00"}},
		TeacherIDs: []uint{ada.ID, ada.ID},
	})
	require.Error(t, err)

	assert.Zero(t, countRows(t, s.db, &model.Course{}))
	assert.Zero(t, countRows(t, s.db, &model.CourseSchedule{}))
	assert.Zero(t, countRows(t, s.db, &model.TeacherAssignment{}))
	assert.Zero(t, countRows(t, s.db, &model.AuditLog{}))
}

func TestCreateCourseRejectsNonTeachers(t *testing.T) {
	s := setup(t)
	student := testutil.CreateUser(t, s.db, "student@example.com", model.Student)

	_, err := s.courses.Create(ctx, admin, dto.CreateCourseRequest{Title: "X", TeacherIDs: []uint{student.ID}})

	var verr *util.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "teacherIds", verr.Fields[0].Field)
}

func TestFindMyCourses(t *testing.T) {
	s := setup(t)
	active := testutil.CreateUser(t, s.db, "active@example.com", model.Teacher)
	inactive := testutil.CreateUser(t, s.db, "inactive@example.com", model.Teacher)

	c := testutil.CreateCourse(t, s.db, "C")
	testutil.AssignTeacher(t, s.db, c.ID, active.ID, model.MembershipActive)
	testutil.AssignTeacher(t, s.db, c.ID, inactive.ID, model.MembershipInactive)

	// a finished course where the caller's assignment is no longer active
	old := testutil.CreateCourse(t, s.db, "Old")
	testutil.AssignTeacher(t, s.db, old.ID, active.ID, model.MembershipInactive)
	finalize(t, s.db, old)

	courses, err := s.courses.FindMyCourses(ctx, principal(active))
	require.NoError(t, err)
	require.Len(t, courses, 2)

	assert.Equal(t, c.ID, courses[0].ID)
	assert.Equal(t, model.MembershipActive, courses[0].MembershipStatus)
	require.Len(t, courses[0].Teachers, 1)
	assert.Equal(t, active.ID, courses[0].Teachers[0].ID)

	assert.Equal(t, old.ID, courses[1].ID)
	assert.True(t, courses[1].Finished)

	mine, err := s.courses.FindMyCourses(ctx, principal(inactive))
	require.NoError(t, err)
	assert.Empty(t, mine, "an inactive assignment to a running course grants nothing")

	_, err = s.courses.MemberCourse(ctx, principal(inactive), c.ID)
	assert.ErrorIs(t, err, util.ErrForbidden)
}

func TestUpdateCourseReplacesSchedules(t *testing.T) {
	s := setup(t)
	created, err := s.courses.Create(ctx, admin, dto.CreateCourseRequest{
		Title:     "Algorithms I",
		Schedules: []dto.ScheduleRequest{{Day: "monday", StartTime: "08:30", EndTime: "10:00"}},
	})
	require.NoError(t, err)

	title := "Algorithms II"
	schedules := []dto.ScheduleRequest{
		{Day: "tuesday", StartTime: "14:00", EndTime: "15:00"},
		{Day: "thursday", StartTime: "14:00", EndTime: "15:00"},
	}
	v, err := s.courses.Update(ctx, admin, created.ID, dto.UpdateCourseRequest{Title: &title, Schedules: &schedules})
	require.NoError(t, err)

	assert.Equal(t, "Algorithms II", v.Title)
	require.Len(t, v.Schedules, 2)
	assert.Equal(t, model.Tuesday, v.Schedules[0].Day)
	assert.Equal(t, int64(2), countRows(t, s.db, &model.CourseSchedule{}))

	list, total, err := s.courses.List(ctx, repository.CourseFilter{Day: model.Thursday})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, created.ID, list[0].ID)

	_, total, err = s.courses.List(ctx, repository.CourseFilter{Day: model.Monday})
	require.NoError(t, err)
	assert.Zero(t, total)

	logs, _, err := s.audit.List(ctx, repository.AuditFilter{Table: "courses", Operation: model.AuditUpdate})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	var before, after dto.CourseView
	require.NoError(t, json.Unmarshal(logs[0].Before, &before))
	require.NoError(t, json.Unmarshal(logs[0].After, &after))
	assert.Equal(t, "Algorithms I", before.Title)
	require.Len(t, before.Schedules, 1)
	assert.Equal(t, "Algorithms II", after.Title)
	require.Len(t, after.Schedules, 2)
	assert.Equal(t, dto.ScheduleView{Day: model.Thursday, StartTime: "14:00", EndTime: "15:00"}, after.Schedules[1])
}

func TestDeleteCourseFinalizes(t *testing.T) {
	s := setup(t)
	c := testutil.CreateCourse(t, s.db, "C")

	require.NoError(t, s.courses.Delete(ctx, admin, c.ID))
	require.NoError(t, s.courses.Delete(ctx, admin, c.ID))

	v, err := s.courses.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, v.Finished)

	_, total, err := s.courses.List(ctx, repository.CourseFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	_, total, err = s.courses.List(ctx, repository.CourseFilter{Status: repository.CourseStatusFinished})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	title := "again"
	_, err = s.courses.Update(ctx, admin, c.ID, dto.UpdateCourseRequest{Title: &title})
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestMembershipStatus(t *testing.T) {
	s := setup(t)
	teacher := testutil.CreateUser(t, s.db, "t@example.com", model.Teacher)
	student := testutil.CreateUser(t, s.db, "s@example.com", model.Student)
	c := testutil.CreateCourse(t, s.db, "C")

	a, err := s.courses.AssignTeacher(ctx, admin, c.ID, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MembershipActive, a.Status)

	_, err = s.courses.SetTeacherStatus(ctx, admin, c.ID, teacher.ID, model.MembershipInactive)
	require.NoError(t, err)
	assert.ErrorIs(t, s.courses.Guard.CheckCourse(ctx, principal(teacher), c.ID), util.ErrForbidden)

	a, err = s.courses.AssignTeacher(ctx, admin, c.ID, teacher.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MembershipActive, a.Status)
	assert.Equal(t, int64(1), countRows(t, s.db, &model.TeacherAssignment{}))

	_, err = s.courses.AssignTeacher(ctx, admin, c.ID, student.ID)
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = s.courses.EnrollStudent(ctx, admin, c.ID, student.ID)
	require.NoError(t, err)
	_, err = s.courses.SetStudentStatus(ctx, admin, c.ID, 999, model.MembershipInactive)
	assert.ErrorIs(t, err, util.ErrNotFound)

	views, total, err := s.courses.CourseStudents(ctx, principal(teacher), c.ID, repository.StudentFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, student.ID, views[0].ID)
}

func TestJoinCourse(t *testing.T) {
	s := setup(t)
	student := testutil.CreateUser(t, s.db, "s@example.com", model.Student)
	created, err := s.courses.Create(ctx, admin, dto.CreateCourseRequest{Title: "C", Password: "letmein"})
	require.NoError(t, err)
	open := testutil.CreateCourse(t, s.db, "No password")

	_, err = s.courses.JoinCourse(ctx, principal(student), created.ID, "wrong")
	assert.ErrorIs(t, err, util.ErrUnauthorized)

	_, err = s.courses.JoinCourse(ctx, principal(student), open.ID, "")
	assert.ErrorIs(t, err, util.ErrInvalidCoursePassword)

	e, err := s.courses.JoinCourse(ctx, principal(student), created.ID, "letmein")
	require.NoError(t, err)
	assert.Equal(t, model.MembershipActive, e.Status)

	courses, err := s.courses.StudentCourses(ctx, principal(student))
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, created.ID, courses[0].ID)

	require.NoError(t, s.courses.Delete(ctx, admin, created.ID))
	_, err = s.courses.JoinCourse(ctx, principal(student), created.ID, "letmein")
	assert.ErrorIs(t, err, util.ErrNotFound)
}
