package dto

import (
	"encoding/json"
	"sort"
	"time"

	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/util"
)

// The views below are the flat shapes returned to clients. Building them never
// modifies the loaded models.

type UserSummary struct {
	ID       uint   `json:"id"`
	Name     string `json:"name"`
	LastName string `json:"lastName"`
	Email    string `json:"email"`
}

type ScheduleView struct {
	Day       model.Weekday `json:"day"`
	StartTime string        `json:"startTime"`
	EndTime   string        `json:"endTime"`
}

type CourseView struct {
	ID          uint           `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	HasPassword bool           `json:"hasPassword"`
	Finished    bool           `json:"finished"`
	Teachers    []UserSummary  `json:"teachers"`
	Schedules   []ScheduleView `json:"schedules"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// MemberCourseView is a course seen through the caller's membership.
type MemberCourseView struct {
	CourseView
	MembershipStatus model.MembershipStatus `json:"membershipStatus"`
}

type EnrolledStudentView struct {
	ID         uint                   `json:"id"`
	Name       string                 `json:"name"`
	LastName   string                 `json:"lastName"`
	DNI        string                 `json:"dni"`
	Email      string                 `json:"email"`
	Status     model.MembershipStatus `json:"status"`
	EnrolledAt time.Time              `json:"enrolledAt"`
}

type StudentDifficultyView struct {
	DifficultyID uint                  `json:"difficultyId"`
	Topic        string                `json:"topic"`
	Grade        model.DifficultyGrade `json:"grade"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

type CompletionView struct {
	MissionID     uint      `json:"missionId"`
	MissionName   string    `json:"missionName"`
	StudentID     uint      `json:"studentId"`
	StudentName   string    `json:"studentName"`
	Stars         int       `json:"stars"`
	MaxStars      int       `json:"maxStars"`
	Experience    int       `json:"experience"`
	Attempts      int       `json:"attempts"`
	LastAttemptAt time.Time `json:"lastAttemptAt"`
}

type QuestionView struct {
	ID        uint     `json:"id"`
	Statement string   `json:"statement"`
	Options   []string `json:"options"`
}

// AdminQuestionView exposes the answer, for the question bank only.
type AdminQuestionView struct {
	QuestionView
	DifficultyID uint                  `json:"difficultyId"`
	Grade        model.DifficultyGrade `json:"grade"`
	Answer       string                `json:"answer"`
}

type SessionView struct {
	ID            uint                  `json:"id"`
	CourseID      uint                  `json:"courseId"`
	TeacherID     uint                  `json:"teacherId"`
	Name          string                `json:"name"`
	Description   string                `json:"description"`
	DifficultyID  uint                  `json:"difficultyId"`
	Topic         string                `json:"topic"`
	Grade         model.DifficultyGrade `json:"grade"`
	TimeLimit     int                   `json:"timeLimit"`
	QuestionCount int                   `json:"questionCount"`
	Questions     []QuestionView        `json:"questions,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
}

// Map applies f to every element. The result is never nil so empty pages
// encode as [].
func Map[S, D any](in []S, f func(S) D) []D {
	out := make([]D, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}

func Summarize(u *model.User) UserSummary {
	if u == nil {
		return UserSummary{}
	}
	return UserSummary{ID: u.ID, Name: u.Name, LastName: u.LastName, Email: u.Email}
}

// NormalizeCourse flattens the active teacher assignments of live teachers
// and renders schedule times as HH:mm in UTC, the zone clock values are
// stored in.
func NormalizeCourse(c *model.Course) CourseView {
	teachers := make([]UserSummary, 0, len(c.TeacherAssignments))
	for _, a := range c.TeacherAssignments {
		if a.Status != model.MembershipActive || a.Teacher == nil || a.Teacher.IsDeleted() {
			continue
		}
		teachers = append(teachers, Summarize(a.Teacher))
	}

	return CourseView{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		HasPassword: c.Password != "",
		Finished:    c.Finished(),
		Teachers:    teachers,
		Schedules: Map(c.Schedules, func(s model.CourseSchedule) ScheduleView {
			return ScheduleView{
				Day:       s.Day,
				StartTime: s.StartTime.UTC().Format(util.ClockFormat),
				EndTime:   s.EndTime.UTC().Format(util.ClockFormat),
			}
		}),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

func NormalizeCourses(cs []model.Course) []CourseView {
	return Map(cs, func(c model.Course) CourseView { return NormalizeCourse(&c) })
}

// memberCourses keeps the accessible memberships and orders them with active
// ones first, then by course id.
func memberCourses(status []model.MembershipStatus, courses []*model.Course) []MemberCourseView {
	out := make([]MemberCourseView, 0, len(courses))
	for i, c := range courses {
		if c == nil || !model.IsAccessible(status[i], c.Finished()) {
			continue
		}
		out = append(out, MemberCourseView{CourseView: NormalizeCourse(c), MembershipStatus: status[i]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		ai := out[i].MembershipStatus == model.MembershipActive
		aj := out[j].MembershipStatus == model.MembershipActive
		if ai != aj {
			return ai
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func NormalizeTeacherCourses(as []model.TeacherAssignment) []MemberCourseView {
	status := make([]model.MembershipStatus, len(as))
	courses := make([]*model.Course, len(as))
	for i := range as {
		status[i], courses[i] = as[i].Status, as[i].Course
	}
	return memberCourses(status, courses)
}

func NormalizeStudentCourses(es []model.StudentEnrollment) []MemberCourseView {
	status := make([]model.MembershipStatus, len(es))
	courses := make([]*model.Course, len(es))
	for i := range es {
		status[i], courses[i] = es[i].Status, es[i].Course
	}
	return memberCourses(status, courses)
}

func NormalizeEnrolledStudent(e model.StudentEnrollment) EnrolledStudentView {
	v := EnrolledStudentView{ID: e.StudentID, Status: e.Status, EnrolledAt: e.CreatedAt}
	if e.Student != nil {
		v.Name = e.Student.Name
		v.LastName = e.Student.LastName
		v.DNI = e.Student.DNI
		v.Email = e.Student.Email
	}
	return v
}

func NormalizeStudentDifficulty(sd model.StudentDifficulty) StudentDifficultyView {
	v := StudentDifficultyView{DifficultyID: sd.DifficultyID, Grade: sd.Grade, UpdatedAt: sd.UpdatedAt}
	if sd.Difficulty != nil {
		v.Topic = sd.Difficulty.Topic
	}
	return v
}

func NormalizeCompletion(c model.MissionCompletion) CompletionView {
	v := CompletionView{
		MissionID:     c.MissionID,
		StudentID:     c.StudentID,
		Stars:         c.Stars,
		Experience:    c.Experience,
		Attempts:      c.Attempts,
		LastAttemptAt: c.LastAttemptAt,
	}
	if c.Mission != nil {
		v.MissionName = c.Mission.Name
		v.MaxStars = c.Mission.MaxStars
	}
	if c.Student != nil {
		v.StudentName = c.Student.Name + " " + c.Student.LastName
	}
	return v
}

// QuestionOptions decodes the stored option list. Malformed data yields none.
func QuestionOptions(q model.Question) []string {
	options := []string{}
	if len(q.Options) > 0 {
		_ = json.Unmarshal(q.Options, &options)
	}
	return options
}

func NormalizeQuestion(q model.Question) QuestionView {
	return QuestionView{ID: q.ID, Statement: q.Statement, Options: QuestionOptions(q)}
}

func NormalizeAdminQuestion(q model.Question) AdminQuestionView {
	return AdminQuestionView{
		QuestionView: NormalizeQuestion(q),
		DifficultyID: q.DifficultyID,
		Grade:        q.Grade,
		Answer:       q.Answer,
	}
}

// NormalizeSession includes the questions only when they were loaded.
func NormalizeSession(s model.ReinforcementSession) SessionView {
	v := SessionView{
		ID:            s.ID,
		CourseID:      s.CourseID,
		TeacherID:     s.TeacherID,
		Name:          s.Name,
		Description:   s.Description,
		DifficultyID:  s.DifficultyID,
		Grade:         s.Grade,
		TimeLimit:     s.TimeLimit,
		QuestionCount: len(s.Questions),
		CreatedAt:     s.CreatedAt,
	}
	if s.Difficulty != nil {
		v.Topic = s.Difficulty.Topic
	}
	if len(s.Questions) > 0 {
		v.Questions = Map(s.Questions, NormalizeQuestion)
	}
	return v
}
