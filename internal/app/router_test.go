package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"algoritmia_backend/internal/config"
	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/testutil"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}

type testServer struct {
	t   *testing.T
	db  *gorm.DB
	app *App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: "test"},
		JWT:       config.JWTConfig{Secret: "router-test-secret", ExpireTime: time.Hour},
		Security:  config.SecurityConfig{BcryptCost: bcrypt.MinCost},
		Storage:   config.StorageConfig{Type: "local", LocalPath: t.TempDir()},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"*"}},
		RateLimit: config.RateLimitConfig{MaxRequests: 10000, WindowMinutes: 1},
	}
	db := testutil.OpenDB(t)
	return &testServer{t: t, db: db, app: New(cfg, db, nil)}
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.app.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}

// login creates a user with the given role and returns a token for it.
func (s *testServer) login(email string, role model.UserRole) (*model.User, string) {
	s.t.Helper()

	user := testutil.CreateUser(s.t, s.db, email, role)
	w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": email, "password": "secret1"})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Token string `json:"token"`
	}
	decode(s.t, w, &res)
	require.NotEmpty(s.t, res.Token)
	return user, res.Token
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodGet, "/api/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	var health struct {
		Status string `json:"status"`
	}
	decode(t, w, &health)
	assert.Equal(t, "ok", health.Status)

	w = s.do(http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthFlow(t *testing.T) {
	s := newTestServer(t)
	testutil.CreateUser(t, s.db, "ana@example.com", model.Student)

	w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ana@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ana@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	var login struct {
		Token string `json:"token"`
		User  struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		} `json:"user"`
	}
	decode(t, w, &login)
	assert.Equal(t, "ana@example.com", login.User.Email)
	assert.Empty(t, login.User.Password)

	w = s.do(http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/auth/profile", login.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/api/auth/logout", login.Token, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestUserManagement(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.login("admin@example.com", model.Admin)
	_, studentToken := s.login("student@example.com", model.Student)

	body := gin.H{
		"name":      "Lucia",
		"lastName":  "Perez",
		"dni":       "12345678",
		"birthDate": "2001-05-04",
		"email":     "lucia@example.com",
		"password":  "secret1",
		"role":      "teacher",
	}

	w := s.do(http.MethodPost, "/api/users", studentToken, body)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodPost, "/api/users", adminToken, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID uint `json:"id"`
	}
	decode(t, w, &created)

	w = s.do(http.MethodPost, "/api/users", adminToken, body)
	assert.Equal(t, http.StatusConflict, w.Code)

	bad := gin.H{"name": "X", "lastName": "Y", "dni": "12ab", "birthDate": "2001-05-04", "email": "x@example.com", "password": "secret1", "role": "student"}
	w = s.do(http.MethodPost, "/api/users", adminToken, bad)
	require.Equal(t, http.StatusBadRequest, w.Code)
	var fields struct {
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	decode(t, w, &fields)
	require.Len(t, fields.Fields, 1)
	assert.Equal(t, "dni", fields.Fields[0].Field)

	w = s.do(http.MethodGet, "/api/users?role=teacher,admin&limit=1&sort=email", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page []struct {
		Email string `json:"email"`
	}
	env := decode(t, w, &page)
	assert.EqualValues(t, 2, env.Total)
	assert.Equal(t, 1, env.Page)
	assert.Equal(t, 1, env.Limit)
	require.Len(t, page, 1)
	assert.Equal(t, "admin@example.com", page[0].Email)

	path := fmt.Sprintf("/api/users/%d", created.ID)
	w = s.do(http.MethodPatch, path, adminToken, gin.H{"name": "Lu"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	w = s.do(http.MethodDelete, path, adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, path, adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, path+"/restore", adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/api/users/abc", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCourseMembershipFlow(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.login("admin@example.com", model.Admin)
	teacher, teacherToken := s.login("teacher@example.com", model.Teacher)
	_, otherToken := s.login("other@example.com", model.Teacher)
	_, studentToken := s.login("student@example.com", model.Student)

	w := s.do(http.MethodPost, "/api/courses", adminToken, gin.H{
		"title":      "Algorithms I",
		"password":   "join-me",
		"teacherIds": []uint{teacher.ID},
		"schedules": []gin.H{
			{"day": "monday", "startTime": "08:00", "endTime": "10:00"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var course struct {
		ID          uint `json:"id"`
		HasPassword bool `json:"hasPassword"`
	}
	decode(t, w, &course)
	assert.True(t, course.HasPassword)

	w = s.do(http.MethodGet, "/api/teacher/courses", teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var mine []struct {
		ID        uint `json:"id"`
		Schedules []struct {
			StartTime string `json:"startTime"`
			EndTime   string `json:"endTime"`
		} `json:"schedules"`
		Teachers []struct {
			ID uint `json:"id"`
		} `json:"teachers"`
	}
	decode(t, w, &mine)
	require.Len(t, mine, 1)
	assert.Equal(t, course.ID, mine[0].ID)
	require.Len(t, mine[0].Schedules, 1)
	assert.Equal(t, "08:00", mine[0].Schedules[0].StartTime)
	assert.Equal(t, "10:00", mine[0].Schedules[0].EndTime)
	require.Len(t, mine[0].Teachers, 1)

	coursePath := fmt.Sprintf("/api/teacher/courses/%d", course.ID)
	w = s.do(http.MethodGet, coursePath, otherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = s.do(http.MethodGet, coursePath, studentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	joinPath := fmt.Sprintf("/api/student/courses/%d/join", course.ID)
	w = s.do(http.MethodPost, joinPath, studentToken, gin.H{"password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(http.MethodPost, joinPath, studentToken, gin.H{"password": "join-me"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/student/courses", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var joined []struct {
		ID uint `json:"id"`
	}
	decode(t, w, &joined)
	require.Len(t, joined, 1)

	w = s.do(http.MethodGet, coursePath+"/students", teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w, nil)
	assert.EqualValues(t, 1, env.Total)

	// teachers cannot reach the admin catalogue
	w = s.do(http.MethodGet, "/api/courses", teacherToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/courses/%d", course.ID), adminToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	// a finished course stays visible to its former members
	w = s.do(http.MethodGet, "/api/teacher/courses", teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &mine)
	assert.Len(t, mine, 1)
}

func TestDeletedUserLosesAccess(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.login("admin@example.com", model.Admin)
	teacher, teacherToken := s.login("teacher@example.com", model.Teacher)

	w := s.do(http.MethodPost, "/api/courses", adminToken, gin.H{"title": "Algorithms II", "teacherIds": []uint{teacher.ID}})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var course struct {
		ID uint `json:"id"`
	}
	decode(t, w, &course)
	coursePath := fmt.Sprintf("/api/teacher/courses/%d", course.ID)

	w = s.do(http.MethodGet, coursePath, teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/users/%d", teacher.ID), adminToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, coursePath, teacherToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(http.MethodGet, "/api/auth/profile", teacherToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// the detail view agrees with the listing once the teacher is gone
	type teachers struct {
		Teachers []struct {
			ID uint `json:"id"`
		} `json:"teachers"`
	}
	w = s.do(http.MethodGet, fmt.Sprintf("/api/courses/%d", course.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var detail teachers
	decode(t, w, &detail)
	assert.Empty(t, detail.Teachers)

	w = s.do(http.MethodGet, "/api/courses", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []teachers
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Empty(t, list[0].Teachers)

	// finalized courses load unscoped and still hide the deleted teacher
	w = s.do(http.MethodDelete, fmt.Sprintf("/api/courses/%d", course.ID), adminToken, nil)
	require.Equal(t, http.StatusNoContent, w.Code)
	w = s.do(http.MethodGet, fmt.Sprintf("/api/courses/%d", course.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &detail)
	assert.Empty(t, detail.Teachers)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/users/%d/restore", teacher.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w = s.do(http.MethodGet, "/api/auth/profile", teacherToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestLoginWithMixedCaseEmail(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.login("admin@example.com", model.Admin)

	w := s.do(http.MethodPost, "/api/users", adminToken, gin.H{
		"name":      "Lucia",
		"lastName":  "Perez",
		"dni":       "23456789",
		"birthDate": "2001-05-04",
		"email":     "Lucia@Example.com",
		"password":  "abcdef",
		"role":      "student",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "Lucia@Example.com", "password": "abcdef"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestMissionAndReinforcementRoutes(t *testing.T) {
	s := newTestServer(t)
	_, adminToken := s.login("admin@example.com", model.Admin)
	teacher, teacherToken := s.login("teacher@example.com", model.Teacher)
	student, studentToken := s.login("student@example.com", model.Student)

	course := testutil.CreateCourse(t, s.db, "Data Structures")
	testutil.AssignTeacher(t, s.db, course.ID, teacher.ID, model.MembershipActive)
	testutil.EnrollStudent(t, s.db, course.ID, student.ID, model.MembershipActive)

	w := s.do(http.MethodPost, "/api/difficulties", adminToken, gin.H{"topic": "Recursion"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var difficulty struct {
		ID uint `json:"id"`
	}
	decode(t, w, &difficulty)

	w = s.do(http.MethodGet, "/api/difficulties?search=recur", studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w, nil).Total)

	w = s.do(http.MethodPost, "/api/missions", adminToken, gin.H{"name": "Fibonacci", "difficultyId": difficulty.ID, "experience": 50})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var mission struct {
		ID       uint `json:"id"`
		MaxStars int  `json:"maxStars"`
	}
	decode(t, w, &mission)
	assert.Equal(t, 3, mission.MaxStars)

	completePath := fmt.Sprintf("/api/student/courses/%d/missions/%d/complete", course.ID, mission.ID)
	w = s.do(http.MethodPost, completePath, studentToken, gin.H{"stars": 2, "experience": 30})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPost, completePath, studentToken, gin.H{"stars": 1, "experience": 10})
	require.Equal(t, http.StatusOK, w.Code)
	var completion struct {
		Stars    int `json:"stars"`
		Attempts int `json:"attempts"`
	}
	decode(t, w, &completion)
	assert.Equal(t, 2, completion.Stars)
	assert.Equal(t, 2, completion.Attempts)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/teacher/courses/%d/missions/progress?stars=2%%2B", course.ID), teacherToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.EqualValues(t, 1, decode(t, w, nil).Total)

	gradePath := fmt.Sprintf("/api/teacher/courses/%d/students/%d/difficulties", course.ID, student.ID)
	w = s.do(http.MethodPut, gradePath, teacherToken, gin.H{"difficultyId": difficulty.ID, "grade": "high"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, fmt.Sprintf("/api/student/courses/%d/difficulties", course.ID), studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var grades []struct {
		Grade string `json:"grade"`
	}
	decode(t, w, &grades)
	require.Len(t, grades, 1)
	assert.Equal(t, "high", grades[0].Grade)

	w = s.do(http.MethodPost, "/api/questions", adminToken, gin.H{
		"difficultyId": difficulty.ID,
		"grade":        "high",
		"statement":    "fib(5)?",
		"options":      []string{"3", "5", "8"},
		"answer":       "5",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var question struct {
		ID uint `json:"id"`
	}
	decode(t, w, &question)

	w = s.do(http.MethodPost, fmt.Sprintf("/api/teacher/courses/%d/reinforcements", course.ID), teacherToken, gin.H{
		"name":         "Recursion drill",
		"difficultyId": difficulty.ID,
		"grade":        "high",
		"timeLimit":    20,
		"questionIds":  []uint{question.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var session struct {
		ID uint `json:"id"`
	}
	decode(t, w, &session)

	w = s.do(http.MethodGet, fmt.Sprintf("/api/student/reinforcements/%d", session.ID), studentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), `"answer"`)

	w = s.do(http.MethodDelete, fmt.Sprintf("/api/teacher/reinforcements/%d", session.ID), teacherToken, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, "/api/audit-logs?table=missions", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decode(t, w, nil).Total)

	w = s.do(http.MethodPost, "/api/audit-logs/export", adminToken, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var export struct {
		Count int `json:"count"`
	}
	decode(t, w, &export)
	assert.Greater(t, export.Count, 0)
}
