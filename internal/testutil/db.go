// Package testutil opens throwaway databases for store-backed tests.
package testutil

import (
	"testing"
	"time"

	"algoritmia_backend/internal/model"
	"algoritmia_backend/pkg/database"

	"github.com/glebarez/sqlite"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenDB returns a migrated in-memory SQLite database private to t.
func OpenDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("test db handle: %v", err)
	}
	// every connection to :memory: is a new database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// CreateUser stores a user with a cheap password hash.
func CreateUser(t *testing.T, db *gorm.DB, email string, role model.UserRole, password ...string) *model.User {
	t.Helper()

	pwd := "secret1"
	if len(password) > 0 {
		pwd = password[0]
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	user := &model.User{
		Name:      "Name " + email,
		LastName:  "Last",
		DNI:       dniFor(t, db),
		BirthDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Email:     email,
		Password:  string(hash),
		Role:      role,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return user
}

func dniFor(t *testing.T, db *gorm.DB) string {
	var count int64
	if err := db.Unscoped().Model(&model.User{}).Count(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	return time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, int(count)).Format("20060102")
}

// CreateCourse stores a course and returns it.
func CreateCourse(t *testing.T, db *gorm.DB, title string) *model.Course {
	t.Helper()

	course := &model.Course{Title: title}
	if err := db.Create(course).Error; err != nil {
		t.Fatalf("create course %s: %v", title, err)
	}
	return course
}

func AssignTeacher(t *testing.T, db *gorm.DB, courseID, teacherID uint, status model.MembershipStatus) *model.TeacherAssignment {
	t.Helper()

	a := &model.TeacherAssignment{CourseID: courseID, TeacherID: teacherID, Status: status}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("assign teacher: %v", err)
	}
	return a
}

func EnrollStudent(t *testing.T, db *gorm.DB, courseID, studentID uint, status model.MembershipStatus) *model.StudentEnrollment {
	t.Helper()

	e := &model.StudentEnrollment{CourseID: courseID, StudentID: studentID, Status: status}
	if err := db.Create(e).Error; err != nil {
		t.Fatalf("enroll student: %v", err)
	}
	return e
}
