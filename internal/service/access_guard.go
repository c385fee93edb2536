package service

import (
	"context"

	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/util"
	"algoritmia_backend/pkg/monitoring"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// MembershipFinder looks up the relationship between a user and a course.
// Implementations must load the membership's course, soft-deleted or not.
type MembershipFinder interface {
	FindTeacherAssignment(ctx context.Context, teacherID, courseID uint) (*model.TeacherAssignment, error)
	FindStudentEnrollment(ctx context.Context, studentID, courseID uint) (*model.StudentEnrollment, error)
}

// AccessGuard decides whether a principal may act on a course. It never
// writes anything.
type AccessGuard struct {
	Memberships MembershipFinder
}

func NewAccessGuard(memberships MembershipFinder) *AccessGuard {
	return &AccessGuard{Memberships: memberships}
}

// CheckCourse succeeds for admins, and for teachers and students whose
// membership is active or whose course has been finalized.
func (g *AccessGuard) CheckCourse(ctx context.Context, p model.Principal, courseID uint) error {
	var (
		m   model.Membership
		err error
	)
	switch p.Role {
	case model.Admin:
		return nil
	case model.Teacher:
		m, err = g.Memberships.FindTeacherAssignment(ctx, p.UserID, courseID)
	case model.Student:
		m, err = g.Memberships.FindStudentEnrollment(ctx, p.UserID, courseID)
	default:
		return g.deny(p, util.ErrPermissionDenied)
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return g.deny(p, util.ErrNotAssigned)
	}
	if err != nil {
		return errors.Wrap(err, "find membership")
	}
	if !model.IsAccessible(m.MembershipStatus(), m.CourseFinished()) {
		return g.deny(p, util.ErrNotAssigned)
	}
	return nil
}

func (g *AccessGuard) deny(p model.Principal, err error) error {
	monitoring.AccessDenied.WithLabelValues(string(p.Role)).Inc()
	return err
}
