package dto

import (
	"strings"
	"time"

	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/repository"
	"algoritmia_backend/internal/util"
)

// ListQuery carries the options every listing endpoint accepts.
type ListQuery struct {
	Page   int    `form:"page" binding:"omitempty,min=1"`
	Limit  int    `form:"limit" binding:"omitempty,min=1"`
	Sort   string `form:"sort" binding:"omitempty,max=32"`
	Order  string `form:"order" binding:"omitempty,oneof=asc desc ASC DESC"`
	Search string `form:"search" binding:"omitempty,max=100"`
}

func (q ListQuery) Pagination() repository.Pagination {
	return repository.Pagination{
		Page:   q.Page,
		Limit:  q.Limit,
		Sort:   q.Sort,
		Order:  q.Order,
		Search: q.Search,
	}.Normalized()
}

type UserListQuery struct {
	ListQuery
	Roles          []string `form:"role"`
	BirthFrom      string   `form:"birthFrom" binding:"omitempty,datetime=2006-01-02"`
	BirthTo        string   `form:"birthTo" binding:"omitempty,datetime=2006-01-02"`
	Age            string   `form:"age"`
	IncludeDeleted bool     `form:"includeDeleted"`
}

// Filter resolves the role set and turns the age bucket into a birth date
// window relative to now. Both windows intersect when given together.
func (q UserListQuery) Filter(now time.Time) (repository.UserFilter, error) {
	f := repository.UserFilter{
		Pagination:     q.Pagination(),
		IncludeDeleted: q.IncludeDeleted,
	}

	roles, err := splitRoles(q.Roles)
	if err != nil {
		return f, err
	}
	f.Roles = roles

	if q.BirthFrom != "" {
		d, _ := time.Parse(util.DateFormat, q.BirthFrom)
		f.BirthFrom = &d
	}
	if q.BirthTo != "" {
		d, _ := time.Parse(util.DateFormat, q.BirthTo)
		f.BirthTo = &d
	}

	if q.Age != "" {
		age, err := repository.ParseNumberRange(q.Age)
		if err != nil {
			return f, util.FieldInvalid("age", "age must look like 13-17, 18+ or 21")
		}
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		if age.Min != nil {
			to := today.AddDate(-*age.Min, 0, 0)
			if f.BirthTo == nil || to.Before(*f.BirthTo) {
				f.BirthTo = &to
			}
		}
		if age.Max != nil {
			from := today.AddDate(-(*age.Max + 1), 0, 1)
			if f.BirthFrom == nil || from.After(*f.BirthFrom) {
				f.BirthFrom = &from
			}
		}
	}
	return f, nil
}

// splitRoles accepts both ?role=a&role=b and ?role=a,b.
func splitRoles(values []string) ([]model.UserRole, error) {
	var roles []model.UserRole
	seen := make(map[model.UserRole]bool)
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(strings.ToLower(part))
			if part == "" {
				continue
			}
			role := model.UserRole(part)
			if !role.Valid() {
				return nil, util.FieldInvalid("role", "role must be one of student, teacher, admin")
			}
			if !seen[role] {
				seen[role] = true
				roles = append(roles, role)
			}
		}
	}
	return roles, nil
}

type CourseListQuery struct {
	ListQuery
	Status string `form:"status" binding:"omitempty,oneof=active finished all"`
	Day    string `form:"day" binding:"omitempty,oneof=monday tuesday wednesday thursday friday saturday sunday"`
}

func (q CourseListQuery) Filter() repository.CourseFilter {
	return repository.CourseFilter{
		Pagination: q.Pagination(),
		Status:     q.Status,
		Day:        model.Weekday(q.Day),
	}
}

type StudentListQuery struct {
	ListQuery
	Status string `form:"status" binding:"omitempty,oneof=active inactive"`
}

func (q StudentListQuery) Filter() repository.StudentFilter {
	return repository.StudentFilter{
		Pagination: q.Pagination(),
		Status:     model.MembershipStatus(q.Status),
	}
}

type MissionListQuery struct {
	ListQuery
	DifficultyID uint `form:"difficultyId"`
}

func (q MissionListQuery) Filter() repository.MissionFilter {
	return repository.MissionFilter{
		Pagination:   q.Pagination(),
		DifficultyID: q.DifficultyID,
	}
}

type CompletionListQuery struct {
	ListQuery
	StudentID uint   `form:"studentId"`
	Stars     string `form:"stars"`
}

func (q CompletionListQuery) Filter(courseID uint) (repository.CompletionFilter, error) {
	stars, err := repository.ParseNumberRange(q.Stars)
	if err != nil {
		return repository.CompletionFilter{}, util.FieldInvalid("stars", "stars must look like 1-2, 2+ or 3")
	}
	return repository.CompletionFilter{
		Pagination: q.Pagination(),
		CourseID:   courseID,
		StudentID:  q.StudentID,
		Stars:      stars,
	}, nil
}

type QuestionListQuery struct {
	ListQuery
	DifficultyID uint   `form:"difficultyId"`
	Grade        string `form:"grade" binding:"omitempty,oneof=none low medium high"`
}

func (q QuestionListQuery) Filter() repository.QuestionFilter {
	return repository.QuestionFilter{
		Pagination:   q.Pagination(),
		DifficultyID: q.DifficultyID,
		Grade:        model.DifficultyGrade(q.Grade),
	}
}

type AuditListQuery struct {
	ListQuery
	Table     string `form:"table" binding:"omitempty,max=64"`
	Operation string `form:"operation" binding:"omitempty,oneof=create update delete"`
	UserID    uint   `form:"userId"`
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// Filter treats To as an inclusive day.
func (q AuditListQuery) Filter() repository.AuditFilter {
	f := repository.AuditFilter{
		Pagination: repository.Pagination{
			Page:   q.Page,
			Limit:  q.Limit,
			Sort:   q.Sort,
			Order:  q.Order,
			Search: q.Search,
		},
		Table:     q.Table,
		Operation: model.AuditOperation(q.Operation),
		UserID:    q.UserID,
	}
	if q.From != "" {
		d, _ := time.Parse(util.DateFormat, q.From)
		f.From = &d
	}
	if q.To != "" {
		d, _ := time.Parse(util.DateFormat, q.To)
		d = d.AddDate(0, 0, 1)
		f.To = &d
	}
	return f
}
