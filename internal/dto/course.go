package dto

import (
	"strconv"
	"strings"
	"time"

	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/util"
	"algoritmia_backend/pkg/validation"
)

// clockDate anchors clock values to a date every SQL backend accepts.
var clockDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

type ScheduleRequest struct {
	Day       string `json:"day" binding:"required,oneof=monday tuesday wednesday thursday friday saturday sunday"`
	StartTime string `json:"startTime" binding:"required,datetime=15:04"`
	EndTime   string `json:"endTime" binding:"required,datetime=15:04"`
}

func parseClock(s string) time.Time {
	t, _ := time.Parse(util.ClockFormat, s)
	return clockDate.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute)
}

// ToSchedules converts validated requests and checks each slot ends after it
// starts.
func ToSchedules(reqs []ScheduleRequest) ([]model.CourseSchedule, error) {
	schedules := make([]model.CourseSchedule, 0, len(reqs))
	var fields []validation.FieldError
	for i, r := range reqs {
		start, end := parseClock(r.StartTime), parseClock(r.EndTime)
		if !end.After(start) {
			fields = append(fields, validation.FieldError{
				Field: "schedules[" + strconv.Itoa(i) + "].endTime",
				Error: "endTime must be after startTime",
			})
			continue
		}
		schedules = append(schedules, model.CourseSchedule{
			Day:       model.Weekday(r.Day),
			StartTime: start,
			EndTime:   end,
		})
	}
	if len(fields) > 0 {
		return nil, util.NewValidationError(fields...)
	}
	return schedules, nil
}

type CreateCourseRequest struct {
	Title       string            `json:"title" binding:"required,max=150"`
	Description string            `json:"description" binding:"max=500"`
	Password    string            `json:"password" binding:"omitempty,min=4,max=72"`
	Schedules   []ScheduleRequest `json:"schedules" binding:"dive"`
	TeacherIDs  []uint            `json:"teacherIds" binding:"omitempty,unique,dive,min=1"`
}

func (r CreateCourseRequest) ToModel() *model.Course {
	return &model.Course{
		Title:       strings.TrimSpace(r.Title),
		Description: strings.TrimSpace(r.Description),
	}
}

type UpdateCourseRequest struct {
	Title       *string            `json:"title" binding:"omitnil,min=1,max=150"`
	Description *string            `json:"description" binding:"omitnil,max=500"`
	Password    *string            `json:"password" binding:"omitnil,max=72"`
	Schedules   *[]ScheduleRequest `json:"schedules" binding:"omitnil,dive"`
}

func (r UpdateCourseRequest) Apply(c *model.Course) {
	if r.Title != nil {
		c.Title = strings.TrimSpace(*r.Title)
	}
	if r.Description != nil {
		c.Description = strings.TrimSpace(*r.Description)
	}
}

type AssignTeacherRequest struct {
	TeacherID uint `json:"teacherId" binding:"required,min=1"`
}

type EnrollStudentRequest struct {
	StudentID uint `json:"studentId" binding:"required,min=1"`
}

type MembershipStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active inactive"`
}

type JoinCourseRequest struct {
	Password string `json:"password" binding:"required,max=72"`
}
