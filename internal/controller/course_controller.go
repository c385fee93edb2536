package controller

import (
	"algoritmia_backend/internal/dto"
	"algoritmia_backend/internal/model"
	"algoritmia_backend/internal/service"
	"algoritmia_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// CourseController serves the admin course catalogue and the course views of
// teachers and students.
type CourseController struct {
	CourseService *service.CourseService
}

func NewCourseController(courseService *service.CourseService) *CourseController {
	return &CourseController{CourseService: courseService}
}

func (c *CourseController) GetCourses(ctx *gin.Context) {
	var q dto.CourseListQuery
	if !util.BindQuery(ctx, &q) {
		return
	}
	f := q.Filter()

	courses, total, err := c.CourseService.List(ctx.Request.Context(), f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Page(ctx, courses, total, f.Page, f.Limit)
}

func (c *CourseController) GetCourse(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	course, err := c.CourseService.Get(ctx.Request.Context(), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

func (c *CourseController) CreateCourse(ctx *gin.Context) {
	var req dto.CreateCourseRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	course, err := c.CourseService.Create(ctx.Request.Context(), util.GetPrincipal(ctx), req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, course)
}

func (c *CourseController) UpdateCourse(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.UpdateCourseRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	course, err := c.CourseService.Update(ctx.Request.Context(), util.GetPrincipal(ctx), id, req)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

func (c *CourseController) DeleteCourse(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.CourseService.Delete(ctx.Request.Context(), util.GetPrincipal(ctx), id); err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.NoContent(ctx)
}

func (c *CourseController) AssignTeacher(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.AssignTeacherRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	assignment, err := c.CourseService.AssignTeacher(ctx.Request.Context(), util.GetPrincipal(ctx), id, req.TeacherID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, assignment)
}

func (c *CourseController) SetTeacherStatus(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	teacherID, ok := idParam(ctx, "teacherId")
	if !ok {
		return
	}
	var req dto.MembershipStatusRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	assignment, err := c.CourseService.SetTeacherStatus(ctx.Request.Context(), util.GetPrincipal(ctx), id, teacherID, model.MembershipStatus(req.Status))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, assignment)
}

func (c *CourseController) EnrollStudent(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.EnrollStudentRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	enrollment, err := c.CourseService.EnrollStudent(ctx.Request.Context(), util.GetPrincipal(ctx), id, req.StudentID)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Created(ctx, enrollment)
}

func (c *CourseController) SetStudentStatus(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	studentID, ok := idParam(ctx, "studentId")
	if !ok {
		return
	}
	var req dto.MembershipStatusRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	enrollment, err := c.CourseService.SetStudentStatus(ctx.Request.Context(), util.GetPrincipal(ctx), id, studentID, model.MembershipStatus(req.Status))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, enrollment)
}

// FindMyCourses lists the courses the calling teacher can still open.
func (c *CourseController) FindMyCourses(ctx *gin.Context) {
	courses, err := c.CourseService.FindMyCourses(ctx.Request.Context(), util.GetPrincipal(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

func (c *CourseController) MemberCourse(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}

	course, err := c.CourseService.MemberCourse(ctx.Request.Context(), util.GetPrincipal(ctx), id)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, course)
}

func (c *CourseController) CourseStudents(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var q dto.StudentListQuery
	if !util.BindQuery(ctx, &q) {
		return
	}
	f := q.Filter()

	students, total, err := c.CourseService.CourseStudents(ctx.Request.Context(), util.GetPrincipal(ctx), id, f)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Page(ctx, students, total, f.Page, f.Limit)
}

func (c *CourseController) StudentCourses(ctx *gin.Context) {
	courses, err := c.CourseService.StudentCourses(ctx.Request.Context(), util.GetPrincipal(ctx))
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, courses)
}

func (c *CourseController) JoinCourse(ctx *gin.Context) {
	id, ok := idParam(ctx, "id")
	if !ok {
		return
	}
	var req dto.JoinCourseRequest
	if !util.BindJSON(ctx, &req) {
		return
	}

	enrollment, err := c.CourseService.JoinCourse(ctx.Request.Context(), util.GetPrincipal(ctx), id, req.Password)
	if err != nil {
		util.HandleError(ctx, err)
		return
	}
	util.Success(ctx, enrollment)
}
