package app

import (
	"algoritmia_backend/internal/config"
	"algoritmia_backend/internal/middleware"
	"algoritmia_backend/internal/model"
	"algoritmia_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. public
	a.registerPublicRoutes(router, c)

	// 2. any authenticated role
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg.JWT.Secret, repos.revoker(), repos.user))
	{
		authGroup.GET("/auth/profile", c.auth.Profile)
		authGroup.POST("/auth/logout", c.auth.Logout)

		authGroup.GET("/difficulties", c.difficulty.GetDifficulties)
		authGroup.GET("/missions", c.mission.GetMissions)

		a.registerAdminRoutes(authGroup, c)
		a.registerTeacherRoutes(authGroup, c)
		a.registerStudentRoutes(authGroup, c)
	}
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/auth/login", c.auth.Login)
	}
}

func (a *App) registerAdminRoutes(rg *gin.RouterGroup, c *controllers) {
	admin := rg.Group("")
	admin.Use(middleware.RoleMiddleware(model.Admin))

	users := admin.Group("/users")
	{
		users.GET("", c.user.GetUsers)
		users.POST("", c.user.CreateUser)
		users.GET("/:id", c.user.GetUser)
		users.PATCH("/:id", c.user.UpdateUser)
		users.DELETE("/:id", c.user.DeleteUser)
		users.POST("/:id/restore", c.user.RestoreUser)
	}

	courses := admin.Group("/courses")
	{
		courses.GET("", c.course.GetCourses)
		courses.POST("", c.course.CreateCourse)
		courses.GET("/:id", c.course.GetCourse)
		courses.PATCH("/:id", c.course.UpdateCourse)
		courses.DELETE("/:id", c.course.DeleteCourse)
		courses.POST("/:id/teachers", c.course.AssignTeacher)
		courses.PATCH("/:id/teachers/:teacherId", c.course.SetTeacherStatus)
		courses.POST("/:id/students", c.course.EnrollStudent)
		courses.PATCH("/:id/students/:studentId", c.course.SetStudentStatus)
	}

	difficulties := admin.Group("/difficulties")
	{
		difficulties.POST("", c.difficulty.CreateDifficulty)
		difficulties.PATCH("/:id", c.difficulty.UpdateDifficulty)
		difficulties.DELETE("/:id", c.difficulty.DeleteDifficulty)
	}

	missions := admin.Group("/missions")
	{
		missions.POST("", c.mission.CreateMission)
		missions.GET("/:id", c.mission.GetMission)
		missions.PATCH("/:id", c.mission.UpdateMission)
		missions.DELETE("/:id", c.mission.DeleteMission)
	}

	questions := admin.Group("/questions")
	{
		questions.GET("", c.reinforcement.GetQuestions)
		questions.POST("", c.reinforcement.CreateQuestion)
	}

	audit := admin.Group("/audit-logs")
	{
		audit.GET("", c.audit.GetAuditLogs)
		audit.POST("/export", c.audit.ExportAuditLogs)
	}
}

func (a *App) registerTeacherRoutes(rg *gin.RouterGroup, c *controllers) {
	teacher := rg.Group("/teacher")
	teacher.Use(middleware.RoleMiddleware(model.Teacher))
	{
		teacher.GET("/courses", c.course.FindMyCourses)
		teacher.GET("/courses/:id", c.course.MemberCourse)
		teacher.GET("/courses/:id/students", c.course.CourseStudents)
		teacher.GET("/courses/:id/students/:studentId/difficulties", c.difficulty.StudentDifficulties)
		teacher.PUT("/courses/:id/students/:studentId/difficulties", c.difficulty.SetGrade)
		teacher.GET("/courses/:id/missions/progress", c.mission.Progress)
		teacher.GET("/courses/:id/reinforcements", c.reinforcement.GetSessions)
		teacher.POST("/courses/:id/reinforcements", c.reinforcement.CreateSession)
		teacher.DELETE("/reinforcements/:id", c.reinforcement.DeleteSession)
	}
}

func (a *App) registerStudentRoutes(rg *gin.RouterGroup, c *controllers) {
	student := rg.Group("/student")
	student.Use(middleware.RoleMiddleware(model.Student))
	{
		student.GET("/courses", c.course.StudentCourses)
		student.POST("/courses/:id/join", c.course.JoinCourse)
		student.GET("/courses/:id/difficulties", c.difficulty.MyDifficulties)
		student.GET("/courses/:id/missions", c.mission.MyCompletions)
		student.POST("/courses/:id/missions/:missionId/complete", c.mission.CompleteMission)
		student.GET("/courses/:id/reinforcements", c.reinforcement.GetSessions)
		student.GET("/reinforcements/:id", c.reinforcement.GetSession)
	}
}
