package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	validator "github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/school-admin-api/api/swagger"
	"github.com/noah-isme/school-admin-api/internal/handler"
	"github.com/noah-isme/school-admin-api/internal/middleware"
	"github.com/noah-isme/school-admin-api/internal/repository"
	"github.com/noah-isme/school-admin-api/internal/service"
	"github.com/noah-isme/school-admin-api/pkg/cache"
	"github.com/noah-isme/school-admin-api/pkg/config"
	"github.com/noah-isme/school-admin-api/pkg/database"
	"github.com/noah-isme/school-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/school-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/school-admin-api/pkg/middleware/requestid"
)

// @title School Admin API
// @version 1.0.0
// @description School administration backend
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, timetable caching disabled", "error", err)
		redisClient = nil
	}
	if !cfg.Timetable.CacheEnabled {
		redisClient = nil
	}

	validate := validator.New()

	// Repositories.
	yearRepo := repository.NewAcademicYearRepository(db)
	classRepo := repository.NewClassRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	timeSlotRepo := repository.NewTimeSlotRepository(db)
	studentAttRepo := repository.NewStudentAttendanceRepository(db)
	teacherAttRepo := repository.NewTeacherAttendanceRepository(db)
	examRepo := repository.NewExamRepository(db)
	eventRepo := repository.NewEventRepository(db)
	incidentRepo := repository.NewIncidentRepository(db)
	userRepo := repository.NewUserRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
		SingleSession:      cfg.JWT.SingleSession,
	})
	yearSvc := service.NewAcademicYearService(yearRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, yearRepo, validate, logr)
	sectionSvc := service.NewSectionService(sectionRepo, classRepo, teacherRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, assignmentRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	assignmentSvc := service.NewAssignmentService(assignmentRepo, sectionRepo, teacherRepo, subjectRepo, studentRepo, validate, logr)
	timeSlotSvc := service.NewTimeSlotService(timeSlotRepo, cacheRepo, cfg.Timetable.CacheTTL, metricsSvc, validate, logr)
	attendanceSvc := service.NewAttendanceService(studentAttRepo, teacherAttRepo, assignmentRepo, validate, logr)
	examSvc := service.NewExamService(examRepo, subjectRepo, sectionRepo, yearRepo, validate, logr)
	eventSvc := service.NewEventService(eventRepo, validate, logr)
	incidentSvc := service.NewIncidentService(incidentRepo, validate, logr)
	exportSvc := service.NewExportService(attendanceSvc, examSvc, nil, nil, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	yearHandler := handler.NewAcademicYearHandler(yearSvc)
	classHandler := handler.NewClassHandler(classSvc)
	sectionHandler := handler.NewSectionHandler(sectionSvc)
	studentHandler := handler.NewStudentHandler(studentSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	assignmentHandler := handler.NewAssignmentHandler(assignmentSvc)
	timetableHandler := handler.NewTimetableHandler(timeSlotSvc)
	attendanceHandler := handler.NewAttendanceHandler(attendanceSvc)
	examHandler := handler.NewExamHandler(examSvc)
	eventHandler := handler.NewEventHandler(eventSvc)
	incidentHandler := handler.NewIncidentHandler(incidentSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	auth := api.Group("", middleware.JWT(authSvc))
	{
		auth.POST("/auth/logout", authHandler.Logout)
		auth.POST("/auth/change-password", authHandler.ChangePassword)
		auth.GET("/auth/me", authHandler.Me)
	}

	admin := middleware.AdminOnly()
	staff := middleware.Staff()

	years := auth.Group("/academic-years")
	{
		years.GET("", yearHandler.List)
		years.GET("/active", yearHandler.Active)
		years.GET("/:id", yearHandler.Get)
		years.POST("", admin, yearHandler.Create)
		years.PUT("/:id", admin, yearHandler.Update)
		years.POST("/:id/activate", admin, yearHandler.SetActive)
	}

	classes := auth.Group("/classes")
	{
		classes.GET("", classHandler.List)
		classes.GET("/:id", classHandler.Get)
		classes.POST("", admin, classHandler.Create)
		classes.PUT("/:id", admin, classHandler.Update)
		classes.DELETE("/:id", admin, classHandler.Delete)
		classes.GET("/:id/sections", sectionHandler.ListByClass)
	}

	sections := auth.Group("/sections")
	{
		sections.GET("/:id", sectionHandler.Get)
		sections.POST("", admin, sectionHandler.Create)
		sections.PUT("/:id", admin, sectionHandler.Update)
		sections.PUT("/:id/homeroom", admin, sectionHandler.SetHomeroom)
		sections.DELETE("/:id", admin, sectionHandler.Delete)
		sections.GET("/:id/students", staff, assignmentHandler.SectionStudents)
		sections.PUT("/:id/students", admin, assignmentHandler.SetSectionStudents)
		sections.GET("/:id/subject-teachers", staff, assignmentHandler.SectionSubjectTeachers)
		sections.PUT("/:id/subject-teachers", admin, assignmentHandler.SetSectionSubjectTeacher)
	}

	students := auth.Group("/students")
	{
		students.GET("", staff, studentHandler.List)
		students.GET("/:id", middleware.RBAC("ADMIN", "TEACHER", "SELF"), studentHandler.Get)
		students.POST("", admin, studentHandler.Create)
		students.PUT("/:id", admin, studentHandler.Update)
		students.DELETE("/:id", admin, studentHandler.Deactivate)
	}

	teachers := auth.Group("/teachers")
	{
		teachers.GET("", staff, teacherHandler.List)
		teachers.GET("/:id", staff, teacherHandler.Get)
		teachers.POST("", admin, teacherHandler.Create)
		teachers.PUT("/:id", admin, teacherHandler.Update)
		teachers.DELETE("/:id", admin, teacherHandler.Deactivate)
		teachers.GET("/:id/subjects", staff, assignmentHandler.TeacherSubjects)
		teachers.PUT("/:id/subjects/:subjectId", admin, assignmentHandler.AddTeacherSubject)
		teachers.DELETE("/:id/subjects/:subjectId", admin, assignmentHandler.RemoveTeacherSubject)
		teachers.GET("/:id/assignments", staff, assignmentHandler.TeacherSectionAssignments)
	}

	subjects := auth.Group("/subjects")
	{
		subjects.GET("", subjectHandler.List)
		subjects.GET("/:id", subjectHandler.Get)
		subjects.POST("", admin, subjectHandler.Create)
		subjects.PUT("/:id", admin, subjectHandler.Update)
		subjects.DELETE("/:id", admin, subjectHandler.Delete)
	}

	auth.GET("/timetable", timetableHandler.DayView)
	slots := auth.Group("/time-slots")
	{
		slots.GET("/:id", timetableHandler.Get)
		slots.POST("", admin, timetableHandler.Create)
		slots.PUT("/:id", admin, timetableHandler.Update)
		slots.DELETE("/:id", admin, timetableHandler.Delete)
	}

	attendance := auth.Group("/attendance")
	{
		attendance.POST("/students", staff, attendanceHandler.MarkStudent)
		attendance.GET("/sections/:id", staff, attendanceHandler.SectionRegister)
		attendance.GET("/students/:id", middleware.RBAC("ADMIN", "TEACHER", "SELF"), attendanceHandler.StudentHistory)
		attendance.GET("/students/:id/summary", middleware.RBAC("ADMIN", "TEACHER", "SELF"), attendanceHandler.StudentSummary)
		attendance.POST("/teachers", admin, attendanceHandler.MarkTeacher)
		attendance.GET("/teachers/register", admin, attendanceHandler.TeacherRegister)
		attendance.GET("/teachers/:id", middleware.RBAC("ADMIN", "SELF"), attendanceHandler.TeacherHistory)
	}

	exams := auth.Group("/exams")
	{
		exams.GET("", examHandler.List)
		exams.GET("/:id", examHandler.Get)
		exams.POST("", staff, examHandler.Create)
		exams.PUT("/:id", staff, examHandler.Update)
		exams.DELETE("/:id", admin, examHandler.Delete)
		exams.POST("/:id/results", staff, examHandler.RecordResult)
		exams.GET("/:id/results", staff, examHandler.Results)
	}

	events := auth.Group("/events")
	{
		events.GET("", eventHandler.ListEvents)
		events.GET("/:id", eventHandler.GetEvent)
		events.POST("", staff, eventHandler.CreateEvent)
		events.PUT("/:id", staff, eventHandler.UpdateEvent)
		events.DELETE("/:id", staff, eventHandler.DeleteEvent)
	}

	tasks := auth.Group("/tasks")
	{
		tasks.GET("", eventHandler.ListTasks)
		tasks.POST("", staff, eventHandler.CreateTask)
		tasks.PUT("/:id", staff, eventHandler.UpdateTask)
		tasks.DELETE("/:id", staff, eventHandler.DeleteTask)
	}

	incidents := auth.Group("/incidents", staff)
	{
		incidents.GET("", incidentHandler.List)
		incidents.GET("/:id", incidentHandler.Get)
		incidents.POST("", incidentHandler.Create)
		incidents.PUT("/:id", incidentHandler.Update)
		incidents.DELETE("/:id", admin, incidentHandler.Delete)
	}

	if cfg.Exports.Enabled {
		exports := auth.Group("/exports", staff)
		{
			exports.GET("/attendance/sections/:id", exportHandler.AttendanceRegisterCSV)
			exports.GET("/exams/:id/results", exportHandler.ExamResultSheetPDF)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
