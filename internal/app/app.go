package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"algoritmia_backend/internal/config"
	"algoritmia_backend/internal/controller"
	"algoritmia_backend/internal/middleware"
	"algoritmia_backend/internal/repository"
	"algoritmia_backend/internal/service"
	"algoritmia_backend/internal/util"
	"algoritmia_backend/pkg/configwatcher"
	"algoritmia_backend/pkg/database"
	"algoritmia_backend/pkg/logger"
	"algoritmia_backend/pkg/monitoring"
	"algoritmia_backend/pkg/security"
	"algoritmia_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const serviceName = "algoritmia-backend"

type App struct {
	Config  *config.Config
	Router  *gin.Engine
	DB      *gorm.DB
	Redis   *redis.Client
	limiter *security.Limiter

	shutdownTracer  func(context.Context) error
	configCallbacks []configwatcher.Reloader
}

type repositories struct {
	user          *repository.UserRepository
	course        *repository.CourseRepository
	membership    *repository.MembershipRepository
	difficulty    *repository.DifficultyRepository
	mission       *repository.MissionRepository
	reinforcement *repository.ReinforcementRepository
	audit         *repository.AuditRepository
	token         *repository.TokenRepository
}

type services struct {
	guard         *service.AccessGuard
	storage       *service.StorageService
	auth          *service.AuthService
	user          *service.UserService
	course        *service.CourseService
	difficulty    *service.DifficultyService
	mission       *service.MissionService
	reinforcement *service.ReinforcementService
	audit         *service.AuditService
}

type controllers struct {
	auth          *controller.AuthController
	user          *controller.UserController
	course        *controller.CourseController
	difficulty    *controller.DifficultyController
	mission       *controller.MissionController
	reinforcement *controller.ReinforcementController
	audit         *controller.AuditController
	health        *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback configwatcher.Reloader) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

func (a *App) initRepositories(db *gorm.DB, rdb *redis.Client) *repositories {
	repos := &repositories{
		user:          repository.NewUserRepository(db),
		course:        repository.NewCourseRepository(db),
		membership:    repository.NewMembershipRepository(db),
		difficulty:    repository.NewDifficultyRepository(db),
		mission:       repository.NewMissionRepository(db),
		reinforcement: repository.NewReinforcementRepository(db),
		audit:         repository.NewAuditRepository(db),
	}
	if rdb != nil {
		repos.token = repository.NewTokenRepository(rdb)
	}
	return repos
}

// revoker keeps the interface nil when Redis is disabled.
func (r *repositories) revoker() service.TokenRevoker {
	if r.token == nil {
		return nil
	}
	return r.token
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	s.guard = service.NewAccessGuard(repos.membership)
	s.storage = service.NewStorageService(cfg)
	s.auth = service.NewAuthService(repos.user, repos.revoker(), cfg)
	s.user = service.NewUserService(db, repos.user, repos.audit, cfg)
	s.course = service.NewCourseService(db, repos.course, repos.membership, repos.user, repos.audit, s.guard, cfg)
	s.difficulty = service.NewDifficultyService(db, repos.difficulty, repos.membership, repos.audit, s.guard)
	s.mission = service.NewMissionService(db, repos.mission, repos.difficulty, repos.audit, s.guard)
	s.reinforcement = service.NewReinforcementService(db, repos.reinforcement, repos.difficulty, repos.audit, s.guard)
	s.audit = service.NewAuditService(repos.audit, s.storage)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:          controller.NewAuthController(s.auth),
		user:          controller.NewUserController(s.user),
		course:        controller.NewCourseController(s.course),
		difficulty:    controller.NewDifficultyController(s.difficulty),
		mission:       controller.NewMissionController(s.mission),
		reinforcement: controller.NewReinforcementController(s.reinforcement),
		audit:         controller.NewAuditController(s.audit),
		health:        controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID(), middleware.AccessLog())
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	a.limiter = security.NewLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute)
	router.Use(a.limiter.Middleware())

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// New wires an application on already opened connections. rdb may be nil.
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *App {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	util.InitValidator()
	monitoring.Init()

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db, rdb)
	services := app.initServices(repos, cfg, db)
	controllers := app.initControllers(services, db)

	router := gin.New()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.RegisterConfigCallback(configwatcher.ApplyLogLevel)

	return app
}

// NewApp opens the database, the optional Redis connection and the tracer,
// then wires the application. Failures here are fatal.
func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)
	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database, cfg.Server.Mode == "debug")
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb, err = database.InitRedis(&cfg.Redis)
		if err != nil {
			logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
		}
	}

	app := New(cfg, db, rdb)

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(serviceName, cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.shutdownTracer = shutdown
	}

	return app
}

func (a *App) startBackgroundTasks(ctx context.Context) {
	go a.limiter.Run(ctx)

	if a.Config.File == "" {
		return
	}
	go func() {
		err := configwatcher.Watch(ctx, a.Config.File, time.Second, func(cfg *config.Config) {
			for _, cb := range a.configCallbacks {
				cb(cfg)
			}
		})
		if err != nil {
			logger.Log.Error("Config watcher stopped", zap.Error(err))
		}
	}()
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	a.startBackgroundTasks(bgCtx)

	go func() {
		logger.Log.Info("Server running", zap.String("port", a.Config.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Listen failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")
	stopBackground()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	if a.shutdownTracer != nil {
		if err := a.shutdownTracer(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}

	logger.Log.Info("Server exiting")
	_ = logger.Log.Sync()
}
