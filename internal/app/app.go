package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"techtrain_backend/internal/catalog"
	"techtrain_backend/internal/config"
	"techtrain_backend/internal/controller"
	"techtrain_backend/internal/modules"
	"techtrain_backend/internal/repository"
	"techtrain_backend/internal/service"
	"techtrain_backend/pkg/database"
	"techtrain_backend/pkg/logger"
	"techtrain_backend/pkg/monitoring"
	"techtrain_backend/pkg/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Registry *catalog.Registry
	Loader   *catalog.Loader
	services *services
}

type repositories struct {
	user      *repository.UserRepository
	role      *repository.RoleRepository
	progress  *repository.ProgressRepository
	milestone *repository.MilestoneRepository
	session   *repository.SessionRepository
}

type services struct {
	auth          *service.AuthService
	access        *service.AccessService
	module        *service.ModuleService
	prerequisites *service.PrerequisiteService
	progress      *service.ProgressService
	milestone     *service.MilestoneService
	session       *service.SessionService
}

type controllers struct {
	auth     *controller.AuthController
	module   *controller.ModuleController
	progress *controller.ProgressController
	session  *controller.SessionController
	role     *controller.RoleController
	health   *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:      repository.NewUserRepository(db),
		role:      repository.NewRoleRepository(db),
		progress:  repository.NewProgressRepository(db),
		milestone: repository.NewMilestoneRepository(db),
		session:   repository.NewSessionRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB) *services {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.access = service.NewAccessService(repos.role, repos.user, logger.Log)
	s.prerequisites = service.NewPrerequisiteService(catalog.NewResolver(a.Loader), repos.progress)
	s.module = service.NewModuleService(a.Loader, s.prerequisites)
	s.milestone = service.NewMilestoneService(repos.milestone, repos.progress, logger.Log)
	s.progress = service.NewProgressService(
		db,
		repos.progress,
		a.Loader,
		s.prerequisites,
		s.milestone,
		&service.LoggingSink{Log: logger.Log},
		logger.Log,
	)
	s.session = service.NewSessionService(repos.session, s.progress, logger.Log)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		module:   controller.NewModuleController(s.module),
		progress: controller.NewProgressController(s.progress),
		session:  controller.NewSessionController(s.session),
		role:     controller.NewRoleController(s.access),
		health:   controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests,
		time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))
	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg.Server.Mode)

	db, err := database.InitDB(cfg.Database.Path)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	app := &App{
		Config:   cfg,
		DB:       db,
		Registry: catalog.NewRegistry(),
	}
	app.Loader = catalog.NewLoader(app.Registry, cfg.Modules.Dir, logger.Log)

	if err := modules.Register(app.Registry, app.Loader); err != nil {
		logger.Log.Fatal("Failed to register built-in modules", zap.Error(err))
	}
	loadable := app.Loader.Discover()
	logger.Log.Info("module discovery complete",
		zap.Int("loadable", len(loadable)),
		zap.Int("known", len(app.Loader.Descriptors())))

	repos := app.initRepositories(db)
	svcs := app.initServices(repos, cfg, db)
	app.services = svcs

	if err := svcs.access.SeedBuiltInRoles(); err != nil {
		logger.Log.Fatal("Failed to seed built-in roles", zap.Error(err))
	}

	monitoring.Init()

	if cfg.Server.Mode != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, app.initControllers(svcs, db), cfg)

	return app
}

// ReloadConfig swaps the live configuration in place. Per-request readers
// such as the JWT middleware see the new values on their next request.
func (a *App) ReloadConfig(cfg *config.Config) {
	*a.Config = *cfg
	logger.Log.Info("configuration reloaded")
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}
