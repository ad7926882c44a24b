package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"edu_content_backend/internal/config"
	"edu_content_backend/internal/controller"
	"edu_content_backend/internal/repository"
	"edu_content_backend/internal/service"
	"edu_content_backend/pkg/database"
	"edu_content_backend/pkg/logger"
	"edu_content_backend/pkg/monitoring"
	"edu_content_backend/pkg/security"
	"edu_content_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	tracerProvider  *sdktrace.TracerProvider
	configCallbacks []func(*config.Config)
}

type repositories struct {
	version  *repository.VersionRepository
	branch   *repository.BranchRepository
	diff     *repository.DiffRepository
	approval *repository.ApprovalRepository
	lock     *repository.LockRepository
	merge    *repository.MergeRepository
	user     *repository.UserRepository
}

type services struct {
	auth     *service.AuthService
	version  *service.VersionService
	review   *service.ReviewService
	merge    *service.MergeService
	lock     *service.LockService
	history  *service.HistoryService
	snapshot *service.SnapshotService
}

type controllers struct {
	auth    *controller.AuthController
	version *controller.VersionController
	branch  *controller.BranchController
	review  *controller.ReviewController
	merge   *controller.MergeController
	lock    *controller.LockController
	history *controller.HistoryController
	health  *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ApplyConfig 配置热更新入口
func (a *App) ApplyConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		version:  repository.NewVersionRepository(db),
		branch:   repository.NewBranchRepository(db),
		diff:     repository.NewDiffRepository(db),
		approval: repository.NewApprovalRepository(db),
		lock:     repository.NewLockRepository(db),
		merge:    repository.NewMergeRepository(db),
		user:     repository.NewUserRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) (*services, error) {
	s := &services{}

	s.auth = service.NewAuthService(repos.user, cfg)
	s.version = service.NewVersionService(repos.version, repos.branch, repos.lock, rdb)
	s.review = service.NewReviewService(repos.version, repos.approval)
	s.merge = service.NewMergeService(repos.version, repos.branch, repos.merge, repos.diff, s.version)
	s.lock = service.NewLockService(repos.version, repos.lock)
	s.history = service.NewHistoryService(repos.version, repos.branch, repos.approval, rdb)

	snapshot, err := service.NewSnapshotService(cfg)
	if err != nil {
		return nil, err
	}
	s.snapshot = snapshot

	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		auth:    controller.NewAuthController(s.auth),
		version: controller.NewVersionController(s.version, s.snapshot),
		branch:  controller.NewBranchController(s.version, s.history),
		review:  controller.NewReviewController(s.review),
		merge:   controller.NewMergeController(s.merge),
		lock:    controller.NewLockController(s.lock),
		history: controller.NewHistoryController(s.history),
		health:  controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 100000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg.Server.Mode)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("Failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services, err := app.initServices(repos, cfg, rdb)
	if err != nil {
		logger.Log.Fatal("Failed to initialize services", zap.Error(err))
	}
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("content-versioning", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.tracerProvider = tp
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/exports", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	// 启动服务器
	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if a.tracerProvider != nil {
		if err := a.tracerProvider.Shutdown(ctx); err != nil {
			logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
		}
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
