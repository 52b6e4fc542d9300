package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jcthewizard/Goalshare-sub000/internal/config"
	"github.com/jcthewizard/Goalshare-sub000/internal/controller"
	"github.com/jcthewizard/Goalshare-sub000/internal/repository"
	"github.com/jcthewizard/Goalshare-sub000/internal/service"
	"github.com/jcthewizard/Goalshare-sub000/pkg/database"
	"github.com/jcthewizard/Goalshare-sub000/pkg/logger"
	"github.com/jcthewizard/Goalshare-sub000/pkg/monitoring"
	"github.com/jcthewizard/Goalshare-sub000/pkg/security"
	"github.com/jcthewizard/Goalshare-sub000/pkg/tracing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type App struct {
	Config        *config.Config
	Router        *gin.Engine
	services      *services
	shutdownHooks []func(context.Context)
}

type services struct {
	storage    *service.StorageService
	media      *service.MediaService
	goal       *service.GoalService
	social     *service.SocialService
	completion *service.CompletionService
}

type controllers struct {
	goal   *controller.GoalController
	social *controller.SocialController
	health *controller.HealthController
}

// initBackend picks the remote goal store variant. Both sit behind the same
// interface; everything above this switch is variant-agnostic.
func initBackend(cfg *config.Config) (repository.GoalBackend, error) {
	switch cfg.Backend.Type {
	case "rest":
		return repository.NewRESTBackend(cfg.Backend.BaseURL, cfg.Backend.APIToken), nil
	default:
		db, err := database.InitMongo(&cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return repository.NewMongoBackend(db, cfg.Backend.Collection), nil
	}
}

func initKV(cfg *config.Config) (repository.KVStore, error) {
	if cfg.Social.Storage == "redis" {
		rdb, err := database.InitRedis(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisKV(rdb), nil
	}
	return repository.NewFileKV(cfg.Social.Path)
}

func (a *App) initServices(cfg *config.Config, backend repository.GoalBackend, kv repository.KVStore) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.media = service.NewMediaService(s.storage, &cfg.Storage, logger.Log)
	s.goal = service.NewGoalService(backend, logger.Log)

	directory := repository.NewRESTUserDirectory(cfg.Social.DirectoryURL, cfg.Backend.APIToken)
	s.social = service.NewSocialService(kv, directory, logger.Log)

	delay := time.Duration(cfg.Completion.FanoutDelayMS) * time.Millisecond
	s.completion = service.NewCompletionService(s.goal, s.social, delay, logger.Log)

	return s
}

func (a *App) initControllers(s *services, kv repository.KVStore) *controllers {
	return &controllers{
		goal:   controller.NewGoalController(s.goal, s.completion, s.media),
		social: controller.NewSocialController(s.social),
		health: controller.NewHealthController(kv),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 6000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	backend, err := initBackend(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize goal backend", zap.Error(err))
	}

	kv, err := initKV(cfg)
	if err != nil {
		logger.Log.Fatal("Failed to initialize social storage", zap.Error(err))
	}

	app := &App{Config: cfg}

	services := app.initServices(cfg, backend, kv)
	app.services = services
	controllers := app.initControllers(services, kv)

	if err := services.social.Load(context.Background()); err != nil {
		logger.Log.Error("Failed to hydrate social store", zap.Error(err))
	}

	monitoring.Init()

	gin.SetMode(ginMode(cfg.Server.Mode))
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		tp, err := tracing.InitTracer("goalshare", cfg.Tracing.CollectorEndpoint)
		if err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
		app.onShutdown(func(ctx context.Context) {
			if err := tp.Shutdown(ctx); err != nil {
				logger.Log.Error("Failed to shutdown tracer provider", zap.Error(err))
			}
		})
	}

	app.registerRoutes(router, controllers, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func ginMode(mode string) string {
	switch mode {
	case "release":
		return gin.ReleaseMode
	case "test":
		return gin.TestMode
	default:
		return gin.DebugMode
	}
}

func (a *App) onShutdown(hook func(context.Context)) {
	a.shutdownHooks = append(a.shutdownHooks, hook)
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
		log.Fatal("Server forced to shutdown:", err)
	}

	// Drain in-flight remote writes and fan-outs so optimistic state lands.
	a.services.completion.Flush()
	a.services.goal.Flush()

	for _, hook := range a.shutdownHooks {
		hook(ctx)
	}

	logger.Log.Sync()
	log.Println("Server exiting")
}
