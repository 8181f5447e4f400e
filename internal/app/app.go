package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"skillverify_backend/internal/config"
	"skillverify_backend/internal/controller"
	"skillverify_backend/internal/repository"
	"skillverify_backend/internal/service"
	"skillverify_backend/pkg/logger"
	"skillverify_backend/pkg/monitoring"
	"skillverify_backend/pkg/security"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	services *services
}

type services struct {
	questionAI   *service.QuestionAIService
	verification *service.VerificationService
}

type controllers struct {
	verification *controller.VerificationController
	health       *controller.HealthController
}

func (a *App) initServices(repo *repository.TemplateRepository, cfg *config.Config) *services {
	s := &services{}

	s.questionAI = service.NewQuestionAIService(cfg.AI)
	s.verification = service.NewVerificationService(repo, s.questionAI)

	return s
}

func (a *App) initControllers(s *services, repo *repository.TemplateRepository) *controllers {
	return &controllers{
		verification: controller.NewVerificationController(s.verification),
		health:       controller.NewHealthController(repo),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	windowMinutes := cfg.RateLimit.WindowMinutes
	if windowMinutes <= 0 {
		windowMinutes = 1
	}
	router.Use(security.RateLimiter(maxRequests, time.Duration(windowMinutes)*time.Minute))

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	// 题库在进程启动时构建一次，此后只读
	repo := repository.NewTemplateRepository()

	app := &App{
		Config: cfg,
	}

	services := app.initServices(repo, cfg)
	app.services = services
	controllers := app.initControllers(services, repo)

	// 监控初始化
	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)
	app.registerRoutes(router, controllers)

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
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
