package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/brigada-api/internal/config"
	"github.com/yourusername/brigada-api/internal/handler"
	"github.com/yourusername/brigada-api/internal/middleware"
	pgRepo "github.com/yourusername/brigada-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/brigada-api/internal/repository/redis"
	"github.com/yourusername/brigada-api/internal/service"
	"github.com/yourusername/brigada-api/pkg/auth"
	"github.com/yourusername/brigada-api/pkg/database"
	"github.com/yourusername/brigada-api/pkg/storage"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis с использованием унифицированной конфигурации
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	responseRepo := pgRepo.NewResponseRepo(db)
	surveyRepo := pgRepo.NewSurveyRepo(db)
	documentRepo := pgRepo.NewDocumentRepo(db)
	assignmentRepo := pgRepo.NewAssignmentRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// JWT проверяется общим секретом; выпуск токенов - внешний auth-сервис
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Подписчик pre-signed URL для прямой загрузки в объектное хранилище
	presigner, err := storage.NewHMACPresigner(cfg.Storage.BaseURL, cfg.Storage.SigningKey)
	if err != nil {
		log.Printf("Failed to initialize Presigner: %v", err)
		os.Exit(1)
	}

	// Почтовые уведомления о документах с низкой OCR уверенностью
	var emailService service.EmailService = &service.NoopEmailService{}
	if cfg.Email.Enabled {
		resendService, err := service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From, cfg.Email.ReviewAddress)
		if err != nil {
			log.Printf("Failed to initialize ResendEmailService: %v", err)
			os.Exit(1)
		}
		emailService = resendService
		log.Println("Email уведомления включены (Resend)")
	}

	// Инициализируем сервисы
	validator := service.NewAnswerValidator()
	responseService := service.NewResponseService(responseRepo, surveyRepo, cacheRepo, validator)
	documentService := service.NewDocumentService(
		documentRepo,
		responseRepo,
		presigner,
		emailService,
		time.Duration(cfg.Storage.UploadTTLMinutes)*time.Minute,
	)
	surveyService := service.NewSurveyService(surveyRepo, assignmentRepo, cacheRepo)
	syncService := service.NewSyncService(responseRepo, documentRepo, assignmentRepo, surveyRepo, cacheRepo)

	// Инициализируем обработчики
	mobileHandler := handler.NewMobileHandler(responseService, documentService, surveyService, syncService)
	adminHandler := handler.NewAdminHandler(responseService, surveyService)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	// В production (GIN_MODE=release): не доверяем прокси (защита от IP spoofing)
	// В development: доверяем localhost
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		// Мобильные маршруты синхронизации
		mobile := api.Group("/mobile")
		mobile.Use(authMiddleware.RequireAuth())
		mobile.Use(rateLimiter.LimitByIP(middleware.DefaultMobileRateLimitConfig()))
		{
			mobile.GET("/sync-status", mobileHandler.GetSyncStatus)
			mobile.GET("/responses/me", mobileHandler.GetMyResponses)

			// Батчевая синхронизация под отдельным, более строгим лимитом
			mobile.POST("/responses/batch",
				rateLimiter.Limit(middleware.SyncRateLimitConfig()),
				mobileHandler.SubmitBatch)

			mobile.POST("/documents/upload", mobileHandler.RequestDocumentUpload)
			mobile.POST("/documents/confirm", mobileHandler.ConfirmDocumentUpload)

			surveys := mobile.Group("/surveys")
			{
				surveys.GET("", mobileHandler.GetAssignedSurveys)

				surveyWithID := surveys.Group("/:id")
				surveyWithID.Use(middleware.ExtractUintParam("id", "surveyID")) // Применяем middleware
				{
					surveyWithID.GET("/latest", mobileHandler.GetLatestSurveyVersion)
				}
			}
		}

		// Админские маршруты чтения собранных данных
		admin := api.Group("/admin")
		admin.Use(authMiddleware.RequireAuth(), authMiddleware.AdminOnly())
		{
			adminSurvey := admin.Group("/responses/survey/:id")
			adminSurvey.Use(middleware.ExtractUintParam("id", "surveyID"))
			{
				adminSurvey.GET("", adminHandler.GetSurveyResponses)
				adminSurvey.GET("/summary", adminHandler.GetSurveySummary)
				adminSurvey.GET("/export", adminHandler.ExportSurveyResponses)
			}
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// Ожидаем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
