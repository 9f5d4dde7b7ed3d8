package app

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"toursite/internal/config"
	"toursite/internal/handlers"
	"toursite/internal/middleware"
	"toursite/internal/pdf"
	"toursite/internal/repositories"
	"toursite/internal/routes"
	"toursite/internal/services"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	_ "toursite/docs"
)

const sweepInterval = time.Minute

func Run() {
	cfg := config.LoadConfig()

	// === DB ===
	db, err := sql.Open("postgres", cfg.Database.DSN)
	if err != nil {
		log.Fatal("Ошибка подключения к БД: ", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Ошибка закрытия БД: %v", err)
		}
	}()
	if err := repositories.EnsureSchema(db); err != nil {
		log.Fatal("Ошибка инициализации схемы: ", err)
	}

	if cfg.Admin.JWTSecret != "" {
		middleware.JWTKey = []byte(cfg.Admin.JWTSecret)
	}

	// === Repos ===
	pendingRepo := repositories.NewPendingSubscriptionRepository(db)
	subscriberRepo := repositories.NewSubscriberRepository(db)

	// === Services ===
	emailService := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
	)

	// Telegram-уведомления опциональны: без токена просто не подключаем
	var notifier services.SubscriberNotifier
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != 0 {
		tg, err := services.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
		if err != nil {
			log.Printf("Telegram отключен: %v", err)
		} else {
			notifier = tg
		}
	}

	subscriptionService := services.NewSubscriptionService(pendingRepo, subscriberRepo, emailService, notifier)
	subscriberService := services.NewSubscriberService(subscriberRepo)

	// === Handlers ===
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionService)
	adminHandler := handlers.NewSubscriberAdminHandler(subscriberService, pdf.NewSubscriberExporter())
	authHandler := handlers.NewAuthHandler(cfg.Admin.Email, cfg.Admin.PasswordHash)

	// Фоновая уборка протухших кодов. Гигиена, не корректность:
	// Verify всегда проверяет окно сам.
	go func() {
		for range time.Tick(sweepInterval) {
			n, err := subscriptionService.SweepExpired()
			if err != nil {
				log.Printf("[sweep] failed: %v", err)
				continue
			}
			if n > 0 {
				log.Printf("[sweep] removed %d expired pending subscriptions", n)
			}
		}
	}()

	// === Gin ===
	router := gin.Default()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limiter := middleware.NewRateLimiter(1, 5)

	routes.SetupRoutes(
		router,
		subscriptionHandler,
		adminHandler,
		authHandler,
		limiter,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Ошибка запуска сервера: ", err)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
