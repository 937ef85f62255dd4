package app

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "cwportal/docs"
	"cwportal/internal/config"
	"cwportal/internal/handlers"
	"cwportal/internal/routes"
	"cwportal/internal/services"
	"cwportal/internal/sms"
)

func Run() {
	cfg := config.LoadConfig()

	// === Operator alerts ===
	alerts := services.NewTelegramAlerter(cfg.Telegram.BotToken, cfg.Telegram.ChatID)

	// === SMS provider ===
	smsClient := sms.NewClient(cfg.SMS.BaseURL, cfg.SMS.APIKey, cfg.SMS.SenderID)
	if cfg.SMS.APIKey == "" {
		log.Printf("[app] SMS_API_KEY not set: OTP delivery will fail until configured")
		alerts.Alert("SMS API key is not configured; OTP delivery is down")
	}

	// === Services ===
	sessionService := services.NewSessionService(cfg.Session.Secret, alerts)
	otpService := services.NewOTPService(smsClient, cfg.Brand)

	// === Handlers ===
	otpHandler := handlers.NewOTPHandler(otpService, sessionService)
	sessionHandler := handlers.NewSessionHandler(sessionService)
	smsHandler := handlers.NewSMSHandler(smsClient)

	// === Gin ===
	router := gin.Default()
	router.Use(corsMiddleware())

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(
		router,
		sessionService,
		otpHandler,
		sessionHandler,
		smsHandler,
		cfg.Admin.Secret,
	)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("[app] listening on %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("server failed: ", err)
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
