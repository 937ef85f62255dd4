package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cwportal/internal/handlers"
	"cwportal/internal/middleware"
	"cwportal/internal/services"
)

func SetupRoutes(
	r *gin.Engine,
	sessions *services.SessionService,
	otpHandler *handlers.OTPHandler,
	sessionHandler *handlers.SessionHandler,
	smsHandler *handlers.SMSHandler,
	adminSecret string,
) *gin.Engine {

	// Access gate for browser areas; non-protected paths pass straight through.
	r.Use(middleware.SessionGate(sessions))

	// ---- public
	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	otp := r.Group("/otp")
	{
		otp.POST("/start", otpHandler.Start)
		otp.POST("/verify", otpHandler.Verify)
	}
	r.POST("/logout", sessionHandler.Logout)

	// ---- authenticated API
	r.GET("/session", middleware.RequireSession(sessions), sessionHandler.Whoami)

	// ---- gated browser area (the portal frontend renders it; we only
	// answer with the identity behind the gate)
	r.GET("/dashboard", sessionHandler.Whoami)

	// ---- diagnostics (operator bearer token when configured)
	smsGroup := r.Group("/sms", middleware.AdminAuth(adminSecret))
	{
		smsGroup.POST("/send", smsHandler.SendSMS)
	}

	return r
}
