package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"cwportal/internal/models"
	"cwportal/internal/services"
)

type OTPHandler struct {
	OTP      *services.OTPService
	Sessions *services.SessionService
}

func NewOTPHandler(otp *services.OTPService, sessions *services.SessionService) *OTPHandler {
	return &OTPHandler{OTP: otp, Sessions: sessions}
}

// @Summary      Request an OTP
// @Description  Generates a one-time code, stores the hashed challenge in a cookie and dispatches the code by SMS
// @Tags         OTP
// @Accept       json
// @Produce      json
// @Param        request  body      models.OtpStartRequest  true  "Phone number"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Router       /otp/start [post]
func (h *OTPHandler) Start(c *gin.Context) {
	var req models.OtpStartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid request"})
		return
	}

	challenge, result, err := h.OTP.Issue(c.Request.Context(), req.Phone)
	if err != nil {
		if errors.Is(err, services.ErrInvalidPhone) {
			c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid phone"})
			return
		}
		log.Printf("[otp][start] issue failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "Failed to request OTP"})
		return
	}

	if !result.OK {
		// The code never reached the phone; don't leave a challenge behind.
		clearCookie(c, OtpCookieName)
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": result.Message, "code": result.Code})
		return
	}

	setChallengeCookie(c, challenge, int(challenge.Remaining(time.Now()).Seconds()))
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// @Summary      Verify an OTP
// @Description  Checks the submitted code against the outstanding challenge and establishes a session on success
// @Tags         OTP
// @Accept       json
// @Produce      json
// @Param        request  body      models.OtpVerifyRequest  true  "Phone number and code"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]interface{}
// @Failure      429      {object}  map[string]interface{}
// @Router       /otp/verify [post]
func (h *OTPHandler) Verify(c *gin.Context) {
	var req models.OtpVerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid request"})
		return
	}

	challenge := readChallenge(c)
	switch err := h.OTP.Verify(challenge, req.Phone, req.OTP); {
	case err == nil:
		// fall through to session issuance
	case errors.Is(err, services.ErrChallengeNotFound):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "OTP not requested"})
		return
	case errors.Is(err, services.ErrPhoneMismatch):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Phone mismatch"})
		return
	case errors.Is(err, services.ErrCodeExpired):
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "OTP expired"})
		return
	case errors.Is(err, services.ErrTooManyAttempts):
		// Persist the exhausted counter so the lock survives the next read.
		setChallengeCookie(c, *challenge, int(challenge.Remaining(time.Now()).Seconds()))
		c.JSON(http.StatusTooManyRequests, gin.H{"ok": false, "error": "Too many attempts"})
		return
	case errors.Is(err, services.ErrCodeInvalid):
		// Re-persist with the incremented counter; the TTL keeps running,
		// it is not reset.
		setChallengeCookie(c, *challenge, int(challenge.Remaining(time.Now()).Seconds()))
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid OTP"})
		return
	default:
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "Invalid request"})
		return
	}

	// Consume the challenge and establish the session.
	clearCookie(c, OtpCookieName)
	token := h.Sessions.Issue(challenge.Number)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(services.SessionCookieName, token, int(services.SessionTTL.Seconds()), "/", "", secureCookies(), true)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
