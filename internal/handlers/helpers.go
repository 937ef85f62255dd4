package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"cwportal/internal/models"
)

// OtpCookieName holds the outstanding challenge between /otp/start and
// /otp/verify. A new start overwrites any earlier challenge.
const OtpCookieName = "otp_session"

// secureCookies reports whether cookies should carry the Secure flag. Bound
// to gin's release mode the way the portal used to bind it to production
// builds.
func secureCookies() bool {
	return gin.Mode() == gin.ReleaseMode
}

func setChallengeCookie(c *gin.Context, challenge models.OtpChallenge, maxAge int) {
	payload, _ := json.Marshal(challenge)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(OtpCookieName, string(payload), maxAge, "/", "", secureCookies(), true)
}

// readChallenge decodes the challenge cookie; nil means no usable challenge
// (absent, empty, or undecodable).
func readChallenge(c *gin.Context) *models.OtpChallenge {
	raw, err := c.Cookie(OtpCookieName)
	if err != nil || raw == "" {
		return nil
	}
	var challenge models.OtpChallenge
	if err := json.Unmarshal([]byte(raw), &challenge); err != nil {
		return nil
	}
	return &challenge
}

func clearCookie(c *gin.Context, name string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(name, "", -1, "/", "", secureCookies(), true)
}
