package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cwportal/internal/services"
)

type SessionHandler struct {
	Sessions *services.SessionService
}

func NewSessionHandler(sessions *services.SessionService) *SessionHandler {
	return &SessionHandler{Sessions: sessions}
}

// @Summary      Log out
// @Description  Deletes the session cookie
// @Tags         Session
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	clearCookie(c, services.SessionCookieName)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// @Summary      Current session
// @Description  Returns the authenticated phone number
// @Tags         Session
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]interface{}
// @Router       /session [get]
func (h *SessionHandler) Whoami(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "phone": c.GetString("phone")})
}
