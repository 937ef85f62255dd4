package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cwportal/internal/models"
	"cwportal/internal/sms"
)

type SMSHandler struct {
	Client sms.Sender
}

func NewSMSHandler(client sms.Sender) *SMSHandler {
	return &SMSHandler{Client: client}
}

// @Summary      Send a raw SMS
// @Description  Diagnostic passthrough to the SMS provider (operator token required when configured)
// @Tags         SMS
// @Accept       json
// @Produce      json
// @Param        request  body      models.SMSSendRequest  true  "Number and message"
// @Success      200      {object}  models.DispatchResult
// @Failure      400      {object}  models.DispatchResult
// @Security     BearerAuth
// @Router       /sms/send [post]
func (h *SMSHandler) SendSMS(c *gin.Context) {
	var req models.SMSSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.DispatchResult{
			OK:      false,
			Code:    sms.CodeUnknown,
			Message: "number and message are required",
		})
		return
	}

	result := h.Client.Send(c.Request.Context(), req.Number, req.Message)
	status := http.StatusOK
	if !result.OK {
		status = http.StatusBadRequest
	}
	c.JSON(status, result)
}
