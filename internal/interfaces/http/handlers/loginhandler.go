// Package handlers contains the gin HTTP handlers of the login broker.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kurologin/internal/application/login/usecases"
	"kurologin/internal/shared/errors"
	"kurologin/internal/shared/logger"
	"kurologin/internal/shared/utils"
)

// ServiceName identifies this service in health check responses.
const ServiceName = "kuro-login-broker"

type LoginHandler struct {
	sendSMSCodeUC   sendSMSCodeUseCase
	completeLoginUC completeLoginUseCase
	logger          logger.Interface
}

func NewLoginHandler(
	sendSMSCodeUC sendSMSCodeUseCase,
	completeLoginUC completeLoginUseCase,
	log logger.Interface,
) *LoginHandler {
	return &LoginHandler{
		sendSMSCodeUC:   sendSMSCodeUC,
		completeLoginUC: completeLoginUC,
		logger:          log,
	}
}

type SendSMSRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required,cnmobile"`
}

type LoginRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	SMSCode   string `json:"smsCode" binding:"required,smscode"`
}

// LoginData is the complete-login success payload.
type LoginData struct {
	Token      string `json:"token"`
	UserID     string `json:"userId"`
	RoleID     string `json:"roleId"`
	RoleName   string `json:"roleName"`
	ServerID   string `json:"serverId"`
	DeviceCode string `json:"deviceCode"`
	DistinctID string `json:"distinctId"`
}

// SendSMS handles POST /api/send_sms. It begins a login attempt and
// returns the session id the client must present when submitting the
// code.
func (h *LoginHandler) SendSMS(c *gin.Context) {
	var req SendSMSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for send sms", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid phone number format"))
		return
	}

	result, err := h.sendSMSCodeUC.Execute(c.Request.Context(), usecases.SendSMSCodeCommand{
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SessionCreatedResponse(c, result.SessionID, result.Message)
}

// Login handles POST /api/login. It exchanges the SMS code for the
// authenticated login payload and consumes the session.
func (h *LoginHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warnw("invalid request body for login", "error", err)
		utils.ErrorResponseWithError(c, errors.NewValidationError("invalid session or code format"))
		return
	}

	result, err := h.completeLoginUC.Execute(c.Request.Context(), usecases.CompleteLoginCommand{
		SessionID: req.SessionID,
		Code:      req.SMSCode,
	})
	if err != nil {
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "login successful", LoginData{
		Token:      result.Token,
		UserID:     result.UserID,
		RoleID:     result.RoleID,
		RoleName:   result.RoleName,
		ServerID:   result.ServerID,
		DeviceCode: result.DeviceCode,
		DistinctID: result.DistinctID,
	})
}

// HealthCheck handles GET /api/health.
func (h *LoginHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": ServiceName,
	})
}
