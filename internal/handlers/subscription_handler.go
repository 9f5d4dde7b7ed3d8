package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"toursite/internal/models"
	"toursite/internal/services"
)

type SubscriptionHandler struct {
	Service *services.SubscriptionService
}

func NewSubscriptionHandler(s *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{Service: s}
}

type requestOTPRequest struct {
	Email string `json:"email" binding:"required"`
}

type verifyOTPRequest struct {
	Email string `json:"email" binding:"required"`
	OTP   string `json:"otp" binding:"required,len=6,numeric"`
}

// @Summary      Request subscription code
// @Description  Sends a one-time code to the email; repeat calls resend a fresh code
// @Tags         Subscribers
// @Accept       json
// @Produce      json
// @Param        request  body      requestOTPRequest  true  "Email to subscribe"
// @Success      200      {object}  map[string]interface{}
// @Failure      409      {object}  map[string]string
// @Failure      422      {object}  map[string]interface{}
// @Router       /subscribers/otp [post]
func (h *SubscriptionHandler) RequestOTP(c *gin.Context) {
	var req requestOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": gin.H{"email": "email is required"}})
		return
	}

	p, err := h.Service.RequestOTP(req.Email)
	if err != nil {
		switch err {
		case services.ErrInvalidEmail:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": gin.H{"email": "enter a valid email address"}})
		case services.ErrAlreadySubscribed:
			c.JSON(http.StatusConflict, gin.H{"error": "this email is already subscribed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to send verification code"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "verification code sent",
		"expires_at": p.ExpiresAt,
		"expires_in": int(models.OTPTTL.Seconds()),
	})
}

// @Summary      Confirm subscription
// @Description  Verifies the one-time code and creates the subscriber
// @Tags         Subscribers
// @Accept       json
// @Produce      json
// @Param        request  body      verifyOTPRequest  true  "Email and code"
// @Success      200      {object}  map[string]interface{}
// @Failure      400      {object}  map[string]string
// @Failure      404      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Failure      422      {object}  map[string]interface{}
// @Router       /subscribers/verify [post]
func (h *SubscriptionHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": gin.H{"otp": "a 6-digit code and email are required"}})
		return
	}

	sub, err := h.Service.Verify(req.Email, req.OTP)
	if err != nil {
		switch err {
		case services.ErrInvalidEmail:
			c.JSON(http.StatusUnprocessableEntity, gin.H{"errors": gin.H{"email": "enter a valid email address"}})
		case services.ErrNoPendingRequest:
			c.JSON(http.StatusNotFound, gin.H{"error": "no pending subscription for this email, request a new code"})
		case services.ErrCodeExpired:
			c.JSON(http.StatusBadRequest, gin.H{"error": "code expired, please request a new one"})
		case services.ErrCodeInvalid:
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid code"})
		case services.ErrTooManyAttempts:
			c.JSON(http.StatusBadRequest, gin.H{"error": "too many attempts, request a new code"})
		case services.ErrAlreadySubscribed:
			c.JSON(http.StatusConflict, gin.H{"error": "this email is already subscribed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "confirmation failed"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "subscription confirmed",
		"subscriber": sub,
	})
}
