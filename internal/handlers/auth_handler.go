package handlers

import (
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"toursite/internal/middleware"
	"toursite/internal/models"
)

const accessTokenTTL = 15 * time.Minute

// AuthHandler — вход в админку. Единственная учётка задаётся в конфиге,
// пароль хранится bcrypt-хэшем.
type AuthHandler struct {
	AdminEmail   string
	PasswordHash string
}

func NewAuthHandler(adminEmail, passwordHash string) *AuthHandler {
	return &AuthHandler{AdminEmail: adminEmail, PasswordHash: passwordHash}
}

// @Summary      Admin login
// @Description  Authenticates the admin and returns an access token
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        login  body      models.LoginRequest  true  "Credentials"
// @Success      200    {object}  map[string]interface{}
// @Failure      400    {object}  map[string]string
// @Failure      401    {object}  map[string]string
// @Router       /admin/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if !strings.EqualFold(email, h.AdminEmail) {
		log.Printf("[auth][login] unknown email=%q", email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(h.PasswordHash), []byte(strings.TrimSpace(req.Password))); err != nil {
		log.Printf("[auth][login] bcrypt mismatch email=%q", email)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	claims := &middleware.Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(accessTokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(middleware.JWTKey)
	if err != nil {
		log.Printf("[auth][login] sign token failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate access token"})
		return
	}

	log.Printf("[auth][login] success email=%q exp_in=%s", email, accessTokenTTL)
	c.JSON(http.StatusOK, gin.H{
		"message":      "Login successful",
		"access_token": tokenString,
	})
}
