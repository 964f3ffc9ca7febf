package handlers

import (
	"errors"
	"net/http"
	"strings"

	"pest_crm/internal/services"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request format")
		return
	}

	token, expiresIn, err := h.authService.Login(req.Password)
	switch {
	case errors.Is(err, services.ErrPasswordRequired):
		respondError(c, http.StatusBadRequest, "password is required")
	case errors.Is(err, services.ErrInvalidPassword):
		respondError(c, http.StatusUnauthorized, "invalid password")
	case err != nil:
		respondInternal(c, err)
	default:
		respondData(c, http.StatusOK, gin.H{
			"token":     token,
			"expiresIn": expiresIn,
		})
	}
}

// Verify sits behind the auth middleware: reaching it means the token is
// valid and live.
func (h *AuthHandler) Verify(c *gin.Context) {
	respondData(c, http.StatusOK, gin.H{
		"valid":  true,
		"userId": c.GetString("userId"),
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if err := h.authService.Logout(token); err != nil {
		respondInternal(c, err)
		return
	}
	respondMessage(c, "logged out")
}
