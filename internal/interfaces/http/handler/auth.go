package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/swapmarket/backend/internal/application/identity"
)

// AuthUseCases is the identity surface the auth handler drives
type AuthUseCases interface {
	Register(ctx context.Context, input identity.RegisterInput) (*identity.UserInfo, error)
	Login(ctx context.Context, input identity.LoginInput) (*identity.LoginResult, error)
}

// RegisterRequest is the body of POST /auth/register
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=80"`
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

// LoginRequest is the body of POST /auth/login
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthHandler handles registration and login
type AuthHandler struct {
	BaseHandler
	authService AuthUseCases
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService AuthUseCases) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates an account
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !h.BindJSON(c, &req) {
		return
	}

	user, err := h.authService.Register(c.Request.Context(), identity.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, user)
}

// Login exchanges credentials for an access token
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identity.LoginInput{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
