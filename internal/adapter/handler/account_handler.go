package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rl1809/artisan-market/internal/core/domain"
	"github.com/rl1809/artisan-market/internal/core/service"
)

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role" binding:"required"`
	FullName string `json:"full_name" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *HTTPHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, CodeInvalidRequest, "username, password, role, full_name and email are required")
		return
	}

	user, token, err := h.deps.Accounts.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Password: req.Password,
		Role:     domain.Role(req.Role),
		FullName: req.FullName,
		Email:    req.Email,
		Phone:    req.Phone,
	})
	if err != nil {
		h.abortWithServiceError(c, err, "Registration failed")
		return
	}

	c.JSON(http.StatusCreated, AuthResponse{
		Message:     "User registered successfully",
		User:        newUserResponse(user),
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (h *HTTPHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, CodeInvalidRequest, "username and password are required")
		return
	}

	user, token, err := h.deps.Accounts.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.abortWithServiceError(c, err, "Login failed")
		return
	}

	c.JSON(http.StatusOK, AuthResponse{
		Message:     "Login successful",
		User:        newUserResponse(user),
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (h *HTTPHandler) Me(c *gin.Context) {
	user, err := h.deps.Accounts.Me(c.Request.Context(), currentClaims(c).UserID)
	if err != nil {
		h.abortWithServiceError(c, err, "Failed to fetch user")
		return
	}
	c.JSON(http.StatusOK, newUserResponse(user))
}

func (h *HTTPHandler) ListUsers(c *gin.Context) {
	users, err := h.deps.Accounts.ListUsers(c.Request.Context())
	if err != nil {
		h.abortWithServiceError(c, err, "Failed to fetch users")
		return
	}

	resp := make([]UserResponse, len(users))
	for i, u := range users {
		resp[i] = newUserResponse(u)
	}
	c.JSON(http.StatusOK, gin.H{"users": resp, "count": len(resp)})
}
