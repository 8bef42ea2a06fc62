package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timepass/backend/internal/auth"
	apierrors "github.com/timepass/backend/internal/errors"
)

// Register creates a new account and returns a session token
func (h *Handlers) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierrors.BadRequest("invalid registration payload"))
		return
	}

	resp, err := h.auth.Register(req)
	switch {
	case errors.Is(err, auth.ErrUserExists):
		c.JSON(http.StatusConflict, apierrors.AlreadyExists("account"))
	case errors.Is(err, auth.ErrUsernameExists):
		c.JSON(http.StatusConflict, apierrors.AlreadyExists("username"))
	case err != nil:
		respondError(c, err)
	default:
		c.JSON(http.StatusCreated, resp)
	}
}

// Login authenticates an existing account
func (h *Handlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierrors.BadRequest("invalid login payload"))
		return
	}

	resp, err := h.auth.Login(req)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		c.JSON(http.StatusUnauthorized, apierrors.Unauthorized("invalid email or password"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Me returns the authenticated user
func (h *Handlers) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, user)
}
