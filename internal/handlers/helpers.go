package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timepass/backend/internal/chat"
	apierrors "github.com/timepass/backend/internal/errors"
	"github.com/timepass/backend/internal/feed"
	"github.com/timepass/backend/internal/middleware"
	"github.com/timepass/backend/internal/models"
	"github.com/timepass/backend/internal/stories"
)

// currentUser pulls the authenticated user or aborts with 401
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, apierrors.Unauthorized("user not authenticated"))
		return nil, false
	}
	return user, true
}

// respondError maps service errors onto API error responses
func respondError(c *gin.Context, err error) {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		c.JSON(apiErr.Status, apiErr)
		return
	}

	switch {
	case errors.Is(err, stories.ErrNotFound):
		c.JSON(http.StatusNotFound, apierrors.NotFound("story"))
	case errors.Is(err, stories.ErrNotOwner):
		c.JSON(http.StatusForbidden, apierrors.Forbidden("story belongs to another user"))
	case errors.Is(err, stories.ErrAlreadyLiked):
		c.JSON(http.StatusConflict, apierrors.AlreadyExists("like"))
	case errors.Is(err, feed.ErrPostNotFound):
		c.JSON(http.StatusNotFound, apierrors.NotFound("post"))
	case errors.Is(err, feed.ErrAlreadyLiked):
		c.JSON(http.StatusConflict, apierrors.AlreadyExists("like"))
	case errors.Is(err, feed.ErrNotLiked):
		c.JSON(http.StatusNotFound, apierrors.NotFound("like"))
	case errors.Is(err, chat.ErrConversationNotFound):
		c.JSON(http.StatusNotFound, apierrors.NotFound("conversation"))
	case errors.Is(err, chat.ErrNotParticipant):
		c.JSON(http.StatusForbidden, apierrors.Forbidden("not a conversation participant"))
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, apierrors.Timeout("operation"))
	default:
		c.JSON(http.StatusInternalServerError, apierrors.InternalError("something went wrong"))
	}
}

// pagination reads limit/offset query params with sane bounds
func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
