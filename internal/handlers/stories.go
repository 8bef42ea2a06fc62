package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/timepass/backend/internal/errors"
	"github.com/timepass/backend/internal/metrics"
	"github.com/timepass/backend/internal/models"
)

// CreateStoryRequest carries new-story fields; the media blob is
// uploaded separately and referenced by URL
type CreateStoryRequest struct {
	MediaURL  string `json:"media_url" binding:"required"`
	MediaType string `json:"media_type"`
	Caption   string `json:"caption"`
}

// CreateStory publishes a story that expires in 24 hours
func (h *Handlers) CreateStory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreateStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierrors.BadRequest("media_url is required"))
		return
	}
	if req.MediaType == "" {
		req.MediaType = models.MediaTypeImage
	}

	story, err := h.stories.Create(c.Request.Context(), user, req.MediaURL, req.MediaType, req.Caption, nil)
	if err != nil {
		respondError(c, err)
		return
	}

	metrics.Get().StoriesCreatedTotal.Inc()
	c.JSON(http.StatusCreated, story)
}

// GetStoriesBar returns the stories bar: the caller first, then
// followed authors with active stories
func (h *Handlers) GetStoriesBar(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	bar, err := h.stories.ActiveForViewer(c.Request.Context(), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": bar})
}

// GetUserStories returns one user's active stories in playback order
func (h *Handlers) GetUserStories(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	userStories, err := h.stories.ForUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stories": userStories})
}

// ViewStory records the caller's view. Repeat views and views of your
// own story are silently ignored.
func (h *Handlers) ViewStory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.stories.RecordView(c.Request.Context(), c.Param("id"), user); err != nil {
		respondError(c, err)
		return
	}

	metrics.Get().StoryViewsTotal.Inc()
	c.JSON(http.StatusOK, gin.H{"viewed": true})
}

// LikeStory records the caller's like; a repeat like is a conflict
func (h *Handlers) LikeStory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.stories.RecordLike(c.Request.Context(), c.Param("id"), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": true})
}

// CommentStoryRequest carries the comment text
type CommentStoryRequest struct {
	Text string `json:"text" binding:"required,min=1,max=500"`
}

// CommentStory appends a comment to a story
func (h *Handlers) CommentStory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CommentStoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierrors.BadRequest("comment text is required"))
		return
	}

	comment, err := h.stories.AddComment(c.Request.Context(), c.Param("id"), user, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// GetStoryComments lists a story's comments oldest-first
func (h *Handlers) GetStoryComments(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	comments, err := h.stories.Comments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// GetStoryViewers lists who saw a story; owner only
func (h *Handlers) GetStoryViewers(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	viewers, err := h.stories.Viewers(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"viewers": viewers})
}

// DeleteStory removes the caller's own story along with its views,
// likes, comments, notifications and (when we host it) the media blob
func (h *Handlers) DeleteStory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.stories.Delete(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		metrics.Get().StoryDeletesTotal.WithLabelValues("error").Inc()
		respondError(c, err)
		return
	}

	metrics.Get().StoryDeletesTotal.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
