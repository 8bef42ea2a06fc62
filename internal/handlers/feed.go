package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/timepass/backend/internal/errors"
	"github.com/timepass/backend/internal/models"
)

// CreatePostRequest carries new-post fields; media is uploaded first
// and referenced by URL
type CreatePostRequest struct {
	MediaURL  string `json:"media_url" binding:"required"`
	MediaType string `json:"media_type"`
	Caption   string `json:"caption"`
	Location  string `json:"location"`
}

// CreatePost publishes a post into its feed partition
func (h *Handlers) CreatePost(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierrors.BadRequest("media_url is required"))
		return
	}
	if req.MediaType != models.MediaTypeVideo {
		req.MediaType = models.MediaTypeImage
	}

	post, err := h.feed.CreatePost(c.Request.Context(), user, req.MediaURL, req.MediaType, req.Caption, req.Location)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, post)
}

// GetHomeFeed returns non-video posts newest-first
func (h *Handlers) GetHomeFeed(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	limit, offset := pagination(c)
	posts, err := h.feed.HomeFeed(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetReels returns video posts newest-first
func (h *Handlers) GetReels(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	limit, offset := pagination(c)
	posts, err := h.feed.ReelsFeed(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// GetUserPosts returns a user's posts for their profile grid
func (h *Handlers) GetUserPosts(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	posts, err := h.feed.PostsForUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// LikePost records the caller's like; liking twice is a conflict
func (h *Handlers) LikePost(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.feed.Like(c.Request.Context(), c.Param("id"), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": true})
}

// UnlikePost removes the caller's like
func (h *Handlers) UnlikePost(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.feed.Unlike(c.Request.Context(), c.Param("id"), user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": false})
}

// CommentPostRequest carries the comment text
type CommentPostRequest struct {
	Text string `json:"text" binding:"required,min=1,max=500"`
}

// CommentPost appends a comment to a post
func (h *Handlers) CommentPost(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req CommentPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierrors.BadRequest("comment text is required"))
		return
	}

	comment, err := h.feed.AddComment(c.Request.Context(), c.Param("id"), user, req.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}

// GetPostComments lists a post's comments oldest-first
func (h *Handlers) GetPostComments(c *gin.Context) {
	if _, ok := currentUser(c); !ok {
		return
	}

	comments, err := h.feed.Comments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// SharePostToStory republishes a post as a 24h story for the caller
func (h *Handlers) SharePostToStory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	story, err := h.feed.ShareToStory(c.Request.Context(), c.Param("id"), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, story)
}
