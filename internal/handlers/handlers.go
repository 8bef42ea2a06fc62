package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/timepass/backend/internal/auth"
	"github.com/timepass/backend/internal/chat"
	"github.com/timepass/backend/internal/database"
	"github.com/timepass/backend/internal/feed"
	"github.com/timepass/backend/internal/middleware"
	"github.com/timepass/backend/internal/notifications"
	"github.com/timepass/backend/internal/search"
	"github.com/timepass/backend/internal/stories"
	"github.com/timepass/backend/internal/storage"
)

// Handlers contains all HTTP handlers for the API
type Handlers struct {
	auth          *auth.Service
	stories       *stories.Service
	feed          *feed.Service
	search        *search.Service
	chat          *chat.Service
	notifications *notifications.Service
	sink          storage.MediaSink
	sinkName      string
}

// NewHandlers creates a new handlers instance
func NewHandlers(
	authService *auth.Service,
	storyService *stories.Service,
	feedService *feed.Service,
	searchService *search.Service,
	chatService *chat.Service,
	notificationService *notifications.Service,
	sink storage.MediaSink,
	sinkName string,
) *Handlers {
	return &Handlers{
		auth:          authService,
		stories:       storyService,
		feed:          feedService,
		search:        searchService,
		chat:          chatService,
		notifications: notificationService,
		sink:          sink,
		sinkName:      sinkName,
	}
}

// SetupRoutes wires all endpoints under /api/v1
func (h *Handlers) SetupRoutes(router *gin.Engine) {
	router.GET("/health", h.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/register", h.Register)
		authGroup.POST("/login", h.Login)
	}

	authed := v1.Group("")
	authed.Use(middleware.AuthMiddleware(h.auth))
	{
		authed.GET("/me", h.Me)

		users := authed.Group("/users")
		{
			users.GET("/:id", h.GetProfile)
			users.PUT("/me", h.UpdateProfile)
			users.POST("/:id/follow", h.Follow)
			users.DELETE("/:id/follow", h.Unfollow)
			users.GET("/:id/posts", h.GetUserPosts)
			users.GET("/:id/stories", h.GetUserStories)
		}

		storiesGroup := authed.Group("/stories")
		{
			storiesGroup.POST("", h.CreateStory)
			storiesGroup.GET("/bar", h.GetStoriesBar)
			storiesGroup.POST("/:id/view", h.ViewStory)
			storiesGroup.POST("/:id/like", h.LikeStory)
			storiesGroup.POST("/:id/comments", h.CommentStory)
			storiesGroup.GET("/:id/comments", h.GetStoryComments)
			storiesGroup.GET("/:id/viewers", h.GetStoryViewers)
			storiesGroup.DELETE("/:id", h.DeleteStory)
		}

		postsGroup := authed.Group("/posts")
		{
			postsGroup.POST("", h.CreatePost)
			postsGroup.GET("/feed", h.GetHomeFeed)
			postsGroup.GET("/reels", h.GetReels)
			postsGroup.POST("/:id/like", h.LikePost)
			postsGroup.DELETE("/:id/like", h.UnlikePost)
			postsGroup.POST("/:id/comments", h.CommentPost)
			postsGroup.GET("/:id/comments", h.GetPostComments)
			postsGroup.POST("/:id/share-to-story", h.SharePostToStory)
		}

		searchGroup := authed.Group("/search")
		{
			searchGroup.GET("", h.Search)
			searchGroup.GET("/recent", h.GetRecentSearches)
			searchGroup.DELETE("/recent", h.ClearRecentSearches)
		}

		chatGroup := authed.Group("/conversations")
		{
			chatGroup.POST("", h.OpenConversation)
			chatGroup.GET("", h.GetConversations)
			chatGroup.GET("/unread", h.GetUnreadCount)
			chatGroup.POST("/:id/messages", h.SendMessage)
			chatGroup.GET("/:id/messages", h.GetMessages)
			chatGroup.POST("/:id/read", h.MarkConversationRead)
		}

		notificationsGroup := authed.Group("/notifications")
		{
			notificationsGroup.GET("", h.GetNotifications)
			notificationsGroup.POST("/read", h.MarkNotificationsRead)
		}

		authed.POST("/upload", h.UploadMedia)
	}
}

// Health reports process and database liveness
func (h *Handlers) Health(c *gin.Context) {
	status := "ok"
	code := http.StatusOK
	if err := database.Health(); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status})
}
