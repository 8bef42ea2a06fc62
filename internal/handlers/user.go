package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/timepass/backend/internal/database"
	apierrors "github.com/timepass/backend/internal/errors"
	"github.com/timepass/backend/internal/logger"
	"github.com/timepass/backend/internal/models"
	"github.com/timepass/backend/internal/notifications"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GetProfile returns a user's public profile
func (h *Handlers) GetProfile(c *gin.Context) {
	var user models.User
	err := database.DB.First(&user, "id = ?", c.Param("id")).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, apierrors.NotFound("user"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user.PublicProfile())
}

// UpdateProfileRequest carries editable profile fields
type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name"`
	Bio         *string `json:"bio"`
	AvatarURL   *string `json:"avatar_url"`
}

// UpdateProfile edits the authenticated user's profile
func (h *Handlers) UpdateProfile(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierrors.BadRequest("invalid profile payload"))
		return
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if len(updates) == 0 {
		c.JSON(http.StatusOK, user)
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", user.ID).Updates(updates).Error; err != nil {
		respondError(c, err)
		return
	}

	var fresh models.User
	if err := database.DB.First(&fresh, "id = ?", user.ID).Error; err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, fresh)
}

// Follow adds the target to the caller's following list and vice versa.
// Both id arrays and both cached counts are updated; a repeat follow is
// a no-op.
func (h *Handlers) Follow(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	targetID := c.Param("id")
	if targetID == user.ID {
		c.JSON(http.StatusBadRequest, apierrors.BadRequest("cannot follow yourself"))
		return
	}

	var target models.User
	err := database.DB.First(&target, "id = ?", targetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, apierrors.NotFound("user"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	if user.Following.Contains(targetID) {
		c.JSON(http.StatusOK, gin.H{"following": true})
		return
	}

	following := append(user.Following, targetID)
	followers := append(target.Followers, user.ID)

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"following":       following,
			"following_count": len(following),
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", targetID).Updates(map[string]interface{}{
			"followers":      followers,
			"follower_count": len(followers),
		}).Error
	})
	if err != nil {
		logger.Log.Error("Failed to update follow graph",
			logger.WithUserID(user.ID), zap.String("target_id", targetID), zap.Error(err))
		respondError(c, err)
		return
	}

	h.notifications.Notify(c.Request.Context(), notifications.Event{
		RecipientID: targetID,
		Type:        models.NotificationFollow,
		ActorID:     user.ID,
		ActorName:   user.Username,
		Message:     user.Username + " started following you",
		TargetID:    user.ID,
		TargetType:  "user",
	})

	c.JSON(http.StatusOK, gin.H{"following": true})
}

// Unfollow removes the follow edge in both directions
func (h *Handlers) Unfollow(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	targetID := c.Param("id")

	var target models.User
	err := database.DB.First(&target, "id = ?", targetID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, apierrors.NotFound("user"))
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	if !user.Following.Contains(targetID) {
		c.JSON(http.StatusOK, gin.H{"following": false})
		return
	}

	following := user.Following.Remove(targetID)
	followers := target.Followers.Remove(user.ID)

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
			"following":       following,
			"following_count": len(following),
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", targetID).Updates(map[string]interface{}{
			"followers":      followers,
			"follower_count": len(followers),
		}).Error
	})
	if err != nil {
		logger.Log.Error("Failed to update follow graph",
			logger.WithUserID(user.ID), zap.String("target_id", targetID), zap.Error(err))
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"following": false})
}
