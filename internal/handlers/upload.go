package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	apierrors "github.com/timepass/backend/internal/errors"
	"github.com/timepass/backend/internal/metrics"
	"github.com/timepass/backend/internal/storage"
)

// UploadMedia accepts a multipart file and stores it through the
// configured media sink. The client then references the returned URL
// when creating a post or story.
func (h *Handlers) UploadMedia(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, apierrors.BadRequest("no file provided in 'file' field"))
		return
	}

	if err := storage.ValidateUpload(file.Filename, file.Size); err != nil {
		c.JSON(http.StatusUnprocessableEntity, apierrors.ValidationError("file", err.Error()))
		return
	}

	category := c.DefaultPostForm("category", "posts")
	switch category {
	case "posts", "stories", "avatars":
	default:
		c.JSON(http.StatusBadRequest, apierrors.BadRequest("unknown upload category"))
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierrors.InternalError("failed to open uploaded file"))
		return
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierrors.InternalError("failed to read uploaded file"))
		return
	}

	m := metrics.Get()
	start := time.Now()
	result, err := h.sink.Upload(c.Request.Context(), data, category, user.ID, file.Filename, nil)
	if err != nil {
		m.UploadsTotal.WithLabelValues(h.sinkName, "error").Inc()
		c.JSON(http.StatusBadGateway, apierrors.InternalError("media upload failed"))
		return
	}

	m.UploadsTotal.WithLabelValues(h.sinkName, "ok").Inc()
	m.UploadDuration.WithLabelValues(h.sinkName).Observe(time.Since(start).Seconds())
	m.UploadSizeBytes.WithLabelValues(h.sinkName).Observe(float64(len(data)))

	c.JSON(http.StatusCreated, result)
}
