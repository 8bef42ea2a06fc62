package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/timepass/backend/internal/metrics"
	"github.com/timepass/backend/internal/search"
)

// Search runs a validated search over usernames and recent video
// captions. Invalid queries return empty results, not errors: the
// client treats them the same as no matches.
func (h *Handlers) Search(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	query := c.Query("q")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	results, err := h.search.Search(c.Request.Context(), user.ID, query, limit)
	if err != nil {
		metrics.Get().SearchesTotal.WithLabelValues("error").Inc()
		respondError(c, err)
		return
	}

	if _, valid := search.ValidateQuery(query); valid {
		metrics.Get().SearchesTotal.WithLabelValues("ok").Inc()
	} else {
		metrics.Get().SearchesTotal.WithLabelValues("rejected").Inc()
	}

	c.JSON(http.StatusOK, results)
}

// GetRecentSearches returns the caller's recent queries, newest first
func (h *Handlers) GetRecentSearches(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	recent, err := h.search.Recent(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recent": recent})
}

// ClearRecentSearches wipes the caller's search history
func (h *Handlers) ClearRecentSearches(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if err := h.search.ClearRecent(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": true})
}
