package stories

import (
	"context"
	"time"

	"github.com/timepass/backend/internal/logger"
	"github.com/timepass/backend/internal/metrics"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReconcileService periodically recomputes the denormalized counters
// (story views/likes, post likes/comments) from their authoritative
// tables. Counters drift when an increment is lost between the record
// insert and the counter update; reconciliation converges them.
type ReconcileService struct {
	db       *gorm.DB
	ctx      context.Context
	cancel   context.CancelFunc
	interval time.Duration
}

// NewReconcileService creates a counter reconciliation service
func NewReconcileService(db *gorm.DB, interval time.Duration) *ReconcileService {
	ctx, cancel := context.WithCancel(context.Background())
	return &ReconcileService{
		db:       db,
		ctx:      ctx,
		cancel:   cancel,
		interval: interval,
	}
}

// Start begins the periodic reconciliation loop
func (s *ReconcileService) Start() {
	logger.Log.Info("Starting counter reconciliation service",
		zap.Duration("interval", s.interval))
	go s.run()
}

// Stop stops the reconciliation loop
func (s *ReconcileService) Stop() {
	logger.Log.Info("Stopping counter reconciliation service")
	s.cancel()
}

func (s *ReconcileService) run() {
	// Run immediately on startup
	s.RunOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunOnce()
		case <-s.ctx.Done():
			return
		}
	}
}

// RunOnce performs one reconciliation sweep. Each statement rewrites
// only rows whose counter disagrees with the authoritative count, so a
// quiet database is a cheap sweep.
func (s *ReconcileService) RunOnce() {
	start := time.Now()

	statements := []struct {
		name string
		sql  string
	}{
		{"story view counts", `
			UPDATE stories SET view_count = sub.n
			FROM (SELECT story_id, COUNT(*) AS n FROM story_views GROUP BY story_id) sub
			WHERE stories.id = sub.story_id AND stories.view_count <> sub.n`},
		{"story view zeroes", `
			UPDATE stories SET view_count = 0
			WHERE view_count <> 0
			  AND NOT EXISTS (SELECT 1 FROM story_views WHERE story_views.story_id = stories.id)`},
		{"story like counts", `
			UPDATE stories SET like_count = sub.n
			FROM (SELECT story_id, COUNT(*) AS n FROM story_likes GROUP BY story_id) sub
			WHERE stories.id = sub.story_id AND stories.like_count <> sub.n`},
		{"story like zeroes", `
			UPDATE stories SET like_count = 0
			WHERE like_count <> 0
			  AND NOT EXISTS (SELECT 1 FROM story_likes WHERE story_likes.story_id = stories.id)`},
		{"post like counts", `
			UPDATE posts SET likes_count = sub.n
			FROM (SELECT post_id, COUNT(*) AS n FROM post_likes GROUP BY post_id) sub
			WHERE posts.id = sub.post_id AND posts.likes_count <> sub.n`},
		{"post like zeroes", `
			UPDATE posts SET likes_count = 0
			WHERE likes_count <> 0
			  AND NOT EXISTS (SELECT 1 FROM post_likes WHERE post_likes.post_id = posts.id)`},
		{"post comment counts", `
			UPDATE posts SET comments_count = sub.n
			FROM (SELECT post_id, COUNT(*) AS n FROM post_comments GROUP BY post_id) sub
			WHERE posts.id = sub.post_id AND posts.comments_count <> sub.n`},
		{"post comment zeroes", `
			UPDATE posts SET comments_count = 0
			WHERE comments_count <> 0
			  AND NOT EXISTS (SELECT 1 FROM post_comments WHERE post_comments.post_id = posts.id)`},
	}

	var corrected int64
	for _, stmt := range statements {
		res := s.db.Exec(stmt.sql)
		if res.Error != nil {
			logger.Log.Error("Counter reconciliation step failed",
				zap.String("step", stmt.name), zap.Error(res.Error))
			continue
		}
		if res.RowsAffected > 0 {
			logger.Log.Info("Reconciled drifted counters",
				zap.String("step", stmt.name),
				zap.Int64("rows", res.RowsAffected))
		}
		corrected += res.RowsAffected
	}

	metrics.Get().CountersReconciledTotal.Add(float64(corrected))

	logger.Log.Debug("Counter reconciliation sweep done",
		zap.Int64("corrected", corrected),
		zap.Duration("took", time.Since(start)))
}
