package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/timepass/backend/internal/models"
	"gorm.io/gorm"
)

// contentScanWindow is how many recent videos the caption filter scans.
// Search here is a deliberate small-scale approximation, not an index.
const contentScanWindow = 50

// Results holds both halves of a search response
type Results struct {
	Query  string         `json:"query"`
	Users  []models.User  `json:"users"`
	Videos []models.Post  `json:"videos"`
}

// Service runs validated searches over users and recent video content
type Service struct {
	db     *gorm.DB
	recent *RecentSearches
}

// NewService creates a search service. recent may be nil when Redis is
// not configured; recent-search tracking is then skipped.
func NewService(db *gorm.DB, recent *RecentSearches) *Service {
	return &Service{db: db, recent: recent}
}

// Search validates the query and runs both sub-searches. Invalid input
// yields empty results without touching the database. Non-empty valid
// queries are remembered per user.
func (s *Service) Search(ctx context.Context, userID, rawQuery string, limit int) (*Results, error) {
	q, ok := ValidateQuery(rawQuery)
	if !ok || q == "" {
		return &Results{Query: q, Users: []models.User{}, Videos: []models.Post{}}, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}

	users, err := s.searchUsers(ctx, q, limit)
	if err != nil {
		return nil, err
	}

	videos, err := s.searchVideos(ctx, q, limit)
	if err != nil {
		return nil, err
	}

	if s.recent != nil && userID != "" {
		s.recent.Remember(ctx, userID, q)
	}

	return &Results{Query: q, Users: users, Videos: videos}, nil
}

// likeEscaper neutralizes LIKE metacharacters. Underscore is legal in
// usernames and has to match itself, not any single character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// searchUsers finds usernames starting with the query, case-insensitive
func (s *Service) searchUsers(ctx context.Context, q string, limit int) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("LOWER(username) LIKE ?", likeEscaper.Replace(strings.ToLower(q))+"%").
		Order("username ASC").
		Limit(limit).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	return users, nil
}

// searchVideos scans captions of the newest videos for the query as a
// substring. The scan window is fixed; older content is not searchable.
func (s *Service) searchVideos(ctx context.Context, q string, limit int) ([]models.Post, error) {
	var window []models.Post
	err := s.db.WithContext(ctx).
		Where("media_type = ?", models.MediaTypeVideo).
		Order("created_at DESC").
		Limit(contentScanWindow).
		Find(&window).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load video window: %w", err)
	}

	needle := strings.ToLower(q)
	matches := make([]models.Post, 0, limit)
	for _, post := range window {
		if strings.Contains(strings.ToLower(post.Caption), needle) {
			matches = append(matches, post)
			if len(matches) == limit {
				break
			}
		}
	}
	return matches, nil
}

// Recent returns the user's recent searches, newest first
func (s *Service) Recent(ctx context.Context, userID string) ([]string, error) {
	if s.recent == nil {
		return []string{}, nil
	}
	return s.recent.List(ctx, userID)
}

// ClearRecent wipes the user's recent searches
func (s *Service) ClearRecent(ctx context.Context, userID string) error {
	if s.recent == nil {
		return nil
	}
	return s.recent.Clear(ctx, userID)
}
