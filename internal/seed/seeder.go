package seed

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/timepass/backend/internal/logger"
	"github.com/timepass/backend/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seeder handles database seeding operations
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{db: db}
}

// SeedDev fills the development database with realistic data
func (s *Seeder) SeedDev() error {
	log := func(msg string) {
		logger.Log.Info(msg)
	}

	log("Creating users...")
	users, err := s.seedUsers(50)
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	log("Creating follow graph...")
	if err := s.seedFollows(users); err != nil {
		return fmt.Errorf("failed to seed follows: %w", err)
	}

	log("Creating posts...")
	posts, err := s.seedPosts(users, 300)
	if err != nil {
		return fmt.Errorf("failed to seed posts: %w", err)
	}

	log("Creating post likes and comments...")
	if err := s.seedPostEngagement(users, posts); err != nil {
		return fmt.Errorf("failed to seed post engagement: %w", err)
	}

	log("Creating stories...")
	stories, err := s.seedStories(users, 80)
	if err != nil {
		return fmt.Errorf("failed to seed stories: %w", err)
	}

	log("Creating story views and likes...")
	if err := s.seedStoryEngagement(users, stories); err != nil {
		return fmt.Errorf("failed to seed story engagement: %w", err)
	}

	log("Creating conversations...")
	if err := s.seedConversations(users, 40); err != nil {
		return fmt.Errorf("failed to seed conversations: %w", err)
	}

	return nil
}

// Clean removes all seed data (use with caution!)
func (s *Seeder) Clean() error {
	// Delete in reverse order of dependencies
	for _, table := range []string{
		"notifications",
		"messages",
		"conversations",
		"story_comments",
		"story_likes",
		"story_views",
		"stories",
		"post_comments",
		"post_likes",
		"posts",
		"users",
	} {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clean %s: %w", table, err)
		}
	}
	return nil
}

// seedUsers creates users with realistic data. All seed users share the
// password "password123".
func (s *Seeder) seedUsers(count int) ([]models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hashedPassword)

	users := make([]models.User, 0, count)
	for i := 0; i < count; i++ {
		username := fmt.Sprintf("%s%d", gofakeit.Username(), i)
		user := models.User{
			Email:        fmt.Sprintf("%d_%s", i, gofakeit.Email()),
			Username:     username,
			DisplayName:  gofakeit.Name(),
			Bio:          gofakeit.Sentence(8),
			PasswordHash: &hashStr,
			AvatarURL:    fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/png?seed=%s", username),
			Following:    models.StringArray{},
			Followers:    models.StringArray{},
		}
		if err := s.db.Create(&user).Error; err != nil {
			return nil, fmt.Errorf("failed to create user %s: %w", username, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// seedFollows gives every user a handful of random follows
func (s *Seeder) seedFollows(users []models.User) error {
	for i := range users {
		n := rand.Intn(8) + 2
		seen := map[string]bool{users[i].ID: true}
		for j := 0; j < n; j++ {
			target := &users[rand.Intn(len(users))]
			if seen[target.ID] {
				continue
			}
			seen[target.ID] = true
			users[i].Following = append(users[i].Following, target.ID)
			target.Followers = append(target.Followers, users[i].ID)
		}
	}

	for i := range users {
		err := s.db.Model(&models.User{}).Where("id = ?", users[i].ID).Updates(map[string]interface{}{
			"following":       users[i].Following,
			"followers":       users[i].Followers,
			"following_count": len(users[i].Following),
			"follower_count":  len(users[i].Followers),
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// seedPosts creates a mix of image posts and video reels
func (s *Seeder) seedPosts(users []models.User, count int) ([]models.Post, error) {
	posts := make([]models.Post, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]

		mediaType := models.MediaTypeImage
		mediaURL := gofakeit.ImageURL(640, 640)
		if rand.Intn(100) < 30 {
			mediaType = models.MediaTypeVideo
			mediaURL = fmt.Sprintf("https://cdn.timepass.app/posts/%s_%d.mp4", author.ID, i)
		}

		post := models.Post{
			UserID:    author.ID,
			Username:  author.Username,
			MediaURL:  mediaURL,
			MediaType: mediaType,
			Caption:   gofakeit.Sentence(rand.Intn(10) + 3),
			Location:  gofakeit.City(),
			CreatedAt: gofakeit.DateRange(time.Now().AddDate(0, -3, 0), time.Now()),
		}
		if err := s.db.Create(&post).Error; err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		posts = append(posts, post)
	}

	err := s.db.Exec(`
		UPDATE users SET post_count = sub.n
		FROM (SELECT user_id, COUNT(*) AS n FROM posts GROUP BY user_id) sub
		WHERE users.id = sub.user_id`).Error
	return posts, err
}

// seedPostEngagement adds likes and comments with consistent counters
func (s *Seeder) seedPostEngagement(users []models.User, posts []models.Post) error {
	for _, post := range posts {
		likers := rand.Intn(10)
		seen := map[string]bool{}
		likes := 0
		for i := 0; i < likers; i++ {
			user := users[rand.Intn(len(users))]
			if seen[user.ID] {
				continue
			}
			seen[user.ID] = true
			like := models.PostLike{PostID: post.ID, UserID: user.ID}
			if err := s.db.Create(&like).Error; err != nil {
				return err
			}
			likes++
		}

		comments := rand.Intn(5)
		for i := 0; i < comments; i++ {
			user := users[rand.Intn(len(users))]
			comment := models.PostComment{
				PostID:   post.ID,
				UserID:   user.ID,
				Username: user.Username,
				Text:     gofakeit.Sentence(rand.Intn(8) + 2),
			}
			if err := s.db.Create(&comment).Error; err != nil {
				return err
			}
		}

		err := s.db.Model(&models.Post{}).Where("id = ?", post.ID).Updates(map[string]interface{}{
			"likes_count":    likes,
			"comments_count": comments,
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// seedStories creates active stories; roughly a quarter are already
// expired so the expiry filter has something to hide
func (s *Seeder) seedStories(users []models.User, count int) ([]models.Story, error) {
	stories := make([]models.Story, 0, count)
	for i := 0; i < count; i++ {
		author := users[rand.Intn(len(users))]

		createdAt := time.Now().Add(-time.Duration(rand.Intn(20)) * time.Hour)
		if rand.Intn(100) < 25 {
			createdAt = time.Now().Add(-time.Duration(25+rand.Intn(48)) * time.Hour)
		}

		story := models.Story{
			UserID:    author.ID,
			Username:  author.Username,
			MediaURL:  gofakeit.ImageURL(720, 1280),
			MediaType: models.MediaTypeImage,
			Caption:   gofakeit.Sentence(rand.Intn(6) + 1),
			CreatedAt: createdAt,
			ExpiresAt: createdAt.Add(24 * time.Hour),
		}
		if err := s.db.Create(&story).Error; err != nil {
			return nil, fmt.Errorf("failed to create story: %w", err)
		}
		stories = append(stories, story)
	}
	return stories, nil
}

// seedStoryEngagement adds views and likes with consistent counters
func (s *Seeder) seedStoryEngagement(users []models.User, stories []models.Story) error {
	for _, story := range stories {
		viewers := rand.Intn(12)
		seen := map[string]bool{story.UserID: true}
		views, likes := 0, 0
		for i := 0; i < viewers; i++ {
			user := users[rand.Intn(len(users))]
			if seen[user.ID] {
				continue
			}
			seen[user.ID] = true

			view := models.StoryView{StoryID: story.ID, ViewerID: user.ID}
			if err := s.db.Create(&view).Error; err != nil {
				return err
			}
			views++

			if rand.Intn(100) < 30 {
				like := models.StoryLike{StoryID: story.ID, UserID: user.ID}
				if err := s.db.Create(&like).Error; err != nil {
					return err
				}
				likes++
			}
		}

		err := s.db.Model(&models.Story{}).Where("id = ?", story.ID).Updates(map[string]interface{}{
			"view_count": views,
			"like_count": likes,
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}

// seedConversations creates chats with a short message history
func (s *Seeder) seedConversations(users []models.User, count int) error {
	for i := 0; i < count; i++ {
		a := users[rand.Intn(len(users))]
		b := users[rand.Intn(len(users))]
		if a.ID == b.ID {
			continue
		}

		conv := models.Conversation{
			Participants: models.StringArray{a.ID, b.ID},
			UnreadCounts: models.UnreadCounts{a.ID: 0, b.ID: 0},
		}
		if err := s.db.Create(&conv).Error; err != nil {
			// Likely a duplicate pair from the random draw; skip it
			continue
		}

		messages := rand.Intn(10) + 1
		var lastText, lastSender string
		var lastAt time.Time
		unread := models.UnreadCounts{a.ID: 0, b.ID: 0}

		for j := 0; j < messages; j++ {
			sender, receiver := a, b
			if rand.Intn(2) == 0 {
				sender, receiver = b, a
			}

			read := rand.Intn(100) < 70
			msg := models.Message{
				ConversationID: conv.ID,
				SenderID:       sender.ID,
				ReceiverID:     receiver.ID,
				Text:           gofakeit.Sentence(rand.Intn(10) + 1),
				Read:           read,
				CreatedAt:      time.Now().Add(-time.Duration(rand.Intn(72)) * time.Hour),
			}
			if err := s.db.Create(&msg).Error; err != nil {
				return err
			}
			if !read {
				unread[receiver.ID]++
			}
			if msg.CreatedAt.After(lastAt) {
				lastAt = msg.CreatedAt
				lastText = msg.Text
				lastSender = sender.ID
			}
		}

		err := s.db.Model(&models.Conversation{}).Where("id = ?", conv.ID).Updates(map[string]interface{}{
			"last_message":        lastText,
			"last_message_sender": lastSender,
			"last_message_at":     lastAt,
			"unread_counts":       unread,
		}).Error
		if err != nil {
			return err
		}
	}
	return nil
}
