package stories

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"github.com/timepass/backend/internal/logger"
	"github.com/timepass/backend/internal/models"
	"github.com/timepass/backend/internal/notifications"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// StoryServiceTestSuite exercises story operations directly against a
// real postgres database, below the HTTP layer
type StoryServiceTestSuite struct {
	suite.Suite
	db       *gorm.DB
	service  *Service
	testUser *models.User
}

func (suite *StoryServiceTestSuite) SetupSuite() {
	require.NoError(suite.T(), logger.Initialize("error", "test.log"))

	host := getEnvOrDefault("POSTGRES_HOST", "localhost")
	port := getEnvOrDefault("POSTGRES_PORT", "5432")
	user := getEnvOrDefault("POSTGRES_USER", "postgres")
	password := getEnvOrDefault("POSTGRES_PASSWORD", "")
	dbname := getEnvOrDefault("POSTGRES_DB", "timepass_test")

	testDSN := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=disable", host, port, user, dbname)
	if password != "" {
		testDSN = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable", host, port, user, password, dbname)
	}

	db, err := gorm.Open(postgres.Open(testDSN), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	if err != nil {
		suite.T().Skipf("Skipping story service tests: database not available (%v)", err)
		return
	}

	var count int64
	db.Raw("SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_name = 'users'").Scan(&count)
	if count == 0 {
		err = db.AutoMigrate(
			&models.User{},
			&models.Story{},
			&models.StoryView{},
			&models.StoryLike{},
			&models.StoryComment{},
			&models.Notification{},
		)
		require.NoError(suite.T(), err)
	}
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_story_views_unique ON story_views (story_id, viewer_id)")
	db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_story_likes_unique ON story_likes (story_id, user_id)")

	suite.db = db
	suite.service = NewService(db, nil, notifications.NewService(db))
}

func (suite *StoryServiceTestSuite) TearDownSuite() {
	if suite.db != nil {
		sqlDB, _ := suite.db.DB()
		sqlDB.Close()
	}
}

func (suite *StoryServiceTestSuite) SetupTest() {
	suite.db.Exec("TRUNCATE TABLE notifications RESTART IDENTITY CASCADE")
	suite.db.Exec("TRUNCATE TABLE story_comments, story_likes, story_views, stories RESTART IDENTITY CASCADE")
	suite.db.Exec("TRUNCATE TABLE users RESTART IDENTITY CASCADE")

	suite.testUser = suite.createUser("storysvc")
}

func (suite *StoryServiceTestSuite) createUser(name string) *models.User {
	testID := fmt.Sprintf("%d", time.Now().UnixNano())
	user := &models.User{
		Email:    fmt.Sprintf("%s_%s@test.com", name, testID),
		Username: fmt.Sprintf("%s_%s", name, testID[8:]),
	}
	require.NoError(suite.T(), suite.db.Create(user).Error)
	return user
}

func (suite *StoryServiceTestSuite) createActiveStory(author *models.User) *models.Story {
	story := &models.Story{
		UserID:    author.ID,
		Username:  author.Username,
		MediaURL:  "https://cdn.test.local/stories/svc.jpg",
		MediaType: models.MediaTypeImage,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	require.NoError(suite.T(), suite.db.Create(story).Error)
	return story
}

func (suite *StoryServiceTestSuite) TestRepeatLikeReturnsAlreadyLiked() {
	t := suite.T()
	ctx := context.Background()
	story := suite.createActiveStory(suite.testUser)
	liker := suite.createUser("liker")

	require.NoError(t, suite.service.RecordLike(ctx, story.ID, liker))
	assert.ErrorIs(t, suite.service.RecordLike(ctx, story.ID, liker), ErrAlreadyLiked)

	var fresh models.Story
	require.NoError(t, suite.db.First(&fresh, "id = ?", story.ID).Error)
	assert.Equal(t, 1, fresh.LikeCount)
}

func (suite *StoryServiceTestSuite) TestConcurrentLikeInsertIsConflict() {
	t := suite.T()
	story := suite.createActiveStory(suite.testUser)
	liker := suite.createUser("racer")

	// Two inserts of the same pair model the check-then-insert race;
	// the second must come back as a translated duplicate-key error
	require.NoError(t, suite.db.Create(&models.StoryLike{StoryID: story.ID, UserID: liker.ID}).Error)
	err := suite.db.Create(&models.StoryLike{StoryID: story.ID, UserID: liker.ID}).Error
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func (suite *StoryServiceTestSuite) TestLikeInsertFailureIsNotAConflict() {
	t := suite.T()
	ctx := context.Background()
	story := suite.createActiveStory(suite.testUser)
	liker := suite.createUser("blocked")

	// Make the insert fail with something other than a duplicate key
	require.NoError(t, suite.db.Exec("ALTER TABLE story_likes ADD CONSTRAINT story_likes_insert_guard CHECK (false) NOT VALID").Error)
	defer suite.db.Exec("ALTER TABLE story_likes DROP CONSTRAINT story_likes_insert_guard")

	err := suite.service.RecordLike(ctx, story.ID, liker)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAlreadyLiked)

	var fresh models.Story
	require.NoError(t, suite.db.First(&fresh, "id = ?", story.ID).Error)
	assert.Equal(t, 0, fresh.LikeCount, "failed insert must not bump the counter")
}

func TestStoryServiceSuite(t *testing.T) {
	if os.Getenv("SKIP_DB_TESTS") == "true" {
		t.Skip("Skipping database tests")
	}

	suite.Run(t, new(StoryServiceTestSuite))
}
