package handlers

import (
	"net/http"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepass/backend/internal/models"
)

func (suite *HandlersTestSuite) TestCreateStoryExpiresIn24Hours() {
	t := suite.T()

	w := suite.request("POST", "/api/v1/stories", map[string]interface{}{
		"media_url": suite.sink.baseURL + "/stories/new.jpg",
		"caption":   "hello",
	}, suite.testUser)
	assert.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	response := decodeJSON(t, w)
	assert.NotEmpty(t, response["id"])
	assert.Equal(t, suite.testUser.ID, response["user_id"])
	assert.Equal(t, models.MediaTypeImage, response["media_type"])

	expiresAt, err := time.Parse(time.RFC3339, response["expires_at"].(string))
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, time.Minute)
}

func (suite *HandlersTestSuite) TestCreateStoryMissingMediaURL() {
	t := suite.T()

	w := suite.request("POST", "/api/v1/stories", map[string]interface{}{
		"caption": "no media",
	}, suite.testUser)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func (suite *HandlersTestSuite) TestStoriesBarViewerAlwaysFirst() {
	t := suite.T()
	other := suite.createUser("author")
	suite.follow(suite.testUser, other)
	suite.createStory(other, 2)

	w := suite.request("GET", "/api/v1/stories/bar", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	response := decodeJSON(t, w)
	users := response["users"].([]interface{})
	require.Len(t, users, 2)

	// The caller leads even with no stories of their own
	first := users[0].(map[string]interface{})
	assert.Equal(t, suite.testUser.ID, first["user_id"])
	assert.Equal(t, false, first["has_stories"])

	second := users[1].(map[string]interface{})
	assert.Equal(t, other.ID, second["user_id"])
	assert.Equal(t, true, second["has_stories"])
	assert.Len(t, second["stories"].([]interface{}), 1)
}

func (suite *HandlersTestSuite) TestStoriesBarShowsAuthorAvatars() {
	t := suite.T()
	other := suite.createUser("avatared")
	avatarURL := suite.sink.baseURL + "/avatars/a.jpg"
	require.NoError(t, suite.db.Model(&models.User{}).Where("id = ?", other.ID).
		Update("avatar_url", avatarURL).Error)
	suite.follow(suite.testUser, other)
	suite.createStory(other, 1)

	w := suite.request("GET", "/api/v1/stories/bar", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	users := decodeJSON(t, w)["users"].([]interface{})
	require.Len(t, users, 2)

	second := users[1].(map[string]interface{})
	assert.Equal(t, other.ID, second["user_id"])
	assert.Equal(t, avatarURL, second["avatar_url"])
}

func (suite *HandlersTestSuite) TestStoriesBarHidesExpiredStories() {
	t := suite.T()
	fresh := suite.createUser("fresh")
	stale := suite.createUser("stale")
	suite.follow(suite.testUser, fresh)
	suite.follow(suite.testUser, stale)

	suite.createStory(fresh, 2)
	suite.createStory(stale, 30) // expired 6 hours ago

	w := suite.request("GET", "/api/v1/stories/bar", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code)

	users := decodeJSON(t, w)["users"].([]interface{})
	require.Len(t, users, 2) // caller + fresh, stale filtered out

	second := users[1].(map[string]interface{})
	assert.Equal(t, fresh.ID, second["user_id"])
}

func (suite *HandlersTestSuite) TestStoriesBarIgnoresUnfollowedAuthors() {
	t := suite.T()
	stranger := suite.createUser("stranger")
	suite.createStory(stranger, 1)

	w := suite.request("GET", "/api/v1/stories/bar", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code)

	users := decodeJSON(t, w)["users"].([]interface{})
	assert.Len(t, users, 1) // only the caller
}

func (suite *HandlersTestSuite) TestUserStoriesExcludeExpiredOldestFirst() {
	t := suite.T()
	suite.createStory(suite.testUser, 30) // expired
	older := suite.createStory(suite.testUser, 10)
	newer := suite.createStory(suite.testUser, 1)

	w := suite.request("GET", "/api/v1/users/"+suite.testUser.ID+"/stories", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code)

	stories := decodeJSON(t, w)["stories"].([]interface{})
	require.Len(t, stories, 2)
	assert.Equal(t, older.ID, stories[0].(map[string]interface{})["id"])
	assert.Equal(t, newer.ID, stories[1].(map[string]interface{})["id"])
}

func (suite *HandlersTestSuite) TestViewStoryCountsEachViewerOnce() {
	t := suite.T()
	author := suite.createUser("viewauthor")
	story := suite.createStory(author, 1)

	for i := 0; i < 3; i++ {
		w := suite.request("POST", "/api/v1/stories/"+story.ID+"/view", nil, suite.testUser)
		assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	}

	var fresh models.Story
	require.NoError(t, suite.db.First(&fresh, "id = ?", story.ID).Error)
	assert.Equal(t, 1, fresh.ViewCount)

	var views int64
	suite.db.Model(&models.StoryView{}).Where("story_id = ?", story.ID).Count(&views)
	assert.Equal(t, int64(1), views)
}

func (suite *HandlersTestSuite) TestViewOwnStoryLeavesNoTrace() {
	t := suite.T()
	story := suite.createStory(suite.testUser, 1)

	w := suite.request("POST", "/api/v1/stories/"+story.ID+"/view", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code)

	var fresh models.Story
	require.NoError(t, suite.db.First(&fresh, "id = ?", story.ID).Error)
	assert.Equal(t, 0, fresh.ViewCount)

	var views int64
	suite.db.Model(&models.StoryView{}).Where("story_id = ?", story.ID).Count(&views)
	assert.Equal(t, int64(0), views)
}

func (suite *HandlersTestSuite) TestViewExpiredStoryNotFound() {
	t := suite.T()
	author := suite.createUser("expiredauthor")
	story := suite.createStory(author, 30)

	w := suite.request("POST", "/api/v1/stories/"+story.ID+"/view", nil, suite.testUser)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestLikeStoryTwiceConflicts() {
	t := suite.T()
	author := suite.createUser("likeauthor")
	story := suite.createStory(author, 1)

	w := suite.request("POST", "/api/v1/stories/"+story.ID+"/like", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	w = suite.request("POST", "/api/v1/stories/"+story.ID+"/like", nil, suite.testUser)
	assert.Equal(t, http.StatusConflict, w.Code)

	var fresh models.Story
	require.NoError(t, suite.db.First(&fresh, "id = ?", story.ID).Error)
	assert.Equal(t, 1, fresh.LikeCount)
}

func (suite *HandlersTestSuite) TestLikeStoryNotifiesAuthor() {
	t := suite.T()
	author := suite.createUser("notified")
	story := suite.createStory(author, 1)

	w := suite.request("POST", "/api/v1/stories/"+story.ID+"/like", nil, suite.testUser)
	require.Equal(t, http.StatusOK, w.Code)

	var notifs []models.Notification
	require.NoError(t, suite.db.Where("user_id = ?", author.ID).Find(&notifs).Error)
	require.Len(t, notifs, 1)
	assert.Equal(t, models.NotificationStoryLike, notifs[0].Type)
	assert.Equal(t, suite.testUser.ID, notifs[0].ActorID)
}

func (suite *HandlersTestSuite) TestStoryCommentsOldestFirst() {
	t := suite.T()
	author := suite.createUser("commentauthor")
	story := suite.createStory(author, 1)

	for _, text := range []string{"first", "second"} {
		w := suite.request("POST", "/api/v1/stories/"+story.ID+"/comments", map[string]interface{}{
			"text": text,
		}, suite.testUser)
		assert.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	}

	w := suite.request("GET", "/api/v1/stories/"+story.ID+"/comments", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code)

	comments := decodeJSON(t, w)["comments"].([]interface{})
	require.Len(t, comments, 2)
	assert.Equal(t, "first", comments[0].(map[string]interface{})["text"])
	assert.Equal(t, "second", comments[1].(map[string]interface{})["text"])
}

func (suite *HandlersTestSuite) TestStoryViewersOwnerOnly() {
	t := suite.T()
	story := suite.createStory(suite.testUser, 1)
	viewer := suite.createUser("viewer")

	w := suite.request("POST", "/api/v1/stories/"+story.ID+"/view", nil, viewer)
	require.Equal(t, http.StatusOK, w.Code)

	// Owner sees the viewer list
	w = suite.request("GET", "/api/v1/stories/"+story.ID+"/viewers", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())
	viewers := decodeJSON(t, w)["viewers"].([]interface{})
	assert.Len(t, viewers, 1)

	// Anyone else gets refused
	w = suite.request("GET", "/api/v1/stories/"+story.ID+"/viewers", nil, viewer)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestDeleteStoryNotOwnerForbidden() {
	t := suite.T()
	author := suite.createUser("delauthor")
	story := suite.createStory(author, 1)

	w := suite.request("DELETE", "/api/v1/stories/"+story.ID, nil, suite.testUser)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var count int64
	suite.db.Model(&models.Story{}).Where("id = ?", story.ID).Count(&count)
	assert.Equal(t, int64(1), count, "story should survive a rejected delete")
}

func (suite *HandlersTestSuite) TestDeleteStoryRemovesEngagementAndBlob() {
	t := suite.T()
	story := suite.createStory(suite.testUser, 1)
	viewer := suite.createUser("delviewer")

	require.Equal(t, http.StatusOK, suite.request("POST", "/api/v1/stories/"+story.ID+"/view", nil, viewer).Code)
	require.Equal(t, http.StatusOK, suite.request("POST", "/api/v1/stories/"+story.ID+"/like", nil, viewer).Code)

	w := suite.request("DELETE", "/api/v1/stories/"+story.ID, nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var count int64
	suite.db.Model(&models.Story{}).Where("id = ?", story.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	suite.db.Model(&models.StoryView{}).Where("story_id = ?", story.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	suite.db.Model(&models.StoryLike{}).Where("story_id = ?", story.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	// The blob lived on our sink, so it gets deleted too
	assert.Contains(t, suite.sink.deleted, story.MediaURL)
}

func (suite *HandlersTestSuite) TestDeleteStorySkipsForeignBlob() {
	t := suite.T()
	story := &models.Story{
		UserID:    suite.testUser.ID,
		Username:  suite.testUser.Username,
		MediaURL:  "https://media.elsewhere.example/clip.jpg",
		MediaType: models.MediaTypeImage,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, suite.db.Create(story).Error)

	w := suite.request("DELETE", "/api/v1/stories/"+story.ID, nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, suite.sink.deleted, "foreign blobs are left alone")
}
