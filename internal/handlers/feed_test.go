package handlers

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepass/backend/internal/models"
)

func (suite *HandlersTestSuite) TestCreatePostDefaultsToImage() {
	t := suite.T()

	w := suite.request("POST", "/api/v1/posts", map[string]interface{}{
		"media_url": suite.sink.baseURL + "/posts/pic.jpg",
		"caption":   "sunset",
	}, suite.testUser)
	assert.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	response := decodeJSON(t, w)
	assert.Equal(t, models.MediaTypeImage, response["media_type"])
	assert.Equal(t, suite.testUser.Username, response["username"])
}

func (suite *HandlersTestSuite) TestFeedAndReelsPartitionByMediaType() {
	t := suite.T()
	image := suite.createPost(suite.testUser, models.MediaTypeImage, "a photo")
	video := suite.createPost(suite.testUser, models.MediaTypeVideo, "a clip")

	w := suite.request("GET", "/api/v1/posts/feed", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code)
	feedPosts := decodeJSON(t, w)["posts"].([]interface{})
	require.Len(t, feedPosts, 1)
	assert.Equal(t, image.ID, feedPosts[0].(map[string]interface{})["id"])

	w = suite.request("GET", "/api/v1/posts/reels", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code)
	reels := decodeJSON(t, w)["posts"].([]interface{})
	require.Len(t, reels, 1)
	assert.Equal(t, video.ID, reels[0].(map[string]interface{})["id"])
}

func (suite *HandlersTestSuite) TestLikePostTwiceConflicts() {
	t := suite.T()
	author := suite.createUser("postauthor")
	post := suite.createPost(author, models.MediaTypeImage, "likeable")

	w := suite.request("POST", "/api/v1/posts/"+post.ID+"/like", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	w = suite.request("POST", "/api/v1/posts/"+post.ID+"/like", nil, suite.testUser)
	assert.Equal(t, http.StatusConflict, w.Code)

	var fresh models.Post
	require.NoError(t, suite.db.First(&fresh, "id = ?", post.ID).Error)
	assert.Equal(t, 1, fresh.LikesCount)
}

func (suite *HandlersTestSuite) TestUnlikeReversesLike() {
	t := suite.T()
	author := suite.createUser("unlikeauthor")
	post := suite.createPost(author, models.MediaTypeImage, "fickle")

	require.Equal(t, http.StatusOK, suite.request("POST", "/api/v1/posts/"+post.ID+"/like", nil, suite.testUser).Code)

	w := suite.request("DELETE", "/api/v1/posts/"+post.ID+"/like", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var fresh models.Post
	require.NoError(t, suite.db.First(&fresh, "id = ?", post.ID).Error)
	assert.Equal(t, 0, fresh.LikesCount)

	var likes int64
	suite.db.Model(&models.PostLike{}).Where("post_id = ?", post.ID).Count(&likes)
	assert.Equal(t, int64(0), likes)
}

func (suite *HandlersTestSuite) TestUnlikeWithoutLikeNotFound() {
	t := suite.T()
	author := suite.createUser("neverliked")
	post := suite.createPost(author, models.MediaTypeImage, "ignored")

	w := suite.request("DELETE", "/api/v1/posts/"+post.ID+"/like", nil, suite.testUser)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func (suite *HandlersTestSuite) TestCommentPostBumpsCounter() {
	t := suite.T()
	author := suite.createUser("commented")
	post := suite.createPost(author, models.MediaTypeImage, "discuss")

	w := suite.request("POST", "/api/v1/posts/"+post.ID+"/comments", map[string]interface{}{
		"text": "nice shot",
	}, suite.testUser)
	assert.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	var fresh models.Post
	require.NoError(t, suite.db.First(&fresh, "id = ?", post.ID).Error)
	assert.Equal(t, 1, fresh.CommentsCount)

	w = suite.request("GET", "/api/v1/posts/"+post.ID+"/comments", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code)
	comments := decodeJSON(t, w)["comments"].([]interface{})
	require.Len(t, comments, 1)
	assert.Equal(t, "nice shot", comments[0].(map[string]interface{})["text"])
}

func (suite *HandlersTestSuite) TestSharePostToStory() {
	t := suite.T()
	author := suite.createUser("shared")
	post := suite.createPost(author, models.MediaTypeVideo, "viral clip")

	w := suite.request("POST", "/api/v1/posts/"+post.ID+"/share-to-story", nil, suite.testUser)
	assert.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())

	response := decodeJSON(t, w)
	assert.Equal(t, post.ID, response["original_post_id"])
	assert.Equal(t, suite.testUser.ID, response["user_id"])
	assert.Equal(t, post.MediaURL, response["media_url"])

	var fresh models.Post
	require.NoError(t, suite.db.First(&fresh, "id = ?", post.ID).Error)
	assert.Equal(t, 1, fresh.SharesCount)
}

func (suite *HandlersTestSuite) TestUserPostsForProfileGrid() {
	t := suite.T()
	suite.createPost(suite.testUser, models.MediaTypeImage, "one")
	suite.createPost(suite.testUser, models.MediaTypeVideo, "two")
	other := suite.createUser("otherposter")
	suite.createPost(other, models.MediaTypeImage, "theirs")

	w := suite.request("GET", "/api/v1/users/"+suite.testUser.ID+"/posts", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code)

	posts := decodeJSON(t, w)["posts"].([]interface{})
	assert.Len(t, posts, 2)
}
