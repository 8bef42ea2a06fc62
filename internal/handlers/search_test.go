package handlers

import (
	"net/http"
	"net/url"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepass/backend/internal/models"
)

func (suite *HandlersTestSuite) searchFor(query string) map[string]interface{} {
	w := suite.request("GET", "/api/v1/search?q="+url.QueryEscape(query), nil, suite.testUser)
	require.Equal(suite.T(), http.StatusOK, w.Code, "body: %s", w.Body.String())
	return decodeJSON(suite.T(), w)
}

func (suite *HandlersTestSuite) TestSearchMatchesUsernamePrefix() {
	t := suite.T()
	suite.createUser("brandon")
	suite.createUser("brenda")

	response := suite.searchFor("bran")
	users := response["users"].([]interface{})
	require.Len(t, users, 1)
	assert.Contains(t, users[0].(map[string]interface{})["username"], "brandon")

	// Prefix match only: an infix hit stays out
	response = suite.searchFor("randon")
	assert.Empty(t, response["users"])
}

func (suite *HandlersTestSuite) TestSearchUnderscoreMatchesLiterally() {
	t := suite.T()

	// Fixed usernames: an underscore in the query must match itself,
	// not any single character
	for _, name := range []string{"snake_one", "snakeyone"} {
		require.NoError(t, suite.db.Create(&models.User{
			Email:    name + "@test.com",
			Username: name,
		}).Error)
	}

	response := suite.searchFor("snake_")
	users := response["users"].([]interface{})
	require.Len(t, users, 1)
	assert.Equal(t, "snake_one", users[0].(map[string]interface{})["username"])
}

func (suite *HandlersTestSuite) TestSearchMatchesVideoCaptions() {
	t := suite.T()
	author := suite.createUser("captioner")
	video := suite.createPost(author, models.MediaTypeVideo, "epic skateboarding fail")
	suite.createPost(author, models.MediaTypeImage, "epic skateboarding photo")

	response := suite.searchFor("skateboarding")
	videos := response["videos"].([]interface{})
	require.Len(t, videos, 1, "only video captions are searched")
	assert.Equal(t, video.ID, videos[0].(map[string]interface{})["id"])
}

func (suite *HandlersTestSuite) TestSearchCaptionSubstringAnywhere() {
	t := suite.T()
	author := suite.createUser("substr")
	video := suite.createPost(author, models.MediaTypeVideo, "morning coffee routine")

	response := suite.searchFor("coffee")
	videos := response["videos"].([]interface{})
	require.Len(t, videos, 1)
	assert.Equal(t, video.ID, videos[0].(map[string]interface{})["id"])
}

func (suite *HandlersTestSuite) TestSearchRejectsSpecialCharacters() {
	t := suite.T()
	suite.createUser("victim")

	// Injection-looking input comes back as an ordinary empty result
	response := suite.searchFor("vic'; DROP TABLE users--")
	assert.Empty(t, response["users"])
	assert.Empty(t, response["videos"])

	var count int64
	suite.db.Model(&models.User{}).Count(&count)
	assert.Greater(t, count, int64(0), "users table untouched")
}

func (suite *HandlersTestSuite) TestSearchRejectsOverlongQuery() {
	t := suite.T()

	long := make([]byte, 51)
	for i := range long {
		long[i] = 'a'
	}
	response := suite.searchFor(string(long))
	assert.Empty(t, response["users"])
	assert.Empty(t, response["videos"])
}

func (suite *HandlersTestSuite) TestSearchEmptyQueryReturnsNothing() {
	t := suite.T()
	suite.createUser("invisible")

	response := suite.searchFor("")
	assert.Empty(t, response["users"])
	assert.Empty(t, response["videos"])
}
