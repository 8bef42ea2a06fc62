package handlers

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepass/backend/internal/models"
)

func (suite *HandlersTestSuite) TestNotificationsListAndMarkRead() {
	t := suite.T()
	author := suite.createUser("notifauthor")
	story := suite.createStory(author, 1)

	// Viewing and liking someone's story notifies them
	require.Equal(t, http.StatusOK, suite.request("POST", "/api/v1/stories/"+story.ID+"/view", nil, suite.testUser).Code)
	require.Equal(t, http.StatusOK, suite.request("POST", "/api/v1/stories/"+story.ID+"/like", nil, suite.testUser).Code)

	w := suite.request("GET", "/api/v1/notifications", nil, author)
	assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	response := decodeJSON(t, w)
	notifs := response["notifications"].([]interface{})
	assert.Len(t, notifs, 2)
	assert.Equal(t, float64(2), response["unread"])

	w = suite.request("POST", "/api/v1/notifications/read", nil, author)
	assert.Equal(t, http.StatusOK, w.Code)

	w = suite.request("GET", "/api/v1/notifications", nil, author)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeJSON(t, w)["unread"])
}

func (suite *HandlersTestSuite) TestOwnActionsDoNotNotifySelf() {
	t := suite.T()
	story := suite.createStory(suite.testUser, 1)

	// Liking your own story leaves no notification behind
	require.Equal(t, http.StatusOK, suite.request("POST", "/api/v1/stories/"+story.ID+"/like", nil, suite.testUser).Code)

	var count int64
	suite.db.Model(&models.Notification{}).Where("user_id = ?", suite.testUser.ID).Count(&count)
	assert.Equal(t, int64(0), count)
}
