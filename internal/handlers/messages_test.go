package handlers

import (
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/timepass/backend/internal/models"
)

// openConversation opens (or finds) the conversation between a and b,
// returning its id
func (suite *HandlersTestSuite) openConversation(a, b *models.User) string {
	w := suite.request("POST", "/api/v1/conversations", map[string]interface{}{
		"user_id": b.ID,
	}, a)
	require.Equal(suite.T(), http.StatusOK, w.Code, "body: %s", w.Body.String())
	return decodeJSON(suite.T(), w)["id"].(string)
}

func (suite *HandlersTestSuite) TestOpenConversationIsIdempotent() {
	t := suite.T()
	other := suite.createUser("chatpartner")

	first := suite.openConversation(suite.testUser, other)
	second := suite.openConversation(suite.testUser, other)
	assert.Equal(t, first, second)

	// Opening from the other side also finds the same conversation
	third := suite.openConversation(other, suite.testUser)
	assert.Equal(t, first, third)

	var count int64
	suite.db.Model(&models.Conversation{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func (suite *HandlersTestSuite) TestSendMessageBumpsReceiverUnread() {
	t := suite.T()
	other := suite.createUser("receiver")
	convID := suite.openConversation(suite.testUser, other)

	for _, text := range []string{"hey", "you there?"} {
		w := suite.request("POST", "/api/v1/conversations/"+convID+"/messages", map[string]interface{}{
			"text": text,
		}, suite.testUser)
		assert.Equal(t, http.StatusCreated, w.Code, "body: %s", w.Body.String())
	}

	var conv models.Conversation
	require.NoError(t, suite.db.First(&conv, "id = ?", convID).Error)
	assert.Equal(t, 2, conv.UnreadCounts[other.ID])
	assert.Equal(t, 0, conv.UnreadCounts[suite.testUser.ID])
	assert.Equal(t, "you there?", conv.LastMessage)
	assert.Equal(t, suite.testUser.ID, conv.LastMessageSender)

	// The receiver's unread total reflects both messages
	w := suite.request("GET", "/api/v1/conversations/unread", nil, other)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), decodeJSON(t, w)["unread"])

	// The sender has nothing unread
	w = suite.request("GET", "/api/v1/conversations/unread", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(0), decodeJSON(t, w)["unread"])
}

func (suite *HandlersTestSuite) TestMarkReadZeroesCounterAndFlagsMessages() {
	t := suite.T()
	other := suite.createUser("reader")
	convID := suite.openConversation(suite.testUser, other)

	w := suite.request("POST", "/api/v1/conversations/"+convID+"/messages", map[string]interface{}{
		"text": "unread until opened",
	}, suite.testUser)
	require.Equal(t, http.StatusCreated, w.Code)

	w = suite.request("POST", "/api/v1/conversations/"+convID+"/read", nil, other)
	assert.Equal(t, http.StatusOK, w.Code, "body: %s", w.Body.String())

	var conv models.Conversation
	require.NoError(t, suite.db.First(&conv, "id = ?", convID).Error)
	assert.Equal(t, 0, conv.UnreadCounts[other.ID])

	var unreadRows int64
	suite.db.Model(&models.Message{}).
		Where("conversation_id = ? AND receiver_id = ? AND read = false", convID, other.ID).
		Count(&unreadRows)
	assert.Equal(t, int64(0), unreadRows)
}

func (suite *HandlersTestSuite) TestMessagesOldestFirst() {
	t := suite.T()
	other := suite.createUser("historian")
	convID := suite.openConversation(suite.testUser, other)

	for _, text := range []string{"one", "two", "three"} {
		w := suite.request("POST", "/api/v1/conversations/"+convID+"/messages", map[string]interface{}{
			"text": text,
		}, suite.testUser)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := suite.request("GET", "/api/v1/conversations/"+convID+"/messages", nil, other)
	assert.Equal(t, http.StatusOK, w.Code)

	messages := decodeJSON(t, w)["messages"].([]interface{})
	require.Len(t, messages, 3)
	assert.Equal(t, "one", messages[0].(map[string]interface{})["text"])
	assert.Equal(t, "three", messages[2].(map[string]interface{})["text"])
}

func (suite *HandlersTestSuite) TestMessagesNonParticipantForbidden() {
	t := suite.T()
	other := suite.createUser("private")
	intruder := suite.createUser("intruder")
	convID := suite.openConversation(suite.testUser, other)

	w := suite.request("GET", "/api/v1/conversations/"+convID+"/messages", nil, intruder)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = suite.request("POST", "/api/v1/conversations/"+convID+"/messages", map[string]interface{}{
		"text": "let me in",
	}, intruder)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func (suite *HandlersTestSuite) TestConversationsSortedByActivity() {
	t := suite.T()
	first := suite.createUser("firstchat")
	second := suite.createUser("secondchat")

	firstID := suite.openConversation(suite.testUser, first)
	secondID := suite.openConversation(suite.testUser, second)

	// Activity in the first conversation makes it most recent
	w := suite.request("POST", "/api/v1/conversations/"+secondID+"/messages", map[string]interface{}{
		"text": "earlier",
	}, suite.testUser)
	require.Equal(t, http.StatusCreated, w.Code)
	w = suite.request("POST", "/api/v1/conversations/"+firstID+"/messages", map[string]interface{}{
		"text": "latest",
	}, suite.testUser)
	require.Equal(t, http.StatusCreated, w.Code)

	w = suite.request("GET", "/api/v1/conversations", nil, suite.testUser)
	assert.Equal(t, http.StatusOK, w.Code)

	convs := decodeJSON(t, w)["conversations"].([]interface{})
	require.Len(t, convs, 2)
	assert.Equal(t, firstID, convs[0].(map[string]interface{})["id"])
	assert.Equal(t, secondID, convs[1].(map[string]interface{})["id"])
}
