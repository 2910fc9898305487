package service

import (
	"encoding/json"
	"testing"

	"go-fairway/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatService_SendAndHistory(t *testing.T) {
	env := newTestEnv(t)
	sessionID, userIDs, _ := env.startedSession(t, "host", "guest")
	hostID := userIDs[0]
	outsiderID := env.registerUser(t, "outsider")

	message, err := env.chat.SendMessage(sessionID, hostID, ChatMessageRequest{Content: "nice drive"})
	require.NoError(t, err)
	assert.Equal(t, hostID, message.SenderID)

	_, err = env.chat.SendMessage(sessionID, outsiderID, ChatMessageRequest{Content: "let me in"})
	assert.True(t, apperr.Is(err, apperr.Forbidden), "got %v", err)

	_, err = env.chat.SendMessage(sessionID, hostID, ChatMessageRequest{Content: ""})
	assert.True(t, apperr.Is(err, apperr.InvalidInput), "got %v", err)

	history, err := env.chat.History(sessionID, userIDs[1], 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "nice drive", history[0].Content)

	_, err = env.chat.History(sessionID, outsiderID, 0, 0)
	assert.True(t, apperr.Is(err, apperr.Forbidden), "got %v", err)
}

func TestChatService_HandleInboundPersists(t *testing.T) {
	env := newTestEnv(t)
	sessionID, userIDs, _ := env.startedSession(t, "host", "guest")
	hostID := userIDs[0]

	frame, err := json.Marshal(ChatMessageRequest{Content: "from the websocket"})
	require.NoError(t, err)
	env.chat.HandleInbound(sessionID, hostID, frame)

	history, err := env.chat.History(sessionID, hostID, 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "from the websocket", history[0].Content)

	// Malformed frames are dropped without touching the store.
	env.chat.HandleInbound(sessionID, hostID, []byte("{not json"))
	history, err = env.chat.History(sessionID, hostID, 0, 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestChatService_RejectsEndedSession(t *testing.T) {
	env := newTestEnv(t)
	sessionID, userIDs, _ := env.startedSession(t, "host", "guest")
	hostID := userIDs[0]

	_, err := env.sessions.End(sessionID, hostID)
	require.NoError(t, err)

	_, err = env.chat.SendMessage(sessionID, hostID, ChatMessageRequest{Content: "too late"})
	assert.True(t, apperr.Is(err, apperr.InvalidState), "got %v", err)

	// History stays readable after the session ends.
	_, err = env.chat.History(sessionID, hostID, 0, 0)
	require.NoError(t, err)
}
