package repository

import (
	"testing"

	"go-fairway/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFriendRepository_FindPendingBetweenEitherDirection(t *testing.T) {
	conn := newTestDB(t)
	repo := NewFriendRepository(conn)
	alice := createTestUser(t, conn, "alice")
	bob := createTestUser(t, conn, "bob")

	require.NoError(t, repo.CreateRequest(&model.FriendRequest{
		FromUserID: alice.ID,
		ToUserID:   bob.ID,
		Status:     model.FriendRequestPending,
	}))

	// Both argument orders must find the same pending request.
	forward, err := repo.FindPendingBetween(alice.ID, bob.ID)
	require.NoError(t, err)
	require.NotNil(t, forward)

	reverse, err := repo.FindPendingBetween(bob.ID, alice.ID)
	require.NoError(t, err)
	require.NotNil(t, reverse)
	assert.Equal(t, forward.ID, reverse.ID)
}

func TestFriendRepository_AcceptCreatesBothEdges(t *testing.T) {
	conn := newTestDB(t)
	repo := NewFriendRepository(conn)
	alice := createTestUser(t, conn, "alice")
	bob := createTestUser(t, conn, "bob")

	request := &model.FriendRequest{
		FromUserID: alice.ID,
		ToUserID:   bob.ID,
		Status:     model.FriendRequestPending,
	}
	require.NoError(t, repo.CreateRequest(request))
	require.NoError(t, repo.Accept(request))

	updated, err := repo.FindRequestByID(request.ID)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, model.FriendRequestAccepted, updated.Status)

	for _, pair := range [][2]uint{{alice.ID, bob.ID}, {bob.ID, alice.ID}} {
		friends, err := repo.AreFriends(pair[0], pair[1])
		require.NoError(t, err)
		assert.True(t, friends)
	}
}

func TestFriendRepository_DeclinedPairCanRequestAgain(t *testing.T) {
	conn := newTestDB(t)
	repo := NewFriendRepository(conn)
	alice := createTestUser(t, conn, "alice")
	bob := createTestUser(t, conn, "bob")

	first := &model.FriendRequest{
		FromUserID: alice.ID,
		ToUserID:   bob.ID,
		Status:     model.FriendRequestPending,
	}
	require.NoError(t, repo.CreateRequest(first))
	require.NoError(t, repo.UpdateRequestStatus(first.ID, model.FriendRequestDeclined))

	pending, err := repo.FindPendingBetween(alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Nil(t, pending, "declined request no longer blocks")

	require.NoError(t, repo.CreateRequest(&model.FriendRequest{
		FromUserID: bob.ID,
		ToUserID:   alice.ID,
		Status:     model.FriendRequestPending,
	}))

	reqs, err := repo.FindPendingForUser(alice.ID)
	require.NoError(t, err)
	assert.Len(t, reqs, 1)
}
