package repository

import (
	"testing"
	"time"

	"go-fairway/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSession(t *testing.T, repo *SessionRepository, hostID, courseID uint, code string) *model.GroupSession {
	t.Helper()
	session := &model.GroupSession{
		Name:       "Saturday four-ball",
		HostID:     hostID,
		CourseID:   courseID,
		InviteCode: code,
		MaxPlayers: 4,
		Status:     model.SessionWaiting,
	}
	require.NoError(t, repo.Create(session))
	return session
}

func TestSessionRepository_CreateAddsHostAsMember(t *testing.T) {
	conn := newTestDB(t)
	repo := NewSessionRepository(conn)
	host := createTestUser(t, conn, "host")
	course := createTestCourse(t, conn, 3)

	session := createTestSession(t, repo, host.ID, course.ID, "ABC123")

	member, err := repo.FindMember(session.ID, host.ID)
	require.NoError(t, err)
	require.NotNil(t, member)
	assert.False(t, member.IsReady)

	count, err := repo.CountMembers(session.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestSessionRepository_FindByInviteCode(t *testing.T) {
	conn := newTestDB(t)
	repo := NewSessionRepository(conn)
	host := createTestUser(t, conn, "host")
	course := createTestCourse(t, conn, 3)
	createTestSession(t, repo, host.ID, course.ID, "XYZ789")

	found, err := repo.FindByInviteCode("XYZ789")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, host.ID, found.HostID)

	missing, err := repo.FindByInviteCode("NOPE00")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSessionRepository_FindActiveByHost(t *testing.T) {
	conn := newTestDB(t)
	repo := NewSessionRepository(conn)
	host := createTestUser(t, conn, "host")
	course := createTestCourse(t, conn, 3)
	session := createTestSession(t, repo, host.ID, course.ID, "AAA111")

	active, err := repo.FindActiveByHost(host.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, session.ID, active.ID)

	require.NoError(t, repo.UpdateStatus(session.ID, model.SessionCancelled, nil))

	active, err = repo.FindActiveByHost(host.ID)
	require.NoError(t, err)
	assert.Nil(t, active)
}

func TestSessionRepository_ReadyScan(t *testing.T) {
	conn := newTestDB(t)
	repo := NewSessionRepository(conn)
	host := createTestUser(t, conn, "host")
	guest := createTestUser(t, conn, "guest")
	course := createTestCourse(t, conn, 3)
	session := createTestSession(t, repo, host.ID, course.ID, "BBB222")
	require.NoError(t, repo.AddMember(session.ID, guest.ID))

	allReady, err := repo.AllMembersReady(session.ID)
	require.NoError(t, err)
	assert.False(t, allReady)

	require.NoError(t, repo.SetMemberReady(session.ID, host.ID, true))
	allReady, err = repo.AllMembersReady(session.ID)
	require.NoError(t, err)
	assert.False(t, allReady, "one member still not ready")

	require.NoError(t, repo.SetMemberReady(session.ID, guest.ID, true))
	allReady, err = repo.AllMembersReady(session.ID)
	require.NoError(t, err)
	assert.True(t, allReady)

	// Un-readying flips the scan back.
	require.NoError(t, repo.SetMemberReady(session.ID, guest.ID, false))
	allReady, err = repo.AllMembersReady(session.ID)
	require.NoError(t, err)
	assert.False(t, allReady)
}

func TestSessionRepository_RemoveMemberAllowsRejoin(t *testing.T) {
	conn := newTestDB(t)
	repo := NewSessionRepository(conn)
	host := createTestUser(t, conn, "host")
	guest := createTestUser(t, conn, "guest")
	course := createTestCourse(t, conn, 3)
	session := createTestSession(t, repo, host.ID, course.ID, "CCC333")

	require.NoError(t, repo.AddMember(session.ID, guest.ID))
	require.NoError(t, repo.RemoveMember(session.ID, guest.ID))

	member, err := repo.FindMember(session.ID, guest.ID)
	require.NoError(t, err)
	assert.Nil(t, member)

	// The membership row is hard deleted, so the same key can be
	// inserted again.
	require.NoError(t, repo.AddMember(session.ID, guest.ID))
}

func TestSessionRepository_StartWithRounds(t *testing.T) {
	conn := newTestDB(t)
	repo := NewSessionRepository(conn)
	roundRepo := NewRoundRepository(conn)
	host := createTestUser(t, conn, "host")
	guest := createTestUser(t, conn, "guest")
	course := createTestCourse(t, conn, 3)
	session := createTestSession(t, repo, host.ID, course.ID, "DDD444")
	require.NoError(t, repo.AddMember(session.ID, guest.ID))

	now := time.Now()
	rounds := []model.Round{
		{UserID: host.ID, CourseID: course.ID, SessionID: &session.ID, Status: model.RoundInProgress, StartedAt: now},
		{UserID: guest.ID, CourseID: course.ID, SessionID: &session.ID, Status: model.RoundInProgress, StartedAt: now},
	}
	require.NoError(t, repo.StartWithRounds(session, rounds))

	refreshed, err := repo.FindByID(session.ID)
	require.NoError(t, err)
	require.NotNil(t, refreshed)
	assert.Equal(t, model.SessionInProgress, refreshed.Status)
	assert.NotNil(t, refreshed.StartedAt)

	sessionRounds, err := roundRepo.FindBySession(session.ID)
	require.NoError(t, err)
	assert.Len(t, sessionRounds, 2)
}
