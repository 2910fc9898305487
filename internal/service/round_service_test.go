package service

import (
	"testing"

	"go-fairway/internal/apperr"
	"go-fairway/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundService_CreateSoloRound(t *testing.T) {
	env := newTestEnv(t)
	userID := env.registerUser(t, "solo")
	courseID := env.createCourse(t)

	round, err := env.rounds.CreateRound(userID, CreateRoundRequest{CourseID: courseID})
	require.NoError(t, err)
	assert.Equal(t, model.RoundInProgress, round.Status)
	assert.Nil(t, round.SessionID)

	_, err = env.rounds.CreateRound(userID, CreateRoundRequest{CourseID: 9999})
	assert.True(t, apperr.Is(err, apperr.NotFound), "got %v", err)
}

func TestRoundService_CreateSessionRoundRequiresMembership(t *testing.T) {
	env := newTestEnv(t)
	sessionID, userIDs, _ := env.startedSession(t, "host", "guest")
	outsiderID := env.registerUser(t, "outsider")
	courseID := sessionCourseID(t, env, sessionID)

	_, err := env.rounds.CreateRound(outsiderID, CreateRoundRequest{CourseID: courseID, SessionID: &sessionID})
	assert.True(t, apperr.Is(err, apperr.Forbidden), "got %v", err)

	_, err = env.rounds.CreateRound(userIDs[1], CreateRoundRequest{CourseID: courseID, SessionID: &sessionID})
	require.NoError(t, err)

	// Once the session ends no further rounds can attach to it.
	_, err = env.sessions.End(sessionID, userIDs[0])
	require.NoError(t, err)
	_, err = env.rounds.CreateRound(userIDs[1], CreateRoundRequest{CourseID: courseID, SessionID: &sessionID})
	assert.True(t, apperr.Is(err, apperr.InvalidState), "got %v", err)
}

func TestRoundService_SaveScoreValidation(t *testing.T) {
	env := newTestEnv(t)
	userID := env.registerUser(t, "player")
	otherID := env.registerUser(t, "other")
	courseID := env.createCourse(t)
	holes, err := env.courses.EnsureHoles(courseID)
	require.NoError(t, err)

	otherCourseID := env.createCourse(t)
	otherHoles, err := env.courses.EnsureHoles(otherCourseID)
	require.NoError(t, err)

	round, err := env.rounds.CreateRound(userID, CreateRoundRequest{CourseID: courseID})
	require.NoError(t, err)

	tests := []struct {
		name     string
		caller   uint
		req      SaveScoreRequest
		wantKind apperr.Kind
	}{
		{
			name:     "not the owner",
			caller:   otherID,
			req:      SaveScoreRequest{HoleID: holes[0].ID, Strokes: 4},
			wantKind: apperr.Forbidden,
		},
		{
			name:     "hole from another course",
			caller:   userID,
			req:      SaveScoreRequest{HoleID: otherHoles[0].ID, Strokes: 4},
			wantKind: apperr.InvalidInput,
		},
		{
			name:     "zero strokes",
			caller:   userID,
			req:      SaveScoreRequest{HoleID: holes[0].ID, Strokes: 0},
			wantKind: apperr.InvalidInput,
		},
		{
			name:     "strokes above cap",
			caller:   userID,
			req:      SaveScoreRequest{HoleID: holes[0].ID, Strokes: 21},
			wantKind: apperr.InvalidInput,
		},
		{
			name:     "negative putts",
			caller:   userID,
			req:      SaveScoreRequest{HoleID: holes[0].ID, Strokes: 4, Putts: intPtr(-1)},
			wantKind: apperr.InvalidInput,
		},
		{
			name:     "negative penalties",
			caller:   userID,
			req:      SaveScoreRequest{HoleID: holes[0].ID, Strokes: 4, Penalties: -1},
			wantKind: apperr.InvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.rounds.SaveScore(round.ID, tt.caller, tt.req)
			assert.True(t, apperr.Is(err, tt.wantKind), "got %v", err)
		})
	}

	// Scores are rejected once the round is terminal.
	_, err = env.rounds.CompleteRound(round.ID, userID)
	require.NoError(t, err)
	_, err = env.rounds.SaveScore(round.ID, userID, SaveScoreRequest{HoleID: holes[0].ID, Strokes: 4})
	assert.True(t, apperr.Is(err, apperr.InvalidState), "got %v", err)
}

func TestRoundService_SaveScoreRecomputesAggregates(t *testing.T) {
	env := newTestEnv(t)
	userID := env.registerUser(t, "player")
	courseID := env.createCourse(t)
	holes, err := env.courses.EnsureHoles(courseID)
	require.NoError(t, err)

	round, err := env.rounds.CreateRound(userID, CreateRoundRequest{CourseID: courseID})
	require.NoError(t, err)

	// Hole 1 is par 4, hole 2 is par 3 in the default layout.
	updated, err := env.rounds.SaveScore(round.ID, userID, SaveScoreRequest{
		HoleID:     holes[0].ID,
		Strokes:    5,
		Putts:      intPtr(2),
		FairwayHit: boolPtr(true),
		GreenInReg: boolPtr(false),
	})
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TotalScore)
	assert.Equal(t, 2, updated.TotalPutts)
	assert.Equal(t, 1, updated.FairwaysHit)

	// A fairway flag on a par 3 must not count.
	updated, err = env.rounds.SaveScore(round.ID, userID, SaveScoreRequest{
		HoleID:     holes[1].ID,
		Strokes:    3,
		Putts:      intPtr(1),
		FairwayHit: boolPtr(true),
		GreenInReg: boolPtr(true),
	})
	require.NoError(t, err)
	assert.Equal(t, 8, updated.TotalScore)
	assert.Equal(t, 3, updated.TotalPutts)
	assert.Equal(t, 1, updated.FairwaysHit)
	assert.Equal(t, 1, updated.GreensInReg)

	// Correcting hole 1 overwrites, never double counts.
	updated, err = env.rounds.SaveScore(round.ID, userID, SaveScoreRequest{
		HoleID:  holes[0].ID,
		Strokes: 4,
		Putts:   intPtr(1),
	})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.TotalScore)
	assert.Equal(t, 2, updated.TotalPutts)
	assert.Equal(t, 0, updated.FairwaysHit, "resubmission omitted the fairway flag")

	full, err := env.rounds.GetRound(round.ID, userID)
	require.NoError(t, err)
	assert.Len(t, full.Scores, 2)
	assert.Equal(t, 7, full.TotalScore)
}

func TestRoundService_CompleteRoundAutoCompletesSession(t *testing.T) {
	env := newTestEnv(t)
	sessionID, userIDs, roundByUser := env.startedSession(t, "host", "guest")
	hostID, guestID := userIDs[0], userIDs[1]

	completed, err := env.rounds.CompleteRound(roundByUser[hostID], hostID)
	require.NoError(t, err)
	assert.Equal(t, model.RoundCompleted, completed.Status)
	assert.NotNil(t, completed.CompletedAt)

	session, err := env.sessions.Get(sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionInProgress, session.Status, "one round still open")

	_, err = env.rounds.CompleteRound(roundByUser[guestID], guestID)
	require.NoError(t, err)

	session, err = env.sessions.Get(sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, session.Status)
	assert.NotNil(t, session.EndedAt)
}

func TestRoundService_AbandonedRoundCountsAsDone(t *testing.T) {
	env := newTestEnv(t)
	sessionID, userIDs, roundByUser := env.startedSession(t, "host", "guest")
	hostID, guestID := userIDs[0], userIDs[1]

	abandoned, err := env.rounds.AbandonRound(roundByUser[guestID], guestID)
	require.NoError(t, err)
	assert.Equal(t, model.RoundAbandoned, abandoned.Status)

	_, err = env.rounds.AbandonRound(roundByUser[guestID], guestID)
	assert.True(t, apperr.Is(err, apperr.InvalidState), "already terminal, got %v", err)

	// The session does not hang waiting on a quitter.
	_, err = env.rounds.CompleteRound(roundByUser[hostID], hostID)
	require.NoError(t, err)

	session, err := env.sessions.Get(sessionID)
	require.NoError(t, err)
	assert.Equal(t, model.SessionCompleted, session.Status)
}

func TestRoundService_OwnershipChecks(t *testing.T) {
	env := newTestEnv(t)
	userID := env.registerUser(t, "player")
	otherID := env.registerUser(t, "other")
	courseID := env.createCourse(t)

	round, err := env.rounds.CreateRound(userID, CreateRoundRequest{CourseID: courseID})
	require.NoError(t, err)

	_, err = env.rounds.GetRound(round.ID, otherID)
	assert.True(t, apperr.Is(err, apperr.Forbidden), "got %v", err)

	_, err = env.rounds.CompleteRound(round.ID, otherID)
	assert.True(t, apperr.Is(err, apperr.Forbidden), "got %v", err)

	_, err = env.rounds.AbandonRound(round.ID, otherID)
	assert.True(t, apperr.Is(err, apperr.Forbidden), "got %v", err)

	_, err = env.rounds.GetRound(9999, userID)
	assert.True(t, apperr.Is(err, apperr.NotFound), "got %v", err)
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }
