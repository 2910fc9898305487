package service

import (
	"testing"

	"go-fairway/internal/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsService_RoundStats(t *testing.T) {
	env := newTestEnv(t)
	userID := env.registerUser(t, "player")
	otherID := env.registerUser(t, "other")
	courseID := env.createCourse(t)
	holes, err := env.courses.EnsureHoles(courseID)
	require.NoError(t, err)

	round, err := env.rounds.CreateRound(userID, CreateRoundRequest{CourseID: courseID})
	require.NoError(t, err)

	// Default layout: hole 1 par 4, hole 2 par 3, hole 3 par 5.
	type entry struct {
		hole    int
		strokes int
		putts   int
		fairway *bool
		green   *bool
		pen     int
	}
	entries := []entry{
		{hole: 0, strokes: 5, putts: 2, fairway: boolPtr(true), green: boolPtr(false)},          // bogey
		{hole: 1, strokes: 2, putts: 1, green: boolPtr(true)},                                   // birdie
		{hole: 2, strokes: 3, putts: 1, fairway: boolPtr(false), green: boolPtr(true)},          // eagle
		{hole: 3, strokes: 4, putts: 2, fairway: boolPtr(true), green: boolPtr(true)},           // par
		{hole: 4, strokes: 6, putts: 3, fairway: boolPtr(false), green: boolPtr(false), pen: 1}, // triple on par 3
	}
	for _, e := range entries {
		_, err := env.rounds.SaveScore(round.ID, userID, SaveScoreRequest{
			HoleID:     holes[e.hole].ID,
			Strokes:    e.strokes,
			Putts:      intPtr(e.putts),
			FairwayHit: e.fairway,
			GreenInReg: e.green,
			Penalties:  e.pen,
		})
		require.NoError(t, err)
	}

	stats, err := env.stats.RoundStats(round.ID, userID)
	require.NoError(t, err)

	assert.Equal(t, 5, stats.HolesPlayed)
	assert.Equal(t, 20, stats.TotalScore)
	// Pars played: 4+3+5+4+3 = 19.
	assert.Equal(t, 1, stats.ToPar)

	assert.Equal(t, 1, stats.Breakdown.Eagles)
	assert.Equal(t, 1, stats.Breakdown.Birdies)
	assert.Equal(t, 1, stats.Breakdown.Pars)
	assert.Equal(t, 1, stats.Breakdown.Bogeys)
	assert.Equal(t, 1, stats.Breakdown.WorseThanDouble)

	// Fairway chances only exist on par 4+ holes with the flag set:
	// three chances here, two hit. The flag on the par 3 is ignored.
	assert.InDelta(t, 100.0*2/3, stats.FairwayPct, 0.01)
	assert.InDelta(t, 100.0*3/5, stats.GreensInRegPct, 0.01)
	assert.InDelta(t, 9.0/5, stats.PuttsPerHole, 0.01)
	assert.Equal(t, 1, stats.TotalPenalties)

	assert.InDelta(t, 4.5, stats.AvgByPar[4], 0.01)
	assert.InDelta(t, 4.0, stats.AvgByPar[3], 0.01)
	assert.InDelta(t, 3.0, stats.AvgByPar[5], 0.01)

	_, err = env.stats.RoundStats(round.ID, otherID)
	assert.True(t, apperr.Is(err, apperr.Forbidden), "got %v", err)

	_, err = env.stats.RoundStats(9999, userID)
	assert.True(t, apperr.Is(err, apperr.NotFound), "got %v", err)
}

func TestStatsService_EmptyRound(t *testing.T) {
	env := newTestEnv(t)
	userID := env.registerUser(t, "player")
	courseID := env.createCourse(t)

	round, err := env.rounds.CreateRound(userID, CreateRoundRequest{CourseID: courseID})
	require.NoError(t, err)

	stats, err := env.stats.RoundStats(round.ID, userID)
	require.NoError(t, err)
	assert.Zero(t, stats.HolesPlayed)
	assert.Zero(t, stats.TotalScore)
	assert.Zero(t, stats.FairwayPct)
	assert.Zero(t, stats.PuttsPerHole)
	assert.Empty(t, stats.AvgByPar)
}
