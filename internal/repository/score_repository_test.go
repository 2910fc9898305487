package repository

import (
	"testing"

	"go-fairway/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreRepository_UpsertOverwrites(t *testing.T) {
	conn := newTestDB(t)
	repo := NewScoreRepository(conn)
	user := createTestUser(t, conn, "player")
	course := createTestCourse(t, conn, 3)
	round := createTestRound(t, conn, user.ID, course.ID, nil)
	hole := course.Holes[0]

	putts := 2
	require.NoError(t, repo.Upsert(&model.Score{
		RoundID: round.ID,
		HoleID:  hole.ID,
		UserID:  user.ID,
		Strokes: 5,
		Putts:   &putts,
	}))

	// Resubmitting the same (round, hole, user) triple must overwrite
	// the row, not add a second one.
	require.NoError(t, repo.Upsert(&model.Score{
		RoundID: round.ID,
		HoleID:  hole.ID,
		UserID:  user.ID,
		Strokes: 4,
	}))

	count, err := repo.CountByRound(round.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	scores, err := repo.FindByRound(round.ID)
	require.NoError(t, err)
	require.Len(t, scores, 1)
	assert.Equal(t, 4, scores[0].Strokes)
	assert.Nil(t, scores[0].Putts, "overwrite clears fields the second submission omitted")
}

func TestScoreRepository_FindByRoundOrdersByHoleNumber(t *testing.T) {
	conn := newTestDB(t)
	repo := NewScoreRepository(conn)
	user := createTestUser(t, conn, "player")
	course := createTestCourse(t, conn, 3)
	round := createTestRound(t, conn, user.ID, course.ID, nil)

	// Insert out of order.
	for _, i := range []int{2, 0, 1} {
		require.NoError(t, repo.Upsert(&model.Score{
			RoundID: round.ID,
			HoleID:  course.Holes[i].ID,
			UserID:  user.ID,
			Strokes: 4,
		}))
	}

	scores, err := repo.FindByRound(round.ID)
	require.NoError(t, err)
	require.Len(t, scores, 3)
	for i, sc := range scores {
		assert.Equal(t, i+1, sc.Hole.Number)
	}
}
