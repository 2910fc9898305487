package service

import (
	"context"
	"time"

	"go-fairway/internal/apperr"
	"go-fairway/internal/cache"
	"go-fairway/internal/event"
	"go-fairway/internal/interfaces"
	"go-fairway/internal/model"
	"go-fairway/internal/queue"
	"go-fairway/internal/repository"
	"go-fairway/pkg/logger"

	"go.uber.org/zap"
)

// RoundService owns the round lifecycle and the score upsert +
// aggregate recompute path.
type RoundService struct {
	roundRepo   *repository.RoundRepository
	scoreRepo   *repository.ScoreRepository
	courseRepo  *repository.CourseRepository
	sessionRepo *repository.SessionRepository
	userRepo    *repository.UserRepository
	hub         interfaces.ConnectionManager
	leaderboard *cache.LeaderboardCache
	publisher   *queue.Publisher
}

func NewRoundService(
	roundRepo *repository.RoundRepository,
	scoreRepo *repository.ScoreRepository,
	courseRepo *repository.CourseRepository,
	sessionRepo *repository.SessionRepository,
	userRepo *repository.UserRepository,
	hub interfaces.ConnectionManager,
	leaderboard *cache.LeaderboardCache,
	publisher *queue.Publisher,
) *RoundService {
	return &RoundService{
		roundRepo:   roundRepo,
		scoreRepo:   scoreRepo,
		courseRepo:  courseRepo,
		sessionRepo: sessionRepo,
		userRepo:    userRepo,
		hub:         hub,
		leaderboard: leaderboard,
		publisher:   publisher,
	}
}

type CreateRoundRequest struct {
	CourseID  uint  `json:"course_id" binding:"required"`
	SessionID *uint `json:"session_id"`
}

type SaveScoreRequest struct {
	HoleID     uint  `json:"hole_id" binding:"required"`
	Strokes    int   `json:"strokes" binding:"required"`
	Putts      *int  `json:"putts"`
	FairwayHit *bool `json:"fairway_hit"`
	GreenInReg *bool `json:"green_in_reg"`
	Penalties  int   `json:"penalties"`
}

// CreateRound starts a solo round, or a session-linked round when the
// caller participates in a live session on that course.
func (s *RoundService) CreateRound(userID uint, req CreateRoundRequest) (*model.Round, error) {
	course, err := s.courseRepo.FindByID(req.CourseID)
	if err != nil {
		return nil, err
	}
	if course == nil {
		return nil, apperr.New(apperr.NotFound, "course not found")
	}

	if req.SessionID != nil {
		session, err := s.sessionRepo.FindByID(*req.SessionID)
		if err != nil {
			return nil, err
		}
		if session == nil {
			return nil, apperr.New(apperr.NotFound, "session not found")
		}
		if session.Status.Terminal() {
			return nil, apperr.New(apperr.InvalidState, "session has ended")
		}
		member, err := s.sessionRepo.FindMember(session.ID, userID)
		if err != nil {
			return nil, err
		}
		if member == nil && session.HostID != userID {
			return nil, apperr.New(apperr.Forbidden, "you are not in this session")
		}
	}

	round := &model.Round{
		UserID:    userID,
		CourseID:  req.CourseID,
		SessionID: req.SessionID,
		Status:    model.RoundInProgress,
		StartedAt: time.Now(),
	}
	if err := s.roundRepo.Create(round); err != nil {
		return nil, err
	}
	return round, nil
}

func (s *RoundService) GetRound(roundID, userID uint) (*model.Round, error) {
	round, err := s.roundRepo.FindByIDWithScores(roundID)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, apperr.New(apperr.NotFound, "round not found")
	}
	if round.UserID != userID {
		return nil, apperr.New(apperr.Forbidden, "not your round")
	}
	return round, nil
}

func (s *RoundService) ListUserRounds(userID uint, limit, offset int) ([]model.Round, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.roundRepo.FindByUser(userID, limit, offset)
}

// SaveScore upserts the caller's score for one hole and then
// recomputes all four round aggregates from scratch. The upsert and
// the recompute are separate writes with no shared transaction; a
// concurrent save can briefly publish a stale aggregate, which the
// next save corrects.
func (s *RoundService) SaveScore(roundID, userID uint, req SaveScoreRequest) (*model.Round, error) {
	round, err := s.roundRepo.FindByID(roundID)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, apperr.New(apperr.NotFound, "round not found")
	}
	if round.UserID != userID {
		return nil, apperr.New(apperr.Forbidden, "not your round")
	}
	if round.Status != model.RoundInProgress {
		return nil, apperr.New(apperr.InvalidState, "round is no longer in progress")
	}

	hole, err := s.courseRepo.FindHole(req.HoleID)
	if err != nil {
		return nil, err
	}
	if hole == nil || hole.CourseID != round.CourseID {
		return nil, apperr.New(apperr.InvalidInput, "hole does not belong to this round's course")
	}
	if req.Strokes < 1 || req.Strokes > 20 {
		return nil, apperr.New(apperr.InvalidInput, "strokes must be between 1 and 20")
	}
	if req.Putts != nil && (*req.Putts < 0 || *req.Putts > 10) {
		return nil, apperr.New(apperr.InvalidInput, "putts must be between 0 and 10")
	}
	if req.Penalties < 0 {
		return nil, apperr.New(apperr.InvalidInput, "penalties cannot be negative")
	}

	score := &model.Score{
		RoundID:    roundID,
		HoleID:     req.HoleID,
		UserID:     userID,
		Strokes:    req.Strokes,
		Putts:      req.Putts,
		FairwayHit: req.FairwayHit,
		GreenInReg: req.GreenInReg,
		Penalties:  req.Penalties,
	}
	if err := s.scoreRepo.Upsert(score); err != nil {
		return nil, err
	}

	totals, holesDone, err := s.recomputeAggregates(roundID)
	if err != nil {
		return nil, err
	}

	round.TotalScore = totals.score
	round.TotalPutts = totals.putts
	round.FairwaysHit = totals.fairways
	round.GreensInReg = totals.greens

	if round.SessionID != nil {
		s.leaderboard.Invalidate(context.Background(), *round.SessionID)
		s.broadcast(event.New(event.TypeScoreUpdate, *round.SessionID, event.ScoreUpdatePayload{
			RoundID:    roundID,
			UserID:     userID,
			HoleNumber: hole.Number,
			Strokes:    req.Strokes,
			TotalScore: totals.score,
			HolesDone:  holesDone,
		}))
	}

	return round, nil
}

type aggregates struct {
	score    int
	putts    int
	fairways int
	greens   int
}

// recomputeAggregates rescans every score of the round and persists
// the derived totals. Recompute-from-scratch trades write cost for
// drift-free aggregates; there are no incremental counters to get out
// of sync with an upsert overwrite.
func (s *RoundService) recomputeAggregates(roundID uint) (aggregates, int, error) {
	scores, err := s.scoreRepo.FindByRound(roundID)
	if err != nil {
		return aggregates{}, 0, err
	}

	var totals aggregates
	for _, sc := range scores {
		totals.score += sc.Strokes
		if sc.Putts != nil {
			totals.putts += *sc.Putts
		}
		if sc.FairwayHit != nil && *sc.FairwayHit && sc.Hole.Par >= 4 {
			totals.fairways++
		}
		if sc.GreenInReg != nil && *sc.GreenInReg {
			totals.greens++
		}
	}

	err = s.roundRepo.UpdateAggregates(roundID, totals.score, totals.putts, totals.fairways, totals.greens)
	return totals, len(scores), err
}

// CompleteRound finalizes the round and, when it belongs to a
// session, checks whether every member round is now terminal; if so
// the session auto-completes. This path and SessionService.End can
// both flip a session to COMPLETED; there is no fencing between them,
// the first committed write wins.
func (s *RoundService) CompleteRound(roundID, userID uint) (*model.Round, error) {
	round, err := s.roundRepo.FindByID(roundID)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, apperr.New(apperr.NotFound, "round not found")
	}
	if round.UserID != userID {
		return nil, apperr.New(apperr.Forbidden, "not your round")
	}
	if round.Status != model.RoundInProgress {
		return nil, apperr.New(apperr.InvalidState, "round is no longer in progress")
	}

	totals, _, err := s.recomputeAggregates(roundID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.roundRepo.UpdateStatus(roundID, model.RoundCompleted,
		map[string]interface{}{"completed_at": now}); err != nil {
		return nil, err
	}

	round.Status = model.RoundCompleted
	round.CompletedAt = &now
	round.TotalScore = totals.score
	round.TotalPutts = totals.putts
	round.FairwaysHit = totals.fairways
	round.GreensInReg = totals.greens

	s.publishRoundCompleted(round, now)

	if round.SessionID != nil {
		if err := s.maybeCompleteSession(*round.SessionID); err != nil {
			logger.L.Warn("Session auto-completion check failed",
				zap.Uint("sessionID", *round.SessionID), zap.Error(err))
		}
	}

	return round, nil
}

// AbandonRound marks the round ABANDONED. An abandoned round counts
// as done for the session auto-completion check, so a session never
// hangs IN_PROGRESS because one player quit.
func (s *RoundService) AbandonRound(roundID, userID uint) (*model.Round, error) {
	round, err := s.roundRepo.FindByID(roundID)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, apperr.New(apperr.NotFound, "round not found")
	}
	if round.UserID != userID {
		return nil, apperr.New(apperr.Forbidden, "not your round")
	}
	if round.Status.Terminal() {
		return nil, apperr.New(apperr.InvalidState, "round has already ended")
	}

	if err := s.roundRepo.UpdateStatus(roundID, model.RoundAbandoned, nil); err != nil {
		return nil, err
	}
	round.Status = model.RoundAbandoned

	if round.SessionID != nil {
		if err := s.maybeCompleteSession(*round.SessionID); err != nil {
			logger.L.Warn("Session auto-completion check failed",
				zap.Uint("sessionID", *round.SessionID), zap.Error(err))
		}
	}

	return round, nil
}

// maybeCompleteSession flips the session to COMPLETED once every
// member round is terminal. Read-then-act without a lock: racing
// completions both observe "all done" and write the same status.
func (s *RoundService) maybeCompleteSession(sessionID uint) error {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return err
	}
	if session == nil || session.Status != model.SessionInProgress {
		return nil
	}

	rounds, err := s.roundRepo.FindBySession(sessionID)
	if err != nil {
		return err
	}
	if len(rounds) == 0 {
		return nil
	}
	for _, r := range rounds {
		if !r.Status.Terminal() {
			return nil
		}
	}

	now := time.Now()
	if err := s.sessionRepo.UpdateStatus(sessionID, model.SessionCompleted,
		map[string]interface{}{"ended_at": now}); err != nil {
		return err
	}

	s.broadcast(event.New(event.TypeSessionEnded, sessionID, event.SessionEndedPayload{
		Status: string(model.SessionCompleted),
		Reason: "all_rounds_done",
	}))

	if s.publisher != nil {
		ev := queue.SessionCompletedEvent{
			SessionID:   session.ID,
			HostID:      session.HostID,
			CourseID:    session.CourseID,
			InviteCode:  session.InviteCode,
			MemberCount: len(session.Members),
			Reason:      "all_rounds_done",
			CompletedAt: now.UTC().Format(time.RFC3339),
		}
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.publisher.PublishSessionCompleted(ctx, ev)
		}()
	}
	return nil
}

func (s *RoundService) publishRoundCompleted(round *model.Round, at time.Time) {
	if s.publisher == nil {
		return
	}
	full, err := s.roundRepo.FindByIDWithScores(round.ID)
	if err != nil || full == nil {
		return
	}
	username := ""
	if user, err := s.userRepo.FindByID(round.UserID); err == nil && user != nil {
		username = user.Username
	}
	ev := queue.RoundCompletedEvent{
		RoundID:     round.ID,
		UserID:      round.UserID,
		Username:    username,
		CourseID:    round.CourseID,
		CourseName:  full.Course.Name,
		SessionID:   round.SessionID,
		TotalScore:  round.TotalScore,
		TotalPutts:  round.TotalPutts,
		CompletedAt: at.UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.publisher.PublishRoundCompleted(ctx, ev)
	}()
}

func (s *RoundService) broadcast(ev *event.Event) {
	if s.hub == nil {
		return
	}
	if err := s.hub.Publish(ev); err != nil {
		logger.L.Warn("Failed to publish round event",
			zap.String("type", ev.Type),
			zap.Uint("sessionID", ev.SessionID),
			zap.Error(err))
	}
}
