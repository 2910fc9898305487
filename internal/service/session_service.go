package service

import (
	"context"
	"sort"
	"time"

	"go-fairway/internal/apperr"
	"go-fairway/internal/cache"
	"go-fairway/internal/event"
	"go-fairway/internal/interfaces"
	"go-fairway/internal/model"
	"go-fairway/internal/queue"
	"go-fairway/internal/repository"
	"go-fairway/pkg/logger"
	"go-fairway/pkg/utils"

	"go.uber.org/zap"
)

// inviteCodeMaxAttempts bounds the redraw loop. The code space
// (36^6) dwarfs session volume so hitting the cap means something is
// badly wrong, not bad luck.
const inviteCodeMaxAttempts = 10

// SessionService drives the group session lifecycle:
// WAITING -> IN_PROGRESS -> COMPLETED, with CANCELLED reachable from
// either non-terminal state.
type SessionService struct {
	sessionRepo   *repository.SessionRepository
	roundRepo     *repository.RoundRepository
	courseService *CourseService
	hub           interfaces.ConnectionManager
	leaderboard   *cache.LeaderboardCache
	publisher     *queue.Publisher
}

func NewSessionService(
	sessionRepo *repository.SessionRepository,
	roundRepo *repository.RoundRepository,
	courseService *CourseService,
	hub interfaces.ConnectionManager,
	leaderboard *cache.LeaderboardCache,
	publisher *queue.Publisher,
) *SessionService {
	return &SessionService{
		sessionRepo:   sessionRepo,
		roundRepo:     roundRepo,
		courseService: courseService,
		hub:           hub,
		leaderboard:   leaderboard,
		publisher:     publisher,
	}
}

type CreateSessionRequest struct {
	CourseID   uint   `json:"course_id" binding:"required"`
	Name       string `json:"name" binding:"max=100"`
	MaxPlayers int    `json:"max_players"`
}

type JoinSessionRequest struct {
	InviteCode string `json:"invite_code" binding:"required"`
}

type SetReadyRequest struct {
	IsReady bool `json:"is_ready"`
}

// Create opens a new WAITING lobby with the host as its first member.
// The one-active-session-per-host rule is a lookup-then-create check:
// advisory under concurrent creates, not a hard guarantee.
func (s *SessionService) Create(hostID uint, req CreateSessionRequest) (*model.GroupSession, error) {
	if _, err := s.courseService.GetCourse(req.CourseID); err != nil {
		return nil, err
	}

	active, err := s.sessionRepo.FindActiveByHost(hostID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, apperr.New(apperr.Conflict, "you already have an active session")
	}

	maxPlayers := req.MaxPlayers
	if maxPlayers <= 0 {
		maxPlayers = 4
	}

	code, err := s.generateInviteCode()
	if err != nil {
		return nil, err
	}

	session := &model.GroupSession{
		Name:       req.Name,
		HostID:     hostID,
		CourseID:   req.CourseID,
		InviteCode: code,
		MaxPlayers: maxPlayers,
		Status:     model.SessionWaiting,
	}
	if err := s.sessionRepo.Create(session); err != nil {
		return nil, err
	}

	return s.Get(session.ID)
}

func (s *SessionService) generateInviteCode() (string, error) {
	for i := 0; i < inviteCodeMaxAttempts; i++ {
		code := utils.NewInviteCode()
		taken, err := s.sessionRepo.InviteCodeExists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", apperr.New(apperr.Conflict, "could not allocate an invite code")
}

func (s *SessionService) Get(sessionID uint) (*model.GroupSession, error) {
	session, err := s.sessionRepo.FindByID(sessionID)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.New(apperr.NotFound, "session not found")
	}
	return session, nil
}

// Join adds the user to a WAITING lobby by invite code. A duplicate
// join is rejected with Conflict rather than silently succeeding;
// callers that want idempotency check membership first.
func (s *SessionService) Join(userID uint, req JoinSessionRequest) (*model.GroupSession, error) {
	code := utils.NormalizeInviteCode(req.InviteCode)
	session, err := s.sessionRepo.FindByInviteCode(code)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, apperr.New(apperr.NotFound, "no session with that invite code")
	}
	if session.Status.Terminal() {
		return nil, apperr.New(apperr.InvalidState, "session has ended")
	}
	if session.Status != model.SessionWaiting {
		return nil, apperr.New(apperr.InvalidState, "session is not accepting new players")
	}

	member, err := s.sessionRepo.FindMember(session.ID, userID)
	if err != nil {
		return nil, err
	}
	if member != nil || session.HostID == userID {
		return nil, apperr.New(apperr.Conflict, "you are already in this session")
	}

	count, err := s.sessionRepo.CountMembers(session.ID)
	if err != nil {
		return nil, err
	}
	if count >= int64(session.MaxPlayers) {
		return nil, apperr.New(apperr.Full, "session is full")
	}

	if err := s.sessionRepo.AddMember(session.ID, userID); err != nil {
		return nil, err
	}

	result, err := s.Get(session.ID)
	if err != nil {
		return nil, err
	}
	s.broadcast(event.New(event.TypeMemberJoined, session.ID,
		memberPayload(result, userID)))
	return result, nil
}

// SetReady flips the member's ready flag and reports whether every
// member is now ready. The all-ready answer is a fresh scan, never a
// stored counter.
func (s *SessionService) SetReady(sessionID, userID uint, isReady bool) (bool, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return false, err
	}
	if session.Status != model.SessionWaiting {
		return false, apperr.New(apperr.InvalidState, "session is not in the lobby phase")
	}

	member, err := s.sessionRepo.FindMember(sessionID, userID)
	if err != nil {
		return false, err
	}
	if member == nil {
		return false, apperr.New(apperr.Forbidden, "you are not in this session")
	}

	if err := s.sessionRepo.SetMemberReady(sessionID, userID, isReady); err != nil {
		return false, err
	}

	allReady, err := s.sessionRepo.AllMembersReady(sessionID)
	if err != nil {
		return false, err
	}

	payload := memberPayload(session, userID)
	payload.IsReady = isReady
	s.broadcast(event.New(event.TypeMemberReady, sessionID, payload))

	return allReady, nil
}

// Start transitions a fully ready lobby to IN_PROGRESS, lazily
// seeding the course layout and creating one round per member. The
// round fan-out and the status flip share a transaction; the layout
// seed commits on its own beforehand.
func (s *SessionService) Start(sessionID, hostID uint) (*model.GroupSession, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID != hostID {
		return nil, apperr.New(apperr.Forbidden, "only the host can start the session")
	}
	if session.Status != model.SessionWaiting {
		return nil, apperr.New(apperr.InvalidState, "session has already started or ended")
	}

	allReady, err := s.sessionRepo.AllMembersReady(sessionID)
	if err != nil {
		return nil, err
	}
	if !allReady {
		return nil, apperr.New(apperr.Precondition, "not all players are ready")
	}

	if _, err := s.courseService.EnsureHoles(session.CourseID); err != nil {
		return nil, err
	}

	now := time.Now()
	rounds := make([]model.Round, 0, len(session.Members))
	for _, member := range session.Members {
		rounds = append(rounds, model.Round{
			UserID:    member.UserID,
			CourseID:  session.CourseID,
			SessionID: &session.ID,
			Status:    model.RoundInProgress,
			StartedAt: now,
		})
	}
	if err := s.sessionRepo.StartWithRounds(session, rounds); err != nil {
		return nil, err
	}

	roundIDs := make([]uint, 0, len(rounds))
	for _, r := range rounds {
		roundIDs = append(roundIDs, r.ID)
	}
	s.broadcast(event.New(event.TypeSessionStarted, sessionID, event.SessionStartedPayload{
		StartedBy: hostID,
		RoundIDs:  roundIDs,
	}))

	return s.Get(sessionID)
}

// End is the explicit host override: it completes the session without
// checking whether member rounds are finished. The organic completion
// path lives in RoundService.CompleteRound.
func (s *SessionService) End(sessionID, hostID uint) (*model.GroupSession, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID != hostID {
		return nil, apperr.New(apperr.Forbidden, "only the host can end the session")
	}
	if session.Status.Terminal() {
		return nil, apperr.New(apperr.InvalidState, "session has already ended")
	}

	now := time.Now()
	if err := s.sessionRepo.UpdateStatus(sessionID, model.SessionCompleted,
		map[string]interface{}{"ended_at": now}); err != nil {
		return nil, err
	}

	s.broadcast(event.New(event.TypeSessionEnded, sessionID, event.SessionEndedPayload{
		Status: string(model.SessionCompleted),
		Reason: "host_ended",
	}))
	s.publishSessionCompleted(session, "host_ended", now)

	return s.Get(sessionID)
}

func (s *SessionService) Cancel(sessionID, hostID uint) (*model.GroupSession, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	if session.HostID != hostID {
		return nil, apperr.New(apperr.Forbidden, "only the host can cancel the session")
	}
	if session.Status == model.SessionCompleted {
		return nil, apperr.New(apperr.InvalidState, "session is already completed")
	}
	if session.Status == model.SessionCancelled {
		return nil, apperr.New(apperr.InvalidState, "session is already cancelled")
	}

	if err := s.sessionRepo.UpdateStatus(sessionID, model.SessionCancelled,
		map[string]interface{}{"ended_at": time.Now()}); err != nil {
		return nil, err
	}

	s.broadcast(event.New(event.TypeSessionEnded, sessionID, event.SessionEndedPayload{
		Status: string(model.SessionCancelled),
		Reason: "host_cancelled",
	}))

	return s.Get(sessionID)
}

// Leave removes a member from a WAITING lobby. The host can never
// leave (cancel instead), and nobody leaves once play has started.
func (s *SessionService) Leave(sessionID, userID uint) error {
	session, err := s.Get(sessionID)
	if err != nil {
		return err
	}
	if session.HostID == userID {
		return apperr.New(apperr.Forbidden, "the host cannot leave; cancel the session instead")
	}
	if session.Status == model.SessionInProgress {
		return apperr.New(apperr.InvalidState, "cannot leave a session that is in progress")
	}

	member, err := s.sessionRepo.FindMember(sessionID, userID)
	if err != nil {
		return err
	}
	if member == nil {
		return apperr.New(apperr.NotFound, "you are not in this session")
	}

	if err := s.sessionRepo.RemoveMember(sessionID, userID); err != nil {
		return err
	}

	s.broadcast(event.New(event.TypeMemberLeft, sessionID,
		memberPayload(session, userID)))
	return nil
}

// Leaderboard returns current standings for a session, computed from
// the member rounds' derived aggregates and briefly cached in redis.
// Only participants may read it.
func (s *SessionService) Leaderboard(ctx context.Context, sessionID, userID uint) ([]cache.LeaderboardEntry, error) {
	session, err := s.Get(sessionID)
	if err != nil {
		return nil, err
	}
	member, err := s.sessionRepo.FindMember(sessionID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, apperr.New(apperr.Forbidden, "you are not in this session")
	}

	if entries, ok := s.leaderboard.Get(ctx, sessionID); ok {
		return entries, nil
	}

	rounds, err := s.roundRepo.FindBySession(sessionID)
	if err != nil {
		return nil, err
	}

	holes, err := s.courseService.EnsureHoles(session.CourseID)
	if err != nil {
		return nil, err
	}
	parByHole := make(map[uint]int, len(holes))
	for _, h := range holes {
		parByHole[h.ID] = h.Par
	}

	entries := make([]cache.LeaderboardEntry, 0, len(rounds))
	for _, round := range rounds {
		full, err := s.roundRepo.FindByIDWithScores(round.ID)
		if err != nil {
			return nil, err
		}
		parPlayed := 0
		for _, sc := range full.Scores {
			parPlayed += parByHole[sc.HoleID]
		}
		entries = append(entries, cache.LeaderboardEntry{
			UserID:       round.UserID,
			Username:     round.User.Username,
			DisplayName:  round.User.DisplayName,
			RoundID:      round.ID,
			RoundStatus:  string(round.Status),
			HolesPlayed:  len(full.Scores),
			TotalStrokes: full.TotalScore,
			ParPlayed:    parPlayed,
			ToPar:        full.TotalScore - parPlayed,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ToPar != entries[j].ToPar {
			return entries[i].ToPar < entries[j].ToPar
		}
		return entries[i].HolesPlayed > entries[j].HolesPlayed
	})

	s.leaderboard.Set(ctx, sessionID, entries)
	return entries, nil
}

// ChannelToken mints a realtime capability token bound to the caller
// and this one session channel.
func (s *SessionService) ChannelToken(sessionID, userID uint) (string, error) {
	if _, err := s.Get(sessionID); err != nil {
		return "", err
	}
	member, err := s.sessionRepo.FindMember(sessionID, userID)
	if err != nil {
		return "", err
	}
	if member == nil {
		return "", apperr.New(apperr.Forbidden, "you are not in this session")
	}
	return utils.GenerateChannelToken(userID, sessionID)
}

// IsMember is used by the websocket attach path to re-check current
// membership after token verification.
func (s *SessionService) IsMember(sessionID, userID uint) (bool, error) {
	member, err := s.sessionRepo.FindMember(sessionID, userID)
	if err != nil {
		return false, err
	}
	return member != nil, nil
}

func (s *SessionService) broadcast(ev *event.Event) {
	if s.hub == nil {
		return
	}
	if err := s.hub.Publish(ev); err != nil {
		logger.L.Warn("Failed to publish session event",
			zap.String("type", ev.Type),
			zap.Uint("sessionID", ev.SessionID),
			zap.Error(err))
	}
}

func (s *SessionService) publishSessionCompleted(session *model.GroupSession, reason string, at time.Time) {
	if s.publisher == nil {
		return
	}
	ev := queue.SessionCompletedEvent{
		SessionID:   session.ID,
		HostID:      session.HostID,
		CourseID:    session.CourseID,
		InviteCode:  session.InviteCode,
		MemberCount: len(session.Members),
		Reason:      reason,
		CompletedAt: at.UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.publisher.PublishSessionCompleted(ctx, ev)
	}()
}

func memberPayload(session *model.GroupSession, userID uint) event.MemberPayload {
	payload := event.MemberPayload{UserID: userID}
	for _, m := range session.Members {
		if m.UserID == userID {
			payload.DisplayName = m.User.DisplayName
			break
		}
	}
	return payload
}
