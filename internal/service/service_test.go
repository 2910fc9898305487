package service

import (
	"testing"
	"time"

	"go-fairway/internal/repository"
	"go-fairway/pkg/config"
	"go-fairway/pkg/db"
	"go-fairway/pkg/logger"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// testEnv wires every service against one in-memory database. The
// hub, cache and queue are left nil so tests exercise pure domain
// logic; their paths degrade to no-ops.
type testEnv struct {
	conn *gorm.DB

	auth     *AuthService
	courses  *CourseService
	sessions *SessionService
	rounds   *RoundService
	stats    *StatsService
	friends  *FriendService
	chat     *ChatService

	userRepo    *repository.UserRepository
	sessionRepo *repository.SessionRepository
	roundRepo   *repository.RoundRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	if err := logger.InitLogger("debug", false); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	config.GlobalConfig.JWT.Secret = "test-secret"
	config.GlobalConfig.JWT.Expiration = time.Hour

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("Failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	userRepo := repository.NewUserRepository(conn)
	courseRepo := repository.NewCourseRepository(conn)
	sessionRepo := repository.NewSessionRepository(conn)
	roundRepo := repository.NewRoundRepository(conn)
	scoreRepo := repository.NewScoreRepository(conn)
	friendRepo := repository.NewFriendRepository(conn)
	messageRepo := repository.NewChatMessageRepository(conn)

	courses := NewCourseService(courseRepo)
	sessions := NewSessionService(sessionRepo, roundRepo, courses, nil, nil, nil)

	return &testEnv{
		conn:        conn,
		auth:        NewAuthService(userRepo),
		courses:     courses,
		sessions:    sessions,
		rounds:      NewRoundService(roundRepo, scoreRepo, courseRepo, sessionRepo, userRepo, nil, nil, nil),
		stats:       NewStatsService(roundRepo, scoreRepo),
		friends:     NewFriendService(friendRepo, userRepo),
		chat:        NewChatService(nil, messageRepo, sessionRepo, userRepo),
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		roundRepo:   roundRepo,
	}
}

func (e *testEnv) registerUser(t *testing.T, username string) uint {
	t.Helper()
	user, err := e.auth.Register(RegisterRequest{
		Username: username,
		Password: "password123",
		Email:    username + "@example.com",
	})
	if err != nil {
		t.Fatalf("Failed to register user %s: %v", username, err)
	}
	return user.ID
}

func (e *testEnv) createCourse(t *testing.T) uint {
	t.Helper()
	course, err := e.courses.CreateCourse(CreateCourseRequest{Name: "Pebble Creek"})
	if err != nil {
		t.Fatalf("Failed to create course: %v", err)
	}
	return course.ID
}

// startedSession registers the given users, creates a session hosted
// by the first, joins the rest, readies everyone and starts play. It
// returns the session ID, the user IDs in argument order, and each
// user's round ID keyed by user ID.
func (e *testEnv) startedSession(t *testing.T, usernames ...string) (uint, []uint, map[uint]uint) {
	t.Helper()

	userIDs := make([]uint, 0, len(usernames))
	for _, name := range usernames {
		userIDs = append(userIDs, e.registerUser(t, name))
	}
	courseID := e.createCourse(t)

	session, err := e.sessions.Create(userIDs[0], CreateSessionRequest{CourseID: courseID})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	for _, id := range userIDs[1:] {
		if _, err := e.sessions.Join(id, JoinSessionRequest{InviteCode: session.InviteCode}); err != nil {
			t.Fatalf("Failed to join session: %v", err)
		}
	}
	for _, id := range userIDs {
		if _, err := e.sessions.SetReady(session.ID, id, true); err != nil {
			t.Fatalf("Failed to set ready: %v", err)
		}
	}
	if _, err := e.sessions.Start(session.ID, userIDs[0]); err != nil {
		t.Fatalf("Failed to start session: %v", err)
	}

	rounds, err := e.roundRepo.FindBySession(session.ID)
	if err != nil {
		t.Fatalf("Failed to load session rounds: %v", err)
	}
	roundByUser := make(map[uint]uint, len(rounds))
	for _, r := range rounds {
		roundByUser[r.UserID] = r.ID
	}
	return session.ID, userIDs, roundByUser
}
