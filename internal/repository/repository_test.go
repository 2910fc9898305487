package repository

import (
	"fmt"
	"testing"
	"time"

	"go-fairway/internal/model"
	"go-fairway/pkg/db"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens a fresh in-memory database per test so tests never
// share state. The pool is pinned to one connection because every new
// sqlite connection to :memory: would see an empty database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

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
	return conn
}

func createTestUser(t *testing.T, conn *gorm.DB, username string) *model.User {
	t.Helper()
	user := &model.User{
		Username:    username,
		Email:       fmt.Sprintf("%s@example.com", username),
		Password:    "hashed",
		DisplayName: username,
	}
	if err := conn.Create(user).Error; err != nil {
		t.Fatalf("Failed to create test user %s: %v", username, err)
	}
	return user
}

func createTestCourse(t *testing.T, conn *gorm.DB, holeCount int) *model.Course {
	t.Helper()
	course := &model.Course{Name: "Test Links", Location: "Testville"}
	for i := 1; i <= holeCount; i++ {
		course.Holes = append(course.Holes, model.Hole{
			Number: i,
			Par:    4,
		})
	}
	if err := conn.Create(course).Error; err != nil {
		t.Fatalf("Failed to create test course: %v", err)
	}
	return course
}

func createTestRound(t *testing.T, conn *gorm.DB, userID, courseID uint, sessionID *uint) *model.Round {
	t.Helper()
	round := &model.Round{
		UserID:    userID,
		CourseID:  courseID,
		SessionID: sessionID,
		Status:    model.RoundInProgress,
		StartedAt: time.Now(),
	}
	if err := conn.Create(round).Error; err != nil {
		t.Fatalf("Failed to create test round: %v", err)
	}
	return round
}
