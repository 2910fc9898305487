package db

import (
	"fmt"

	"go-fairway/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Open connects to MySQL. The returned handle is passed to
// repositories by the process entry point; nothing in this package
// keeps global state.
func Open(dsn string) (*gorm.DB, error) {
	conn, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return conn, nil
}

// Migrate runs GORM auto-migrations for the core tables.
func Migrate(conn *gorm.DB) error {
	err := conn.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.Hole{},
		&model.Round{},
		&model.Score{},
		&model.GroupSession{},
		&model.SessionMember{},
		&model.FriendRequest{},
		&model.Friendship{},
		&model.ChatMessage{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
