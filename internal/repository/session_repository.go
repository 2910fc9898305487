package repository

import (
	"errors"
	"time"

	"go-fairway/internal/model"

	"gorm.io/gorm"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create inserts the session and adds the host as its first member in
// one transaction.
func (r *SessionRepository) Create(session *model.GroupSession) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		hostMember := &model.SessionMember{
			SessionID: session.ID,
			UserID:    session.HostID,
		}
		return tx.Create(hostMember).Error
	})
}

// FindByID preloads members (with users), host and course. Returns
// (nil, nil) when the session does not exist.
func (r *SessionRepository) FindByID(sessionID uint) (*model.GroupSession, error) {
	var session model.GroupSession
	err := r.db.Preload("Members").Preload("Members.User").Preload("Host").Preload("Course").
		First(&session, sessionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) FindByInviteCode(code string) (*model.GroupSession, error) {
	var session model.GroupSession
	err := r.db.Preload("Members").Preload("Members.User").Where("invite_code = ?", code).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

// FindActiveByHost looks for a WAITING or IN_PROGRESS session hosted
// by the user. This backs the advisory one-active-session-per-host
// check; it is a lookup, not a constraint.
func (r *SessionRepository) FindActiveByHost(hostID uint) (*model.GroupSession, error) {
	var session model.GroupSession
	err := r.db.Where("host_id = ? AND status IN ?", hostID,
		[]model.SessionStatus{model.SessionWaiting, model.SessionInProgress}).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *SessionRepository) InviteCodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&model.GroupSession{}).Where("invite_code = ?", code).Count(&count).Error
	return count > 0, err
}

func (r *SessionRepository) UpdateStatus(sessionID uint, status model.SessionStatus, fields map[string]interface{}) error {
	updates := map[string]interface{}{"status": status}
	for k, v := range fields {
		updates[k] = v
	}
	return r.db.Model(&model.GroupSession{}).Where("id = ?", sessionID).Updates(updates).Error
}

func (r *SessionRepository) AddMember(sessionID, userID uint) error {
	member := &model.SessionMember{
		SessionID: sessionID,
		UserID:    userID,
	}
	return r.db.Create(member).Error
}

// RemoveMember hard-deletes the row so the user can rejoin later.
func (r *SessionRepository) RemoveMember(sessionID, userID uint) error {
	return r.db.Where("session_id = ? AND user_id = ?", sessionID, userID).
		Delete(&model.SessionMember{}).Error
}

func (r *SessionRepository) FindMember(sessionID, userID uint) (*model.SessionMember, error) {
	var member model.SessionMember
	err := r.db.Where("session_id = ? AND user_id = ?", sessionID, userID).First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &member, nil
}

func (r *SessionRepository) CountMembers(sessionID uint) (int64, error) {
	var count int64
	err := r.db.Model(&model.SessionMember{}).Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}

func (r *SessionRepository) SetMemberReady(sessionID, userID uint, isReady bool) error {
	return r.db.Model(&model.SessionMember{}).
		Where("session_id = ? AND user_id = ?", sessionID, userID).
		Update("is_ready", isReady).Error
}

// AllMembersReady is a derived scan, recomputed each call; there is no
// stored ready counter to drift.
func (r *SessionRepository) AllMembersReady(sessionID uint) (bool, error) {
	var notReady int64
	err := r.db.Model(&model.SessionMember{}).
		Where("session_id = ? AND is_ready = ?", sessionID, false).
		Count(&notReady).Error
	if err != nil {
		return false, err
	}
	return notReady == 0, nil
}

// StartWithRounds transitions the session to IN_PROGRESS and creates
// one round per member, all inside a single transaction. The lazily
// seeded course layout is handled by the caller beforehand.
func (r *SessionRepository) StartWithRounds(session *model.GroupSession, rounds []model.Round) error {
	now := time.Now()
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rounds).Error; err != nil {
			return err
		}
		return tx.Model(&model.GroupSession{}).Where("id = ?", session.ID).
			Updates(map[string]interface{}{
				"status":     model.SessionInProgress,
				"started_at": now,
			}).Error
	})
}
