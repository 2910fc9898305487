// Package event defines the JSON payloads fanned out over session
// realtime channels. Events mirror facts already committed to the
// database; clients that miss one reconcile by refetching, so nothing
// here is part of a consistency guarantee.
package event

import (
	"encoding/json"
	"time"
)

const (
	TypeMemberJoined   = "member_joined"
	TypeMemberLeft     = "member_left"
	TypeMemberReady    = "member_ready"
	TypeSessionStarted = "session_started"
	TypeSessionEnded   = "session_ended"
	TypeScoreUpdate    = "score_update"
	TypeChat           = "chat"
)

type Event struct {
	Type      string      `json:"type"`
	SessionID uint        `json:"session_id"`
	Payload   interface{} `json:"payload"`
	At        time.Time   `json:"at"`
}

func (e *Event) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

func New(eventType string, sessionID uint, payload interface{}) *Event {
	return &Event{
		Type:      eventType,
		SessionID: sessionID,
		Payload:   payload,
		At:        time.Now().UTC(),
	}
}

type MemberPayload struct {
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
	IsReady     bool   `json:"is_ready,omitempty"`
}

type SessionStartedPayload struct {
	StartedBy uint   `json:"started_by"`
	RoundIDs  []uint `json:"round_ids"`
}

type SessionEndedPayload struct {
	Status string `json:"status"`
	// Reason distinguishes the host override from all-rounds-done
	// auto-completion.
	Reason string `json:"reason"`
}

type ScoreUpdatePayload struct {
	RoundID    uint `json:"round_id"`
	UserID     uint `json:"user_id"`
	HoleNumber int  `json:"hole_number"`
	Strokes    int  `json:"strokes"`
	TotalScore int  `json:"total_score"`
	HolesDone  int  `json:"holes_done"`
}

type ChatPayload struct {
	MessageID      uint      `json:"message_id"`
	SenderID       uint      `json:"sender_id"`
	SenderUsername string    `json:"sender_username"`
	Content        string    `json:"content"`
	SentAt         time.Time `json:"sent_at"`
}
