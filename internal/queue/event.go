// Package queue defines message payloads exchanged over the message
// broker, plus the publisher and the background activity-log
// consumer.
package queue

// RoundCompletedEvent is published when a player finishes a round. It
// carries enough for downstream consumers to log or notify without
// querying the primary database.
type RoundCompletedEvent struct {
	RoundID     uint   `json:"round_id"`
	UserID      uint   `json:"user_id"`
	Username    string `json:"username"`
	CourseID    uint   `json:"course_id"`
	CourseName  string `json:"course_name"`
	SessionID   *uint  `json:"session_id,omitempty"`
	TotalScore  int    `json:"total_score"`
	TotalPutts  int    `json:"total_putts"`
	CompletedAt string `json:"completed_at"`
}

// SessionCompletedEvent is published when a group session reaches
// COMPLETED, whether by the host override or by all rounds finishing.
type SessionCompletedEvent struct {
	SessionID   uint   `json:"session_id"`
	HostID      uint   `json:"host_id"`
	CourseID    uint   `json:"course_id"`
	InviteCode  string `json:"invite_code"`
	MemberCount int    `json:"member_count"`
	Reason      string `json:"reason"`
	CompletedAt string `json:"completed_at"`
}
