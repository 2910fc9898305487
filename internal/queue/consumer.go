package queue

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-fairway/pkg/logger"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// StartActivityConsumer connects to the broker, declares the durable
// activity queue and appends each event to logs/activity.log as one
// human-readable line. It runs a reconnect loop with backoff and
// never returns under normal operation; run it on its own goroutine.
func StartActivityConsumer(url string) {
	backoff := time.Second
	for {
		conn, err := amqp.Dial(url)
		if err != nil {
			logger.L.Warn("activity-consumer: failed to dial broker",
				zap.Error(err), zap.Duration("retryIn", backoff))
			time.Sleep(backoff)
			if backoff < 30*time.Second {
				backoff *= 2
			}
			continue
		}
		backoff = time.Second

		if err := consumeLoop(conn); err != nil {
			logger.L.Warn("activity-consumer: consume loop ended, reconnecting", zap.Error(err))
			_ = conn.Close()
			time.Sleep(2 * time.Second)
		}
	}
}

func consumeLoop(conn *amqp.Connection) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("channel open: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(activityQueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("queue declare: %w", err)
	}

	msgs, err := ch.Consume(activityQueueName, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("queue consume: %w", err)
	}

	for d := range msgs {
		if err := handleMessage(d.Body); err != nil {
			logger.L.Warn("activity-consumer: handle message failed", zap.Error(err))
			// Reject without requeue to avoid a tight redelivery loop.
			_ = d.Nack(false, false)
			continue
		}
		_ = d.Ack(false)
	}
	return errors.New("deliveries channel closed")
}

func handleMessage(body []byte) error {
	line, err := formatActivityLine(body)
	if err != nil {
		return err
	}

	if err := os.MkdirAll("logs", 0o755); err != nil {
		return fmt.Errorf("mkdir logs: %w", err)
	}
	fpath := filepath.Join("logs", "activity.log")
	f, err := os.OpenFile(fpath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("write log: %w", err)
	}
	return nil
}

func formatActivityLine(body []byte) (string, error) {
	var round RoundCompletedEvent
	if err := json.Unmarshal(body, &round); err == nil && round.RoundID != 0 {
		return fmt.Sprintf("[%s] Round completed | round_id=%d | user=%s | course=%q | total=%d | putts=%d\n",
			round.CompletedAt, round.RoundID, round.Username, round.CourseName,
			round.TotalScore, round.TotalPutts), nil
	}

	var session SessionCompletedEvent
	if err := json.Unmarshal(body, &session); err == nil && session.SessionID != 0 {
		return fmt.Sprintf("[%s] Session completed | session_id=%d | code=%s | members=%d | reason=%s\n",
			session.CompletedAt, session.SessionID, session.InviteCode,
			session.MemberCount, session.Reason), nil
	}

	return "", fmt.Errorf("unrecognized event payload: %s", string(body))
}
