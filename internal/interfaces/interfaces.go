package interfaces

import "go-fairway/internal/event"

type Client interface {
	GetUserID() uint
	GetSessionID() uint
	QueueBytes(data []byte) error
	Close()
}

// MessageHandler consumes frames sent by a connected client.
// Implemented by service.ChatService.
type MessageHandler interface {
	HandleInbound(sessionID, senderID uint, data []byte)
}

// ConnectionManager is the realtime relay seen by the domain
// services: register/unregister clients and fan events out to one
// session's channel. Delivery is best-effort.
type ConnectionManager interface {
	Register(client Client)
	Unregister(client Client)
	Publish(ev *event.Event) error
}
