package websocket

import (
	"errors"
	"time"

	"go-fairway/internal/event"
	"go-fairway/internal/interfaces"
	"go-fairway/pkg/config"
	"go-fairway/pkg/logger"

	"go.uber.org/zap"
)

// Hub relays events between participants of the same group session.
// Each client is attached to exactly one session channel. The hub is
// not authoritative: the database is the source of truth and a
// dropped event only costs a client a refetch.
type Hub struct {
	// sessionID -> userID -> client
	sessions   map[uint]map[uint]interfaces.Client
	broadcast  chan *event.Event
	register   chan interfaces.Client
	unregister chan interfaces.Client

	retryCount    int
	retryInterval time.Duration
}

func NewHub() *Hub {
	wsConfig := config.GlobalConfig.WebSocket

	retryCount := wsConfig.MessageRetryCount
	if retryCount <= 0 {
		retryCount = 3
	}

	retryInterval := time.Duration(wsConfig.MessageRetryIntervalMs) * time.Millisecond
	if retryInterval <= 0 {
		retryInterval = 100 * time.Millisecond
	}

	broadcastBufferSize := wsConfig.BroadcastBufferSize
	if broadcastBufferSize <= 0 {
		broadcastBufferSize = 256
	}

	return &Hub{
		sessions:      make(map[uint]map[uint]interfaces.Client),
		broadcast:     make(chan *event.Event, broadcastBufferSize),
		register:      make(chan interfaces.Client),
		unregister:    make(chan interfaces.Client),
		retryCount:    retryCount,
		retryInterval: retryInterval,
	}
}

func (h *Hub) Register(client interfaces.Client) {
	h.register <- client
}

func (h *Hub) Unregister(client interfaces.Client) {
	h.unregister <- client
}

// Publish queues an event for fan-out to its session's channel. A
// full broadcast buffer drops the event rather than blocking the
// request path.
func (h *Hub) Publish(ev *event.Event) error {
	select {
	case h.broadcast <- ev:
		return nil
	default:
		logger.L.Warn("Hub broadcast channel full. Dropping event.",
			zap.String("type", ev.Type),
			zap.Uint("sessionID", ev.SessionID))
		return errors.New("hub broadcast channel is full")
	}
}

func (h *Hub) addClient(client interfaces.Client) {
	channel, ok := h.sessions[client.GetSessionID()]
	if !ok {
		channel = make(map[uint]interfaces.Client)
		h.sessions[client.GetSessionID()] = channel
	}
	// A reconnect replaces the previous connection for the same user.
	if prev, ok := channel[client.GetUserID()]; ok && prev != client {
		prev.Close()
	}
	channel[client.GetUserID()] = client
	logger.L.Info("Client registered",
		zap.Uint("userID", client.GetUserID()),
		zap.Uint("sessionID", client.GetSessionID()))
}

func (h *Hub) removeClient(client interfaces.Client) {
	channel, ok := h.sessions[client.GetSessionID()]
	if !ok {
		return
	}
	if current, ok := channel[client.GetUserID()]; ok && current == client {
		delete(channel, client.GetUserID())
		client.Close()
		logger.L.Info("Client unregistered",
			zap.Uint("userID", client.GetUserID()),
			zap.Uint("sessionID", client.GetSessionID()))
	}
	if len(channel) == 0 {
		delete(h.sessions, client.GetSessionID())
	}
}

func (h *Hub) trySend(client interfaces.Client, data []byte) {
	if client.QueueBytes(data) == nil {
		return
	}
	for i := 0; i < h.retryCount; i++ {
		logger.L.Warn("Client send buffer full, retry attempt",
			zap.Uint("userID", client.GetUserID()),
			zap.Int("attempt", i+1))
		time.Sleep(h.retryInterval)
		if client.QueueBytes(data) == nil {
			return
		}
	}
	// Still full after retries: a stalled reader, drop the connection.
	logger.L.Error("Client send buffer still full after retries, closing connection",
		zap.Uint("userID", client.GetUserID()),
		zap.Int("attempts", h.retryCount))
	h.removeClient(client)
}

// Run owns the sessions map; all mutation happens on this goroutine.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case ev := <-h.broadcast:
			data, err := ev.Marshal()
			if err != nil {
				logger.L.Error("Failed to marshal event", zap.Error(err))
				continue
			}
			for _, client := range h.sessions[ev.SessionID] {
				h.trySend(client, data)
			}
		}
	}
}
