package websocket

import (
	"errors"
	"sync"
	"time"

	"go-fairway/internal/interfaces"
	"go-fairway/pkg/logger"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
)

// Client is one websocket connection attached to one session channel.
type Client struct {
	UserID    uint
	SessionID uint
	Conn      *websocket.Conn
	Send      chan []byte

	closeOnce sync.Once
	handler   interfaces.MessageHandler
	manager   interfaces.ConnectionManager
}

func NewClient(userID, sessionID uint, conn *websocket.Conn, handler interfaces.MessageHandler, manager interfaces.ConnectionManager) *Client {
	return &Client{
		UserID:    userID,
		SessionID: sessionID,
		Conn:      conn,
		Send:      make(chan []byte, 256),
		handler:   handler,
		manager:   manager,
	}
}

func (c *Client) GetUserID() uint    { return c.UserID }
func (c *Client) GetSessionID() uint { return c.SessionID }

// QueueBytes hands data to the write pump without blocking.
func (c *Client) QueueBytes(data []byte) error {
	select {
	case c.Send <- data:
		return nil
	default:
		return errors.New("client send buffer full")
	}
}

// Close releases the send channel; safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.Send)
	})
}

func (c *Client) ReadPump() {
	defer func() {
		c.manager.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, messageBytes, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.L.Warn("Unexpected close error",
					zap.Uint("userID", c.UserID), zap.Error(err))
			}
			break
		}

		if messageType == websocket.TextMessage && c.handler != nil {
			c.handler.HandleInbound(c.SessionID, c.UserID, messageBytes)
		} else {
			logger.L.Debug("Ignoring non-text frame",
				zap.Int("messageType", messageType),
				zap.Uint("userID", c.UserID))
		}
	}
}

func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case messageBytes, ok := <-c.Send:
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, messageBytes); err != nil {
				logger.L.Warn("Failed to write message",
					zap.Uint("userID", c.UserID), zap.Error(err))
				return
			}

			// Drain anything queued behind this frame.
			n := len(c.Send)
			for i := 0; i < n; i++ {
				batchBytes, ok := <-c.Send
				if !ok {
					return
				}
				if err := c.Conn.WriteMessage(websocket.TextMessage, batchBytes); err != nil {
					logger.L.Warn("Failed to write batched message",
						zap.Uint("userID", c.UserID), zap.Error(err))
					return
				}
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
