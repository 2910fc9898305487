package api

import (
	"net/http"

	"go-fairway/internal/interfaces"
	"go-fairway/internal/service"
	internalws "go-fairway/internal/websocket"
	"go-fairway/pkg/logger"
	"go-fairway/pkg/utils"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// TODO: restrict origins before exposing this outside a trusted proxy
		return true
	},
}

type WSHandler struct {
	hub            interfaces.ConnectionManager
	msgHandler     interfaces.MessageHandler
	sessionService *service.SessionService
}

func NewWSHandler(hub interfaces.ConnectionManager, msgHandler interfaces.MessageHandler, sessionService *service.SessionService) *WSHandler {
	return &WSHandler{
		hub:            hub,
		msgHandler:     msgHandler,
		sessionService: sessionService,
	}
}

// HandleConnection attaches a client to a session channel. Browsers
// cannot set headers on websocket dials, so auth rides in as a short
// lived channel token minted by the sessions API.
func (h *WSHandler) HandleConnection(c *gin.Context) {
	sessionID, ok := getUintParam(c, "id")
	if !ok {
		return
	}

	tokenString := c.Query("token")
	if tokenString == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "channel token is required"})
		return
	}

	claims, err := utils.ParseChannelToken(tokenString)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid channel token"})
		return
	}
	if claims.SessionID != sessionID {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token is not valid for this session"})
		return
	}

	// The token is short lived but membership can still change between
	// minting and attach, so re-check it here.
	isMember, err := h.sessionService.IsMember(sessionID, claims.UserID)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	if !isMember {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "you are not in this session"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.L.Error("Failed to upgrade WebSocket connection",
			zap.Uint("userID", claims.UserID),
			zap.Uint("sessionID", sessionID),
			zap.Error(err))
		return
	}
	logger.L.Info("WebSocket connection upgraded",
		zap.Uint("userID", claims.UserID),
		zap.Uint("sessionID", sessionID))

	client := internalws.NewClient(claims.UserID, sessionID, conn, h.msgHandler, h.hub)
	h.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}
