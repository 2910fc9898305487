package api

import (
	"net/http"

	"go-fairway/internal/service"

	"github.com/gin-gonic/gin"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

func (h *SessionHandler) Create(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	var req service.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionService.Create(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"session": session})
}

func (h *SessionHandler) Get(c *gin.Context) {
	if _, ok := getUserIDFromContext(c); !ok {
		return
	}
	sessionID, ok := getUintParam(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.Get(sessionID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *SessionHandler) Join(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	var req service.JoinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	session, err := h.sessionService.Join(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *SessionHandler) SetReady(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	sessionID, ok := getUintParam(c, "id")
	if !ok {
		return
	}

	var req service.SetReadyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	allReady, err := h.sessionService.SetReady(sessionID, userID, req.IsReady)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"all_ready": allReady})
}

func (h *SessionHandler) Start(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	sessionID, ok := getUintParam(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.Start(sessionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *SessionHandler) End(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	sessionID, ok := getUintParam(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.End(sessionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *SessionHandler) Cancel(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	sessionID, ok := getUintParam(c, "id")
	if !ok {
		return
	}

	session, err := h.sessionService.Cancel(sessionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session": session})
}

func (h *SessionHandler) Leave(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	sessionID, ok := getUintParam(c, "id")
	if !ok {
		return
	}

	if err := h.sessionService.Leave(sessionID, userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left session"})
}

func (h *SessionHandler) Leaderboard(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	sessionID, ok := getUintParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.sessionService.Leaderboard(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": entries})
}

// ChannelToken mints the scoped realtime token a client presents on
// the websocket endpoint.
func (h *SessionHandler) ChannelToken(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	sessionID, ok := getUintParam(c, "id")
	if !ok {
		return
	}

	token, err := h.sessionService.ChannelToken(sessionID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
