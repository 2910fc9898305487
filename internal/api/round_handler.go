package api

import (
	"net/http"

	"go-fairway/internal/service"

	"github.com/gin-gonic/gin"
)

type RoundHandler struct {
	roundService *service.RoundService
	statsService *service.StatsService
}

func NewRoundHandler(roundService *service.RoundService, statsService *service.StatsService) *RoundHandler {
	return &RoundHandler{
		roundService: roundService,
		statsService: statsService,
	}
}

func (h *RoundHandler) Create(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	var req service.CreateRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	round, err := h.roundService.CreateRound(userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"round": round})
}

func (h *RoundHandler) Get(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	roundID, ok := getUintParam(c, "id")
	if !ok {
		return
	}

	round, err := h.roundService.GetRound(roundID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"round": round})
}

func (h *RoundHandler) List(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}

	limit, offset := getPagination(c)
	rounds, err := h.roundService.ListUserRounds(userID, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rounds": rounds})
}

func (h *RoundHandler) SaveScore(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	roundID, ok := getUintParam(c, "id")
	if !ok {
		return
	}

	var req service.SaveScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	round, err := h.roundService.SaveScore(roundID, userID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"round": round})
}

func (h *RoundHandler) Complete(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	roundID, ok := getUintParam(c, "id")
	if !ok {
		return
	}

	round, err := h.roundService.CompleteRound(roundID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"round": round})
}

func (h *RoundHandler) Abandon(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	roundID, ok := getUintParam(c, "id")
	if !ok {
		return
	}

	round, err := h.roundService.AbandonRound(roundID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"round": round})
}

func (h *RoundHandler) Stats(c *gin.Context) {
	userID, ok := getUserIDFromContext(c)
	if !ok {
		return
	}
	roundID, ok := getUintParam(c, "id")
	if !ok {
		return
	}

	stats, err := h.statsService.RoundStats(roundID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}
