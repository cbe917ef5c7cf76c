package handlers

import (
	"net/http"
	"strings"

	"boxing-arena-api/internal/arena"
	"boxing-arena-api/internal/logger"
	"boxing-arena-api/internal/metrics"
	"boxing-arena-api/internal/models"
	"boxing-arena-api/internal/repository"

	"github.com/gin-gonic/gin"
)

// CreateBoxerRequest represents the request payload for adding a boxer
type CreateBoxerRequest struct {
	Name   string  `json:"name" binding:"required"`
	Weight float64 `json:"weight" binding:"required"`
	Height float64 `json:"height" binding:"required"`
	Reach  float64 `json:"reach" binding:"required"`
	Age    int     `json:"age" binding:"required"`
}

// EnterRingRequest names a boxer by ID or by name; ID wins when both are set.
type EnterRingRequest struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// BoxerHandler serves the boxer catalogue and the ring.
type BoxerHandler struct {
	repo    *repository.BoxerRepository
	ring    *arena.Arena
	metrics *metrics.Metrics
	log     logger.Logger
}

func NewBoxerHandler(repo *repository.BoxerRepository, ring *arena.Arena, m *metrics.Metrics, log logger.Logger) *BoxerHandler {
	return &BoxerHandler{repo: repo, ring: ring, metrics: m, log: log.Named("boxers")}
}

// AddBoxer handles POST /api/add-boxer
func (h *BoxerHandler) AddBoxer(c *gin.Context) {
	var req CreateBoxerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	boxer, err := models.NewBoxer(req.Name, req.Weight, req.Height, req.Reach, req.Age)
	if err != nil {
		respondError(c, h.log, "Invalid boxer", err)
		return
	}
	if err := h.repo.Create(c.Request.Context(), boxer); err != nil {
		respondError(c, h.log, "Failed to add boxer", err)
		return
	}

	h.log.Info(c.Request.Context(), "boxer added", logger.Uint("id", boxer.ID), logger.String("name", boxer.Name))
	c.JSON(http.StatusCreated, boxer)
}

// DeleteBoxer handles DELETE /api/delete-boxer/:id
func (h *BoxerHandler) DeleteBoxer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, "Failed to delete boxer", err)
		return
	}
	h.ring.Forget(id)

	h.log.Info(c.Request.Context(), "boxer deleted", logger.Uint("id", id))
	c.JSON(http.StatusOK, gin.H{"message": "Boxer deleted successfully", "id": id})
}

// GetBoxerByID handles GET /api/get-boxer-by-id/:id
// Served through the ring's cache.
func (h *BoxerHandler) GetBoxerByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	boxer, err := h.ring.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, "Failed to fetch boxer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"boxer": boxer})
}

// GetBoxerByName handles GET /api/get-boxer-by-name/:name
func (h *BoxerHandler) GetBoxerByName(c *gin.Context) {
	boxer, err := h.repo.GetByName(c.Request.Context(), strings.TrimSpace(c.Param("name")))
	if err != nil {
		respondError(c, h.log, "Failed to fetch boxer", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"boxer": boxer})
}

// EnterRing handles POST /api/enter-ring
func (h *BoxerHandler) EnterRing(c *gin.Context) {
	var req EnterRingRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.ID == 0 && strings.TrimSpace(req.Name) == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either id or name is required"})
		return
	}

	ctx := c.Request.Context()
	id := req.ID
	if id == 0 {
		boxer, err := h.repo.GetByName(ctx, strings.TrimSpace(req.Name))
		if err != nil {
			respondError(c, h.log, "Failed to enter ring", err)
			return
		}
		id = boxer.ID
	}

	if err := h.ring.Prep(ctx, id); err != nil {
		respondError(c, h.log, "Failed to enter ring", err)
		return
	}
	roster, err := h.ring.Roster(ctx)
	if err != nil {
		respondError(c, h.log, "Failed to list boxers in the ring", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Boxer entered the ring", "boxers": roster, "count": len(roster)})
}

// GetBoxers handles GET /api/get-boxers
func (h *BoxerHandler) GetBoxers(c *gin.Context) {
	roster, err := h.ring.Roster(c.Request.Context())
	if err != nil {
		respondError(c, h.log, "Failed to list boxers in the ring", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"boxers": roster, "count": len(roster)})
}

// ClearBoxers handles POST /api/clear-boxers
func (h *BoxerHandler) ClearBoxers(c *gin.Context) {
	h.ring.Clear(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Boxers cleared from the ring"})
}

// ClearCache handles POST /api/clear-cache
func (h *BoxerHandler) ClearCache(c *gin.Context) {
	h.ring.ClearCache(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Boxer cache cleared"})
}

// Fight handles GET /api/fight
func (h *BoxerHandler) Fight(c *gin.Context) {
	res, err := h.ring.RunBout(c.Request.Context())
	if err != nil {
		h.metrics.BoutFailed(h.ring.Name(), errorKind(err))
		respondError(c, h.log, "Failed to run the fight", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"winner": res.WinnerName, "bout": res})
}

// Leaderboard handles GET /api/leaderboard?sort=wins|win_pct
func (h *BoxerHandler) Leaderboard(c *gin.Context) {
	sortBy := c.DefaultQuery("sort", repository.SortByWins)
	board, err := h.repo.Leaderboard(c.Request.Context(), sortBy)
	if err != nil {
		respondError(c, h.log, "Failed to build leaderboard", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": board, "count": len(board), "sort": sortBy})
}
