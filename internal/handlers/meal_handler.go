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

// CreateMealRequest represents the request payload for creating a meal
type CreateMealRequest struct {
	Meal       string            `json:"meal" binding:"required"`
	Cuisine    string            `json:"cuisine" binding:"required"`
	Price      float64           `json:"price" binding:"required"`
	Difficulty models.Difficulty `json:"difficulty" binding:"required"`
}

// PrepCombatantRequest names a meal by ID or by name.
type PrepCombatantRequest struct {
	ID   uint   `json:"id"`
	Meal string `json:"meal"`
}

// MealHandler serves the meal catalogue and kitchen battles.
type MealHandler struct {
	repo    *repository.MealRepository
	kitchen *arena.Arena
	metrics *metrics.Metrics
	log     logger.Logger
}

func NewMealHandler(repo *repository.MealRepository, kitchen *arena.Arena, m *metrics.Metrics, log logger.Logger) *MealHandler {
	return &MealHandler{repo: repo, kitchen: kitchen, metrics: m, log: log.Named("meals")}
}

// CreateMeal handles POST /api/create-meal
func (h *MealHandler) CreateMeal(c *gin.Context) {
	var req CreateMealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	meal, err := models.NewMeal(req.Meal, req.Cuisine, req.Price, models.Difficulty(strings.ToUpper(string(req.Difficulty))))
	if err != nil {
		respondError(c, h.log, "Invalid meal", err)
		return
	}
	if err := h.repo.Create(c.Request.Context(), meal); err != nil {
		respondError(c, h.log, "Failed to create meal", err)
		return
	}

	h.log.Info(c.Request.Context(), "meal created", logger.Uint("id", meal.ID), logger.String("meal", meal.Name))
	c.JSON(http.StatusCreated, meal)
}

// DeleteMeal handles DELETE /api/delete-meal/:id
func (h *MealHandler) DeleteMeal(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.repo.Delete(c.Request.Context(), id); err != nil {
		respondError(c, h.log, "Failed to delete meal", err)
		return
	}
	h.kitchen.Forget(id)
	c.JSON(http.StatusOK, gin.H{"message": "Meal deleted successfully", "id": id})
}

// GetMealByID handles GET /api/get-meal-by-id/:id
func (h *MealHandler) GetMealByID(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	meal, err := h.kitchen.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, "Failed to fetch meal", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal": meal})
}

// GetMealByName handles GET /api/get-meal-by-name/:name
func (h *MealHandler) GetMealByName(c *gin.Context) {
	meal, err := h.repo.GetByName(c.Request.Context(), strings.TrimSpace(c.Param("name")))
	if err != nil {
		respondError(c, h.log, "Failed to fetch meal", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"meal": meal})
}

// PrepCombatant handles POST /api/prep-combatant
func (h *MealHandler) PrepCombatant(c *gin.Context) {
	var req PrepCombatantRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.ID == 0 && strings.TrimSpace(req.Meal) == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either id or meal is required"})
		return
	}

	ctx := c.Request.Context()
	id := req.ID
	if id == 0 {
		meal, err := h.repo.GetByName(ctx, strings.TrimSpace(req.Meal))
		if err != nil {
			respondError(c, h.log, "Failed to prep combatant", err)
			return
		}
		id = meal.ID
	}

	if err := h.kitchen.Prep(ctx, id); err != nil {
		respondError(c, h.log, "Failed to prep combatant", err)
		return
	}
	combatants, err := h.kitchen.Roster(ctx)
	if err != nil {
		respondError(c, h.log, "Failed to list combatants", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Combatant prepped", "combatants": combatants, "count": len(combatants)})
}

// GetCombatants handles GET /api/get-combatants
func (h *MealHandler) GetCombatants(c *gin.Context) {
	combatants, err := h.kitchen.Roster(c.Request.Context())
	if err != nil {
		respondError(c, h.log, "Failed to list combatants", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"combatants": combatants, "count": len(combatants)})
}

// ClearCombatants handles POST /api/clear-combatants
func (h *MealHandler) ClearCombatants(c *gin.Context) {
	h.kitchen.Clear(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"message": "Combatants cleared"})
}

// Battle handles GET /api/battle
func (h *MealHandler) Battle(c *gin.Context) {
	res, err := h.kitchen.RunBout(c.Request.Context())
	if err != nil {
		h.metrics.BoutFailed(h.kitchen.Name(), errorKind(err))
		respondError(c, h.log, "Failed to run the battle", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"winner": res.WinnerName, "bout": res})
}

// Leaderboard handles GET /api/meal-leaderboard?sort=wins|win_pct
func (h *MealHandler) Leaderboard(c *gin.Context) {
	sortBy := c.DefaultQuery("sort", repository.SortByWins)
	board, err := h.repo.Leaderboard(c.Request.Context(), sortBy)
	if err != nil {
		respondError(c, h.log, "Failed to build leaderboard", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": board, "count": len(board), "sort": sortBy})
}
