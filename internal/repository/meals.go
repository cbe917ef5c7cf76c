package repository

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"boxing-arena-api/internal/arena"
	"boxing-arena-api/internal/models"

	"gorm.io/gorm"
)

// MealStanding is one meal leaderboard row.
type MealStanding struct {
	ID         uint              `json:"id"`
	Name       string            `json:"meal"`
	Cuisine    string            `json:"cuisine"`
	Price      float64           `json:"price"`
	Difficulty models.Difficulty `json:"difficulty"`
	Battles    int               `json:"battles"`
	Wins       int               `json:"wins"`
	WinPct     float64           `json:"win_pct"`
}

// MealRepository persists meals.
type MealRepository struct {
	db *gorm.DB
}

func NewMealRepository(db *gorm.DB) *MealRepository {
	return &MealRepository{db: db}
}

// Create inserts m; duplicate names fail with models.ErrInvalidInput.
func (r *MealRepository) Create(ctx context.Context, m *models.Meal) error {
	var count int64
	if err := r.db.WithContext(ctx).Unscoped().Model(&models.Meal{}).
		Where("meal = ?", m.Name).Count(&count).Error; err != nil {
		return fmt.Errorf("check meal name: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: meal with name %q already exists", models.ErrInvalidInput, m.Name)
	}
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("create meal: %w", err)
	}
	return nil
}

// GetByID returns models.ErrNotFound for absent and deleted meals alike.
func (r *MealRepository) GetByID(ctx context.Context, id uint) (*models.Meal, error) {
	var m models.Meal
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err, "meal with ID %d", id)
	}
	return &m, nil
}

func (r *MealRepository) GetByName(ctx context.Context, name string) (*models.Meal, error) {
	var m models.Meal
	if err := r.db.WithContext(ctx).Where("meal = ?", name).First(&m).Error; err != nil {
		return nil, translate(err, "meal %q", name)
	}
	return &m, nil
}

func (r *MealRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Meal{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete meal %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: meal with ID %d", models.ErrNotFound, id)
	}
	return nil
}

func (r *MealRepository) UpdateStats(ctx context.Context, id uint, result models.Result) error {
	return updateMealStats(r.db.WithContext(ctx), id, result)
}

// RecordBout counts a win and a loss in one transaction.
func (r *MealRepository) RecordBout(ctx context.Context, winnerID, loserID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateMealStats(tx, winnerID, models.ResultWin); err != nil {
			return err
		}
		return updateMealStats(tx, loserID, models.ResultLoss)
	})
}

func updateMealStats(db *gorm.DB, id uint, result models.Result) error {
	if err := result.Validate(); err != nil {
		return err
	}
	wins := 0
	if result == models.ResultWin {
		wins = 1
	}
	res := db.Model(&models.Meal{}).Where("id = ?", id).
		Updates(map[string]any{
			"battles": gorm.Expr("battles + 1"),
			"wins":    gorm.Expr("wins + ?", wins),
		})
	if res.Error != nil {
		return fmt.Errorf("update stats for meal %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: meal with ID %d", models.ErrNotFound, id)
	}
	return nil
}

// Leaderboard lists meals with at least one battle, best first.
func (r *MealRepository) Leaderboard(ctx context.Context, sortBy string) ([]MealStanding, error) {
	if sortBy != SortByWins && sortBy != SortByWinPct {
		return nil, fmt.Errorf("%w: invalid sort_by parameter %q", models.ErrInvalidInput, sortBy)
	}

	var meals []models.Meal
	if err := r.db.WithContext(ctx).Where("battles > 0").Order("id").Find(&meals).Error; err != nil {
		return nil, fmt.Errorf("load meal leaderboard: %w", err)
	}

	board := make([]MealStanding, 0, len(meals))
	for _, m := range meals {
		board = append(board, MealStanding{
			ID:         m.ID,
			Name:       m.Name,
			Cuisine:    m.Cuisine,
			Price:      m.Price,
			Difficulty: m.Difficulty,
			Battles:    m.Battles,
			Wins:       m.Wins,
			WinPct:     m.WinPct(),
		})
	}
	slices.SortStableFunc(board, func(a, b MealStanding) int {
		if sortBy == SortByWinPct {
			return cmp.Compare(b.WinPct, a.WinPct)
		}
		return cmp.Compare(b.Wins, a.Wins)
	})
	return board, nil
}

// Combatants exposes the repository as the kitchen's arena.Store.
func (r *MealRepository) Combatants() arena.Store {
	return mealCombatants{repo: r}
}

type mealCombatants struct {
	repo *MealRepository
}

func (s mealCombatants) GetByID(ctx context.Context, id uint) (arena.Combatant, error) {
	m, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s mealCombatants) RecordBout(ctx context.Context, winnerID, loserID uint) error {
	return s.repo.RecordBout(ctx, winnerID, loserID)
}
