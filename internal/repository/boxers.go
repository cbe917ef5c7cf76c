// Package repository holds the gorm-backed stores for boxers and meals.
package repository

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"boxing-arena-api/internal/arena"
	"boxing-arena-api/internal/models"

	"gorm.io/gorm"
)

// Leaderboard sort keys.
const (
	SortByWins   = "wins"
	SortByWinPct = "win_pct"
)

// BoxerStanding is one leaderboard row.
type BoxerStanding struct {
	ID          uint               `json:"id"`
	Name        string             `json:"name"`
	Weight      float64            `json:"weight"`
	Height      float64            `json:"height"`
	Reach       float64            `json:"reach"`
	Age         int                `json:"age"`
	WeightClass models.WeightClass `json:"weight_class"`
	Fights      int                `json:"fights"`
	Wins        int                `json:"wins"`
	WinPct      float64            `json:"win_pct"`
}

// BoxerRepository persists boxers.
type BoxerRepository struct {
	db *gorm.DB
}

func NewBoxerRepository(db *gorm.DB) *BoxerRepository {
	return &BoxerRepository{db: db}
}

// Create inserts b. A name already used by any boxer, including deleted
// ones, fails with models.ErrInvalidInput.
func (r *BoxerRepository) Create(ctx context.Context, b *models.Boxer) error {
	var count int64
	if err := r.db.WithContext(ctx).Unscoped().Model(&models.Boxer{}).
		Where("name = ?", b.Name).Count(&count).Error; err != nil {
		return fmt.Errorf("check boxer name: %w", err)
	}
	if count > 0 {
		return fmt.Errorf("%w: boxer with name %q already exists", models.ErrInvalidInput, b.Name)
	}
	if err := r.db.WithContext(ctx).Create(b).Error; err != nil {
		return fmt.Errorf("create boxer: %w", err)
	}
	return nil
}

func (r *BoxerRepository) GetByID(ctx context.Context, id uint) (*models.Boxer, error) {
	var b models.Boxer
	if err := r.db.WithContext(ctx).First(&b, id).Error; err != nil {
		return nil, translate(err, "boxer with ID %d", id)
	}
	return &b, nil
}

func (r *BoxerRepository) GetByName(ctx context.Context, name string) (*models.Boxer, error) {
	var b models.Boxer
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&b).Error; err != nil {
		return nil, translate(err, "boxer %q", name)
	}
	return &b, nil
}

// Delete soft-deletes a boxer; later lookups report models.ErrNotFound.
func (r *BoxerRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&models.Boxer{}, id)
	if res.Error != nil {
		return fmt.Errorf("delete boxer %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: boxer with ID %d", models.ErrNotFound, id)
	}
	return nil
}

// UpdateStats counts one fight, and one win when result is a win.
func (r *BoxerRepository) UpdateStats(ctx context.Context, id uint, result models.Result) error {
	return updateBoxerStats(r.db.WithContext(ctx), id, result)
}

// RecordBout counts a win and a loss in one transaction.
func (r *BoxerRepository) RecordBout(ctx context.Context, winnerID, loserID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := updateBoxerStats(tx, winnerID, models.ResultWin); err != nil {
			return err
		}
		return updateBoxerStats(tx, loserID, models.ResultLoss)
	})
}

func updateBoxerStats(db *gorm.DB, id uint, result models.Result) error {
	if err := result.Validate(); err != nil {
		return err
	}
	wins := 0
	if result == models.ResultWin {
		wins = 1
	}
	res := db.Model(&models.Boxer{}).Where("id = ?", id).
		Updates(map[string]any{
			"fights": gorm.Expr("fights + 1"),
			"wins":   gorm.Expr("wins + ?", wins),
		})
	if res.Error != nil {
		return fmt.Errorf("update stats for boxer %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: boxer with ID %d", models.ErrNotFound, id)
	}
	return nil
}

// Leaderboard lists boxers with at least one fight, best first.
func (r *BoxerRepository) Leaderboard(ctx context.Context, sortBy string) ([]BoxerStanding, error) {
	if sortBy != SortByWins && sortBy != SortByWinPct {
		return nil, fmt.Errorf("%w: invalid sort_by parameter %q", models.ErrInvalidInput, sortBy)
	}

	var boxers []models.Boxer
	if err := r.db.WithContext(ctx).Where("fights > 0").Order("id").Find(&boxers).Error; err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}

	board := make([]BoxerStanding, 0, len(boxers))
	for _, b := range boxers {
		board = append(board, BoxerStanding{
			ID:          b.ID,
			Name:        b.Name,
			Weight:      b.Weight,
			Height:      b.Height,
			Reach:       b.Reach,
			Age:         b.Age,
			WeightClass: b.WeightClass,
			Fights:      b.Fights,
			Wins:        b.Wins,
			WinPct:      b.WinPct(),
		})
	}
	slices.SortStableFunc(board, func(a, b BoxerStanding) int {
		if sortBy == SortByWinPct {
			return cmp.Compare(b.WinPct, a.WinPct)
		}
		return cmp.Compare(b.Wins, a.Wins)
	})
	return board, nil
}

// Combatants exposes the repository as the ring's arena.Store.
func (r *BoxerRepository) Combatants() arena.Store {
	return boxerCombatants{repo: r}
}

type boxerCombatants struct {
	repo *BoxerRepository
}

func (s boxerCombatants) GetByID(ctx context.Context, id uint) (arena.Combatant, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s boxerCombatants) RecordBout(ctx context.Context, winnerID, loserID uint) error {
	return s.repo.RecordBout(ctx, winnerID, loserID)
}

// translate maps gorm.ErrRecordNotFound to models.ErrNotFound.
func translate(err error, format string, args ...any) error {
	what := fmt.Sprintf(format, args...)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", models.ErrNotFound, what)
	}
	return fmt.Errorf("load %s: %w", what, err)
}
