package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

// Difficulty represents how hard a meal is to prepare
type Difficulty string

const (
	DifficultyLow  Difficulty = "LOW"
	DifficultyMed  Difficulty = "MED"
	DifficultyHigh Difficulty = "HIGH"
)

// Modifier is subtracted from a meal's battle score.
func (d Difficulty) Modifier() (float64, error) {
	switch d {
	case DifficultyHigh:
		return 1, nil
	case DifficultyMed:
		return 2, nil
	case DifficultyLow:
		return 3, nil
	}
	return 0, fmt.Errorf("%w: difficulty must be 'LOW', 'MED', or 'HIGH', got %q", ErrInvalidInput, string(d))
}

// Meal represents a dish competing in kitchen battles
type Meal struct {
	ID         uint           `json:"id" gorm:"primaryKey"`
	Name       string         `json:"meal" gorm:"column:meal;uniqueIndex;not null"`
	Cuisine    string         `json:"cuisine" gorm:"not null"`
	Price      float64        `json:"price" gorm:"not null"`
	Difficulty Difficulty     `json:"difficulty" gorm:"not null"`
	Battles    int            `json:"battles" gorm:"not null;default:0"`
	Wins       int            `json:"wins" gorm:"not null;default:0"`
	CreatedAt  time.Time      `json:"-"`
	UpdatedAt  time.Time      `json:"-"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for Meal Model
func (Meal) TableName() string {
	return "meals"
}

// NewMeal validates price and difficulty.
func NewMeal(name, cuisine string, price float64, difficulty Difficulty) (*Meal, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: meal name must be a non-empty string", ErrInvalidInput)
	}
	if strings.TrimSpace(cuisine) == "" {
		return nil, fmt.Errorf("%w: cuisine must be a non-empty string", ErrInvalidInput)
	}
	if price <= 0 {
		return nil, fmt.Errorf("%w: price must be a positive number, got %v", ErrInvalidInput, price)
	}
	if _, err := difficulty.Modifier(); err != nil {
		return nil, err
	}
	return &Meal{
		Name:       name,
		Cuisine:    strings.TrimSpace(cuisine),
		Price:      price,
		Difficulty: difficulty,
	}, nil
}

func (m *Meal) CombatantID() uint   { return m.ID }
func (m *Meal) DisplayName() string { return m.Name }

// SkillScore is price * characters(cuisine) minus the difficulty modifier.
func (m *Meal) SkillScore() (float64, error) {
	mod, err := m.Difficulty.Modifier()
	if err != nil {
		return 0, err
	}
	return m.Price*float64(utf8.RuneCountInString(m.Cuisine)) - mod, nil
}

// WinPct returns the win percentage rounded to one decimal place.
func (m *Meal) WinPct() float64 { return WinPct(m.Wins, m.Battles) }
