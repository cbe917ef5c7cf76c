package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

// WeightClass is derived from a boxer's weight in pounds.
type WeightClass string

const (
	Heavyweight   WeightClass = "HEAVYWEIGHT"
	Middleweight  WeightClass = "MIDDLEWEIGHT"
	Lightweight   WeightClass = "LIGHTWEIGHT"
	Featherweight WeightClass = "FEATHERWEIGHT"
)

// Boxer attribute bounds.
const (
	MinBoxerWeight = 125
	MinBoxerAge    = 18
	MaxBoxerAge    = 40
)

// WeightClassFor maps a weight to its class. Weights under 125 are invalid.
func WeightClassFor(weight float64) (WeightClass, error) {
	switch {
	case weight >= 203:
		return Heavyweight, nil
	case weight >= 166:
		return Middleweight, nil
	case weight >= 133:
		return Lightweight, nil
	case weight >= MinBoxerWeight:
		return Featherweight, nil
	}
	return "", fmt.Errorf("%w: weight %v is below %d", ErrInvalidInput, weight, MinBoxerWeight)
}

// Boxer represents a competitive boxer and their fight record.
type Boxer struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	Name        string         `json:"name" gorm:"uniqueIndex;not null"`
	Weight      float64        `json:"weight" gorm:"not null"`
	Height      float64        `json:"height" gorm:"not null"`
	Reach       float64        `json:"reach" gorm:"not null"`
	Age         int            `json:"age" gorm:"not null"`
	WeightClass WeightClass    `json:"weight_class" gorm:"column:weight_class;not null"`
	Fights      int            `json:"fights" gorm:"not null;default:0"`
	Wins        int            `json:"wins" gorm:"not null;default:0"`
	CreatedAt   time.Time      `json:"-"`
	UpdatedAt   time.Time      `json:"-"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName specifies the table name for Boxer Model
func (Boxer) TableName() string {
	return "boxers"
}

// NewBoxer validates the attributes and derives the weight class.
func NewBoxer(name string, weight, height, reach float64, age int) (*Boxer, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name must be a non-empty string", ErrInvalidInput)
	}
	class, err := WeightClassFor(weight)
	if err != nil {
		return nil, err
	}
	if height <= 0 {
		return nil, fmt.Errorf("%w: height must be greater than 0", ErrInvalidInput)
	}
	if reach <= 0 {
		return nil, fmt.Errorf("%w: reach must be greater than 0", ErrInvalidInput)
	}
	if age < MinBoxerAge || age > MaxBoxerAge {
		return nil, fmt.Errorf("%w: age must be between %d and %d, got %d", ErrInvalidInput, MinBoxerAge, MaxBoxerAge, age)
	}
	return &Boxer{
		Name:        name,
		Weight:      weight,
		Height:      height,
		Reach:       reach,
		Age:         age,
		WeightClass: class,
	}, nil
}

func (b *Boxer) CombatantID() uint   { return b.ID }
func (b *Boxer) DisplayName() string { return b.Name }

// SkillScore is weight * characters(name) + reach/10 plus an age modifier:
// -1 under 25, -2 over 35, 0 otherwise.
func (b *Boxer) SkillScore() (float64, error) {
	ageModifier := 0.0
	switch {
	case b.Age < 25:
		ageModifier = -1
	case b.Age > 35:
		ageModifier = -2
	}
	return b.Weight*float64(utf8.RuneCountInString(b.Name)) + b.Reach/10 + ageModifier, nil
}

// WinPct returns the win percentage rounded to one decimal place.
func (b *Boxer) WinPct() float64 { return WinPct(b.Wins, b.Fights) }
