// Package seed loads boxers and meals from a YAML fixture into the store.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"boxing-arena-api/internal/logger"
	"boxing-arena-api/internal/models"
	"boxing-arena-api/internal/repository"

	"gopkg.in/yaml.v3"
)

// Fixture is the document shape:
//
//	boxers:
//	  - {name: Muhammad Ali, weight: 210, height: 75, reach: 78, age: 32}
//	meals:
//	  - {meal: Spaghetti, cuisine: Italian, price: 12.5, difficulty: MED}
type Fixture struct {
	Boxers []BoxerSeed `yaml:"boxers"`
	Meals  []MealSeed  `yaml:"meals"`
}

type BoxerSeed struct {
	Name   string  `yaml:"name"`
	Weight float64 `yaml:"weight"`
	Height float64 `yaml:"height"`
	Reach  float64 `yaml:"reach"`
	Age    int     `yaml:"age"`
}

type MealSeed struct {
	Meal       string  `yaml:"meal"`
	Cuisine    string  `yaml:"cuisine"`
	Price      float64 `yaml:"price"`
	Difficulty string  `yaml:"difficulty"`
}

// Report counts what Apply did.
type Report struct {
	BoxersCreated int
	MealsCreated  int
	Skipped       int
}

// Parse decodes a fixture. Unknown keys are rejected.
func Parse(r io.Reader) (*Fixture, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f Fixture
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return &f, nil
		}
		return nil, fmt.Errorf("%w: decode fixture: %w", models.ErrInvalidInput, err)
	}
	return &f, nil
}

// Apply creates every record in f. Records that fail validation or already
// exist are skipped with a warning; store failures abort.
func Apply(ctx context.Context, f *Fixture, boxers *repository.BoxerRepository, meals *repository.MealRepository, log logger.Logger) (Report, error) {
	log = log.Named("seed")
	var rep Report

	for _, s := range f.Boxers {
		b, err := models.NewBoxer(s.Name, s.Weight, s.Height, s.Reach, s.Age)
		if err == nil {
			err = boxers.Create(ctx, b)
		}
		switch {
		case errors.Is(err, models.ErrInvalidInput):
			log.Warn(ctx, "skipping boxer", logger.String("name", s.Name), logger.Error(err))
			rep.Skipped++
		case err != nil:
			return rep, fmt.Errorf("seed boxer %q: %w", s.Name, err)
		default:
			rep.BoxersCreated++
		}
	}

	for _, s := range f.Meals {
		m, err := models.NewMeal(s.Meal, s.Cuisine, s.Price, models.Difficulty(strings.ToUpper(s.Difficulty)))
		if err == nil {
			err = meals.Create(ctx, m)
		}
		switch {
		case errors.Is(err, models.ErrInvalidInput):
			log.Warn(ctx, "skipping meal", logger.String("meal", s.Meal), logger.Error(err))
			rep.Skipped++
		case err != nil:
			return rep, fmt.Errorf("seed meal %q: %w", s.Meal, err)
		default:
			rep.MealsCreated++
		}
	}

	log.Info(ctx, "fixture applied",
		logger.Int("boxers", rep.BoxersCreated), logger.Int("meals", rep.MealsCreated), logger.Int("skipped", rep.Skipped))
	return rep, nil
}
