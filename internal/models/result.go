package models

import (
	"fmt"
	"math"
)

// Result is the outcome of a bout for one combatant.
type Result string

const (
	ResultWin  Result = "win"
	ResultLoss Result = "loss"
)

// Validate rejects anything other than win or loss.
func (r Result) Validate() error {
	switch r {
	case ResultWin, ResultLoss:
		return nil
	}
	return fmt.Errorf("%w: result must be 'win' or 'loss', got %q", ErrInvalidInput, string(r))
}

// WinPct returns wins/total as a percentage rounded to one decimal place.
func WinPct(wins, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round(float64(wins)/float64(total)*1000) / 10
}
