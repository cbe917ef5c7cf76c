// Package arena runs single-elimination bouts between two prepared
// combatants. Combatant records are resolved through a TTL read-through
// cache in front of the backing store; each bout is biased by a skill
// score and decided by an external uniform draw.
//
// Roster state machine:
//
//	Empty -> Prep -> OneFilled -> Prep -> Full -> RunBout -> OneFilled (winner)
//
// RunBout is the only transition out of Full. Clear empties the roster from
// any state.
package arena

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"boxing-arena-api/internal/cache"
	"boxing-arena-api/internal/logger"
	"boxing-arena-api/internal/models"
	"boxing-arena-api/internal/random"

	"github.com/google/uuid"
)

// Capacity is the exact roster size a bout needs.
const Capacity = 2

var (
	ErrCapacityExceeded       = errors.New("roster is full")
	ErrInsufficientCombatants = errors.New("there must be two combatants to start a bout")
)

// Combatant is the read-only view of a store record that the arena scores.
type Combatant interface {
	CombatantID() uint
	DisplayName() string
	// SkillScore is deterministic in the record's attributes. It fails with
	// models.ErrInvalidInput for attributes outside the known buckets.
	SkillScore() (float64, error)
}

// Store is the persistent side of the arena.
type Store interface {
	// GetByID fails with models.ErrNotFound for absent or deleted ids.
	GetByID(ctx context.Context, id uint) (Combatant, error)
	// RecordBout counts a win for winnerID and a loss for loserID. Either
	// both are written or neither is.
	RecordBout(ctx context.Context, winnerID, loserID uint) error
}

// BoutResult describes a finished bout.
type BoutResult struct {
	ID          uuid.UUID  `json:"id"`
	Arena       string     `json:"arena"`
	WinnerID    uint       `json:"winner_id"`
	WinnerName  string     `json:"winner"`
	LoserID     uint       `json:"loser_id"`
	LoserName   string     `json:"loser"`
	Scores      [2]float64 `json:"scores"`
	Probability float64    `json:"probability"`
	Draw        float64    `json:"draw"`
	FinishedAt  time.Time  `json:"finished_at"`
}

// Options configures an Arena.
type Options struct {
	// Name labels logs, metrics and bout events, e.g. "ring" or "kitchen".
	Name string

	// TTL for cached combatants; zero means cache.DefaultTTL.
	TTL time.Duration

	// Now is the clock for cache expiry and BoutResult.FinishedAt.
	Now func() time.Time

	// Normalizer maps the skill gap to a probability. Nil means Logistic.
	Normalizer Normalizer

	CacheMetrics cache.Metrics
	Logger       logger.Logger

	// OnBout is called after a bout has been persisted and the roster lock
	// released. It runs on the caller's goroutine.
	OnBout func(ctx context.Context, res BoutResult)
}

// Arena holds the roster and the combatant cache.
type Arena struct {
	name      string
	store     Store
	rng       random.Source
	normalize Normalizer
	now       func() time.Time
	log       logger.Logger
	onBout    func(ctx context.Context, res BoutResult)

	cache *cache.TTLCache[uint, Combatant]

	mu     sync.Mutex
	roster []uint
}

// New builds an Arena over store, drawing from rng.
func New(store Store, rng random.Source, opts Options) *Arena {
	if opts.Name == "" {
		opts.Name = "arena"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Normalizer == nil {
		opts.Normalizer = Logistic
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}
	a := &Arena{
		name:      opts.Name,
		store:     store,
		rng:       rng,
		normalize: opts.Normalizer,
		now:       opts.Now,
		log:       opts.Logger.Named(opts.Name),
		onBout:    opts.OnBout,
		roster:    make([]uint, 0, Capacity),
	}
	a.cache = cache.New[uint, Combatant](store.GetByID, cache.Options{
		TTL:     opts.TTL,
		Now:     opts.Now,
		Metrics: opts.CacheMetrics,
	})
	return a
}

// Name returns the arena label.
func (a *Arena) Name() string { return a.name }

// Get resolves one combatant through the cache.
func (a *Arena) Get(ctx context.Context, id uint) (Combatant, error) {
	c, err := a.cache.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	a.log.Debug(ctx, "resolved combatant", logger.Uint("id", id), logger.String("name", c.DisplayName()))
	return c, nil
}

// Prep appends id to the roster. It fails with ErrCapacityExceeded when the
// roster is full and with models.ErrNotFound when id does not resolve.
// Preparing an id that is already in the roster is a logged no-op.
func (a *Arena) Prep(ctx context.Context, id uint) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.roster) >= Capacity {
		a.log.Error(ctx, "attempted to add combatant but the roster is full", logger.Uint("id", id))
		return fmt.Errorf("%w: cannot add combatant %d", ErrCapacityExceeded, id)
	}
	if slices.Contains(a.roster, id) {
		a.log.Warn(ctx, "combatant already in the roster", logger.Uint("id", id))
		return nil
	}

	c, err := a.Get(ctx, id)
	if err != nil {
		a.log.Error(ctx, "cannot prep combatant", logger.Uint("id", id), logger.Error(err))
		return err
	}

	a.roster = append(a.roster, id)
	a.log.Info(ctx, "combatant added to the roster",
		logger.Uint("id", id), logger.String("name", c.DisplayName()), logger.Int("size", len(a.roster)))
	return nil
}

// Clear empties the roster. Clearing an empty roster only logs a warning.
func (a *Arena) Clear(ctx context.Context) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.roster) == 0 {
		a.log.Warn(ctx, "attempted to clear an empty roster")
		return
	}
	a.roster = a.roster[:0]
	a.log.Info(ctx, "roster cleared")
}

// IDs returns a copy of the roster ids in insertion order.
func (a *Arena) IDs() []uint {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.roster)
}

// Roster resolves every prepared id through the cache. Ids that no longer
// exist in the store are pruned from the roster with a warning; any other
// store failure is returned.
func (a *Arena) Roster(ctx context.Context) ([]Combatant, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resolveLocked(ctx)
}

func (a *Arena) resolveLocked(ctx context.Context) ([]Combatant, error) {
	combatants := make([]Combatant, 0, len(a.roster))
	kept := a.roster[:0]
	var firstErr error
	for _, id := range a.roster {
		if firstErr != nil {
			kept = append(kept, id)
			continue
		}
		c, err := a.Get(ctx, id)
		switch {
		case errors.Is(err, models.ErrNotFound):
			a.log.Warn(ctx, "combatant removed from the roster because it was not found", logger.Uint("id", id))
		case err != nil:
			firstErr = err
			kept = append(kept, id)
		default:
			combatants = append(combatants, c)
			kept = append(kept, id)
		}
	}
	a.roster = kept
	if firstErr != nil {
		return nil, firstErr
	}
	if len(a.roster) == 0 {
		a.log.Warn(ctx, "retrieving combatants from an empty roster")
	}
	return combatants, nil
}

// RunBout fights the two prepared combatants. The first prepared combatant
// wins when the draw is strictly below the normalized skill gap; otherwise
// the second wins. Both results are recorded in one store call, both cache
// entries are dropped, and the loser leaves the roster. A failed bout leaves
// stats, roster and cache as they were.
func (a *Arena) RunBout(ctx context.Context) (BoutResult, error) {
	res, err := a.runBout(ctx)
	if err != nil {
		return BoutResult{}, err
	}
	if a.onBout != nil {
		a.onBout(ctx, res)
	}
	return res, nil
}

func (a *Arena) runBout(ctx context.Context) (BoutResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.roster) != Capacity {
		a.log.Error(ctx, "not enough combatants to start a bout", logger.Int("size", len(a.roster)))
		return BoutResult{}, ErrInsufficientCombatants
	}

	combatants, err := a.resolveLocked(ctx)
	if err != nil {
		return BoutResult{}, err
	}
	if len(combatants) != Capacity {
		return BoutResult{}, ErrInsufficientCombatants
	}
	first, second := combatants[0], combatants[1]
	a.log.Info(ctx, "bout started",
		logger.String("combatant_1", first.DisplayName()), logger.String("combatant_2", second.DisplayName()))

	score1, err := first.SkillScore()
	if err != nil {
		return BoutResult{}, fmt.Errorf("score %q: %w", first.DisplayName(), err)
	}
	score2, err := second.SkillScore()
	if err != nil {
		return BoutResult{}, fmt.Errorf("score %q: %w", second.DisplayName(), err)
	}

	p := a.normalize(Delta(score1, score2))
	a.log.Debug(ctx, "scores computed",
		logger.Float64("score_1", score1), logger.Float64("score_2", score2), logger.Float64("probability", p))

	draw, err := a.rng.Next(ctx)
	if err != nil {
		a.log.Error(ctx, "random draw failed", logger.Error(err))
		return BoutResult{}, fmt.Errorf("draw: %w", err)
	}
	a.log.Debug(ctx, "random draw", logger.Float64("draw", draw))

	winner, loser := second, first
	if draw < p {
		winner, loser = first, second
	}

	if err := a.store.RecordBout(ctx, winner.CombatantID(), loser.CombatantID()); err != nil {
		a.log.Error(ctx, "failed to record bout", logger.Error(err))
		return BoutResult{}, fmt.Errorf("record bout %d vs %d: %w", winner.CombatantID(), loser.CombatantID(), err)
	}
	a.cache.Invalidate(winner.CombatantID())
	a.cache.Invalidate(loser.CombatantID())

	a.roster = slices.DeleteFunc(a.roster, func(id uint) bool { return id == loser.CombatantID() })

	res := BoutResult{
		ID:          uuid.New(),
		Arena:       a.name,
		WinnerID:    winner.CombatantID(),
		WinnerName:  winner.DisplayName(),
		LoserID:     loser.CombatantID(),
		LoserName:   loser.DisplayName(),
		Scores:      [2]float64{score1, score2},
		Probability: p,
		Draw:        draw,
		FinishedAt:  a.now(),
	}
	a.log.Info(ctx, "the winner is", logger.String("winner", res.WinnerName), logger.String("bout_id", res.ID.String()))
	return res, nil
}

// ClearCache drops every cached combatant.
func (a *Arena) ClearCache(ctx context.Context) {
	a.cache.InvalidateAll()
	a.log.Info(ctx, "combatant cache cleared")
}

// Forget drops one cached combatant, e.g. after it was deleted from the store.
func (a *Arena) Forget(id uint) {
	a.cache.Invalidate(id)
}

// CachedCount reports the number of live cache entries.
func (a *Arena) CachedCount() int {
	return a.cache.Len()
}
