package arena

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"boxing-arena-api/internal/models"
	"boxing-arena-api/internal/random"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type statCall struct {
	ID     uint
	Result models.Result
}

type fakeStore struct {
	mu        sync.Mutex
	records   map[uint]Combatant
	gets      map[uint]int
	stats     []statCall
	getErr    error
	updateErr error
	// lossErr fails the loser's write after the winner's was staged.
	lossErr error
}

func newFakeStore(records ...Combatant) *fakeStore {
	s := &fakeStore{records: map[uint]Combatant{}, gets: map[uint]int{}}
	for _, r := range records {
		s.records[r.CombatantID()] = r
	}
	return s
}

func (s *fakeStore) GetByID(_ context.Context, id uint) (Combatant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets[id]++
	if s.getErr != nil {
		return nil, s.getErr
	}
	r, ok := s.records[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return r, nil
}

func (s *fakeStore) RecordBout(_ context.Context, winnerID, loserID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.updateErr != nil {
		return s.updateErr
	}
	staged := []statCall{{ID: winnerID, Result: models.ResultWin}}
	if s.lossErr != nil {
		return s.lossErr
	}
	staged = append(staged, statCall{ID: loserID, Result: models.ResultLoss})
	s.stats = append(s.stats, staged...)
	return nil
}

func (s *fakeStore) delete(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
}

func (s *fakeStore) getCount(id uint) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets[id]
}

func fixedDraw(v float64) random.Source {
	return random.SourceFunc(func(context.Context) (float64, error) { return v, nil })
}

var (
	ali   = &models.Boxer{ID: 1, Name: "Muhammad Ali", Weight: 210, Height: 75, Reach: 78, Age: 32}
	tyson = &models.Boxer{ID: 2, Name: "Mike Tyson", Weight: 220, Height: 70, Reach: 71, Age: 24}
	frazr = &models.Boxer{ID: 3, Name: "Joe Frazier", Weight: 205, Height: 71, Reach: 73, Age: 30}
)

func prepBoth(t *testing.T, a *Arena, ids ...uint) {
	t.Helper()
	for _, id := range ids {
		require.NoError(t, a.Prep(context.Background(), id))
	}
}

func TestPrep_CapacityInvariant(t *testing.T) {
	a := New(newFakeStore(ali, tyson, frazr), fixedDraw(0.5), Options{})
	ctx := context.Background()

	require.NoError(t, a.Prep(ctx, 1))
	require.NoError(t, a.Prep(ctx, 2))
	err := a.Prep(ctx, 3)
	require.ErrorIs(t, err, ErrCapacityExceeded)
	require.Equal(t, []uint{1, 2}, a.IDs())
}

func TestPrep_UnknownIDLeavesRosterUnchanged(t *testing.T) {
	a := New(newFakeStore(ali), fixedDraw(0.5), Options{})

	err := a.Prep(context.Background(), 42)
	require.ErrorIs(t, err, models.ErrNotFound)
	require.Empty(t, a.IDs())
}

func TestPrep_DuplicateIsNoop(t *testing.T) {
	a := New(newFakeStore(ali), fixedDraw(0.5), Options{})
	prepBoth(t, a, 1, 1)
	require.Equal(t, []uint{1}, a.IDs())
}

func TestRunBout_RequiresExactlyTwo(t *testing.T) {
	store := newFakeStore(ali, tyson)
	a := New(store, fixedDraw(0.1), Options{})
	ctx := context.Background()

	_, err := a.RunBout(ctx)
	require.ErrorIs(t, err, ErrInsufficientCombatants)

	prepBoth(t, a, 1)
	_, err = a.RunBout(ctx)
	require.ErrorIs(t, err, ErrInsufficientCombatants)
	require.Empty(t, store.stats)
	require.Equal(t, []uint{1}, a.IDs())
}

func TestRunBout_FavouredFirstCombatantWins(t *testing.T) {
	store := newFakeStore(ali, tyson)
	var observed []BoutResult
	a := New(store, fixedDraw(0.42), Options{
		Name:   "ring",
		OnBout: func(_ context.Context, res BoutResult) { observed = append(observed, res) },
	})
	prepBoth(t, a, 1, 2)

	res, err := a.RunBout(context.Background())
	require.NoError(t, err)

	require.Equal(t, "Muhammad Ali", res.WinnerName)
	require.Equal(t, uint(1), res.WinnerID)
	require.Equal(t, "Mike Tyson", res.LoserName)
	require.InDelta(t, 2527.8, res.Scores[0], 1e-9)
	require.InDelta(t, 2206.1, res.Scores[1], 1e-9)
	require.Greater(t, res.Probability, res.Draw)
	require.Equal(t, "ring", res.Arena)

	want := []statCall{{ID: 1, Result: models.ResultWin}, {ID: 2, Result: models.ResultLoss}}
	if diff := cmp.Diff(want, store.stats); diff != "" {
		t.Fatalf("stat updates mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []uint{1}, a.IDs())
	require.Len(t, observed, 1)
	require.Equal(t, res.ID, observed[0].ID)
}

func TestRunBout_DrawAtOrAboveProbabilityPicksSecond(t *testing.T) {
	twin := &models.Boxer{ID: 4, Name: "Mike Tyson", Weight: 220, Reach: 71, Age: 24}
	store := newFakeStore(tyson, twin)
	// Equal scores give p = 0.5 under the logistic normalizer.
	a := New(store, fixedDraw(0.5), Options{})
	prepBoth(t, a, 2, 4)

	res, err := a.RunBout(context.Background())
	require.NoError(t, err)
	require.Equal(t, 0.5, res.Probability)
	require.Equal(t, uint(4), res.WinnerID)
	require.Equal(t, []uint{4}, a.IDs())
}

func TestRunBout_WinnerCanFightAgain(t *testing.T) {
	store := newFakeStore(ali, tyson, frazr)
	a := New(store, fixedDraw(0), Options{})
	ctx := context.Background()
	prepBoth(t, a, 1, 2)

	_, err := a.RunBout(ctx)
	require.NoError(t, err)
	require.NoError(t, a.Prep(ctx, 3))

	res, err := a.RunBout(ctx)
	require.NoError(t, err)
	require.Equal(t, uint(1), res.WinnerID)
	require.Len(t, store.stats, 4)
}

func TestRunBout_DrawFailureLeavesStateUntouched(t *testing.T) {
	store := newFakeStore(ali, tyson)
	failing := random.SourceFunc(func(context.Context) (float64, error) {
		return 0, random.ErrTransport
	})
	a := New(store, failing, Options{})
	prepBoth(t, a, 1, 2)

	_, err := a.RunBout(context.Background())
	require.ErrorIs(t, err, random.ErrTransport)
	require.Empty(t, store.stats)
	require.Equal(t, []uint{1, 2}, a.IDs())
}

func TestRunBout_StoreUpdateFailurePropagates(t *testing.T) {
	store := newFakeStore(ali, tyson)
	a := New(store, fixedDraw(0.1), Options{})
	prepBoth(t, a, 1, 2)

	boom := errors.New("database is locked")
	store.updateErr = boom
	_, err := a.RunBout(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, []uint{1, 2}, a.IDs())
}

func TestRunBout_LoserWriteFailureRecordsNothing(t *testing.T) {
	store := newFakeStore(ali, tyson)
	a := New(store, fixedDraw(0.1), Options{})
	ctx := context.Background()
	prepBoth(t, a, 1, 2)

	store.lossErr = errors.New("disk I/O error")
	_, err := a.RunBout(ctx)
	require.ErrorIs(t, err, store.lossErr)
	require.Empty(t, store.stats)
	require.Equal(t, []uint{1, 2}, a.IDs())

	store.lossErr = nil
	res, err := a.RunBout(ctx)
	require.NoError(t, err)
	require.Equal(t, uint(1), res.WinnerID)
	want := []statCall{{ID: 1, Result: models.ResultWin}, {ID: 2, Result: models.ResultLoss}}
	if diff := cmp.Diff(want, store.stats); diff != "" {
		t.Fatalf("stat updates mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, []uint{1}, a.IDs())
}

func TestRunBout_OnBoutRunsOutsideRosterLock(t *testing.T) {
	store := newFakeStore(ali, tyson)
	var a *Arena
	var lockFree bool
	var roster []uint
	a = New(store, fixedDraw(0.1), Options{
		OnBout: func(context.Context, BoutResult) {
			if lockFree = a.mu.TryLock(); lockFree {
				a.mu.Unlock()
				roster = a.IDs()
			}
		},
	})
	prepBoth(t, a, 1, 2)

	_, err := a.RunBout(context.Background())
	require.NoError(t, err)
	require.True(t, lockFree)
	require.Equal(t, []uint{1}, roster)
}

func TestRunBout_InvalidAttributesFailFast(t *testing.T) {
	bad := &models.Meal{ID: 9, Name: "Mystery", Cuisine: "Fusion", Price: 10, Difficulty: "EXTREME"}
	good := &models.Meal{ID: 10, Name: "Pho", Cuisine: "Vietnamese", Price: 11, Difficulty: models.DifficultyMed}
	store := newFakeStore(good, bad)
	a := New(store, fixedDraw(0.1), Options{Normalizer: Linear})
	prepBoth(t, a, 10, 9)

	_, err := a.RunBout(context.Background())
	require.ErrorIs(t, err, models.ErrInvalidInput)
	require.Empty(t, store.stats)
}

func TestRunBout_MealsUseLinearNormalization(t *testing.T) {
	pasta := &models.Meal{ID: 1, Name: "Spaghetti", Cuisine: "Italian", Price: 12, Difficulty: models.DifficultyMed}
	taco := &models.Meal{ID: 2, Name: "Taco", Cuisine: "Mexican", Price: 5, Difficulty: models.DifficultyLow}
	store := newFakeStore(pasta, taco)
	// scores: 12*7-2 = 82, 5*7-3 = 32; p = 50/100 = 0.5
	a := New(store, fixedDraw(0.49), Options{Normalizer: Linear})
	prepBoth(t, a, 1, 2)

	res, err := a.RunBout(context.Background())
	require.NoError(t, err)
	require.InDelta(t, 0.5, res.Probability, 1e-9)
	require.Equal(t, "Spaghetti", res.WinnerName)
}

func TestRoster_UsesCacheWithinTTL(t *testing.T) {
	store := newFakeStore(ali, tyson)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	a := New(store, fixedDraw(0.5), Options{TTL: time.Minute, Now: clock})
	ctx := context.Background()
	prepBoth(t, a, 1, 2)

	roster, err := a.Roster(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	require.Equal(t, "Muhammad Ali", roster[0].DisplayName())
	require.Equal(t, 1, store.getCount(1))

	now = now.Add(61 * time.Second)
	_, err = a.Roster(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, store.getCount(1))
	require.Equal(t, 2, a.CachedCount())
}

func TestRoster_PrunesMissingCombatants(t *testing.T) {
	store := newFakeStore(ali, tyson)
	a := New(store, fixedDraw(0.5), Options{})
	ctx := context.Background()
	prepBoth(t, a, 1, 2)

	store.delete(2)
	a.Forget(2)

	roster, err := a.Roster(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	require.Equal(t, []uint{1}, a.IDs())

	_, err = a.RunBout(ctx)
	require.ErrorIs(t, err, ErrInsufficientCombatants)
}

func TestRoster_TransportErrorPropagates(t *testing.T) {
	store := newFakeStore(ali)
	a := New(store, fixedDraw(0.5), Options{})
	prepBoth(t, a, 1)
	a.ClearCache(context.Background())

	boom := errors.New("connection refused")
	store.getErr = boom
	_, err := a.Roster(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, []uint{1}, a.IDs())
}

func TestClear_EmptyIsNoop(t *testing.T) {
	a := New(newFakeStore(ali, tyson), fixedDraw(0.5), Options{})
	ctx := context.Background()

	require.NotPanics(t, func() { a.Clear(ctx) })
	prepBoth(t, a, 1, 2)
	a.Clear(ctx)
	require.Empty(t, a.IDs())
	prepBoth(t, a, 2)
	require.Equal(t, []uint{2}, a.IDs())
}

func TestPrep_ConcurrentCallersRespectCapacity(t *testing.T) {
	records := make([]Combatant, 0, 20)
	for i := uint(1); i <= 20; i++ {
		records = append(records, &models.Boxer{ID: i, Name: "Boxer", Weight: 150, Reach: 70, Age: 30})
	}
	a := New(newFakeStore(records...), fixedDraw(0.5), Options{})

	var ok, full atomic.Int32
	var wg sync.WaitGroup
	for i := uint(1); i <= 20; i++ {
		wg.Add(1)
		go func(id uint) {
			defer wg.Done()
			err := a.Prep(context.Background(), id)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrCapacityExceeded):
				full.Add(1)
			}
		}(i)
	}
	wg.Wait()

	require.EqualValues(t, 2, ok.Load())
	require.EqualValues(t, 18, full.Load())
	require.Len(t, a.IDs(), 2)
}

func TestNormalizers(t *testing.T) {
	require.Equal(t, 0.5, Logistic(0))
	require.InDelta(t, 1.0, Logistic(Delta(2527.8, 2206.1)), 1e-12)
	require.InDelta(t, 0.25, Linear(Delta(10, 35)), 1e-12)
}
