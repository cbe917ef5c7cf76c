package repository

import (
	"context"
	"testing"

	"boxing-arena-api/internal/arena"
	"boxing-arena-api/internal/models"
	"boxing-arena-api/internal/random"
	"boxing-arena-api/internal/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func seedBoxer(t *testing.T, repo *BoxerRepository, name string, weight, reach float64, age int) *models.Boxer {
	t.Helper()
	b, err := models.NewBoxer(name, weight, 72, reach, age)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), b))
	return b
}

func TestBoxerRepository_CRUD(t *testing.T) {
	repo := NewBoxerRepository(testutil.MustInMemoryDB(t))
	ctx := context.Background()

	ali := seedBoxer(t, repo, "Muhammad Ali", 210, 78, 32)
	require.NotZero(t, ali.ID)

	got, err := repo.GetByID(ctx, ali.ID)
	require.NoError(t, err)
	require.Equal(t, "Muhammad Ali", got.Name)
	require.Equal(t, models.Heavyweight, got.WeightClass)

	got, err = repo.GetByName(ctx, "Muhammad Ali")
	require.NoError(t, err)
	require.Equal(t, ali.ID, got.ID)

	dup, err := models.NewBoxer("Muhammad Ali", 200, 70, 70, 30)
	require.NoError(t, err)
	require.ErrorIs(t, repo.Create(ctx, dup), models.ErrInvalidInput)

	require.NoError(t, repo.Delete(ctx, ali.ID))
	_, err = repo.GetByID(ctx, ali.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	require.ErrorIs(t, repo.Delete(ctx, ali.ID), models.ErrNotFound)
	require.ErrorIs(t, repo.UpdateStats(ctx, ali.ID, models.ResultWin), models.ErrNotFound)

	_, err = repo.GetByName(ctx, "Nobody")
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestBoxerRepository_UpdateStatsAndLeaderboard(t *testing.T) {
	repo := NewBoxerRepository(testutil.MustInMemoryDB(t))
	ctx := context.Background()

	ali := seedBoxer(t, repo, "Muhammad Ali", 210, 78, 32)
	tyson := seedBoxer(t, repo, "Mike Tyson", 220, 71, 24)
	seedBoxer(t, repo, "Rookie", 150, 65, 20)

	// Ali 1-1 (50%), Tyson 2-3 (66.7%).
	for _, step := range []struct {
		id uint
		r  models.Result
	}{
		{ali.ID, models.ResultWin},
		{ali.ID, models.ResultLoss},
		{tyson.ID, models.ResultWin},
		{tyson.ID, models.ResultWin},
		{tyson.ID, models.ResultLoss},
	} {
		require.NoError(t, repo.UpdateStats(ctx, step.id, step.r))
	}
	require.ErrorIs(t, repo.UpdateStats(ctx, ali.ID, "draw"), models.ErrInvalidInput)

	board, err := repo.Leaderboard(ctx, SortByWins)
	require.NoError(t, err)
	names := make([]string, 0, len(board))
	for _, row := range board {
		names = append(names, row.Name)
	}
	if diff := cmp.Diff([]string{"Mike Tyson", "Muhammad Ali"}, names); diff != "" {
		t.Fatalf("leaderboard order mismatch (-want +got):\n%s", diff)
	}
	require.Equal(t, 3, board[0].Fights)
	require.Equal(t, 66.7, board[0].WinPct)

	board, err = repo.Leaderboard(ctx, SortByWinPct)
	require.NoError(t, err)
	require.Equal(t, "Mike Tyson", board[0].Name)
	require.Equal(t, 50.0, board[1].WinPct)

	_, err = repo.Leaderboard(ctx, "age")
	require.ErrorIs(t, err, models.ErrInvalidInput)
}

func TestMealRepository_CRUDAndStats(t *testing.T) {
	repo := NewMealRepository(testutil.MustInMemoryDB(t))
	ctx := context.Background()

	pasta, err := models.NewMeal("Spaghetti", "Italian", 12, models.DifficultyMed)
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, pasta))

	again, err := models.NewMeal("Spaghetti", "Italian", 14, models.DifficultyLow)
	require.NoError(t, err)
	require.ErrorIs(t, repo.Create(ctx, again), models.ErrInvalidInput)

	got, err := repo.GetByName(ctx, "Spaghetti")
	require.NoError(t, err)
	require.Equal(t, pasta.ID, got.ID)

	require.NoError(t, repo.UpdateStats(ctx, pasta.ID, models.ResultWin))
	got, err = repo.GetByID(ctx, pasta.ID)
	require.NoError(t, err)
	require.Equal(t, 1, got.Battles)
	require.Equal(t, 1, got.Wins)

	board, err := repo.Leaderboard(ctx, SortByWinPct)
	require.NoError(t, err)
	require.Len(t, board, 1)
	require.Equal(t, 100.0, board[0].WinPct)

	require.NoError(t, repo.Delete(ctx, pasta.ID))
	_, err = repo.GetByID(ctx, pasta.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
}

func TestCombatants_DriveTheArena(t *testing.T) {
	repo := NewBoxerRepository(testutil.MustInMemoryDB(t))
	ctx := context.Background()
	ali := seedBoxer(t, repo, "Muhammad Ali", 210, 78, 32)
	tyson := seedBoxer(t, repo, "Mike Tyson", 220, 71, 24)

	draw := random.SourceFunc(func(context.Context) (float64, error) { return 0.42, nil })
	ring := arena.New(repo.Combatants(), draw, arena.Options{Name: "ring"})
	require.NoError(t, ring.Prep(ctx, ali.ID))
	require.NoError(t, ring.Prep(ctx, tyson.ID))

	res, err := ring.RunBout(ctx)
	require.NoError(t, err)
	require.Equal(t, "Muhammad Ali", res.WinnerName)

	stored, err := repo.GetByID(ctx, ali.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.Fights)
	require.Equal(t, 1, stored.Wins)

	stored, err = repo.GetByID(ctx, tyson.ID)
	require.NoError(t, err)
	require.Equal(t, 1, stored.Fights)
	require.Zero(t, stored.Wins)

	roster, err := ring.Roster(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 1)
	require.Equal(t, 1, roster[0].(*models.Boxer).Wins)
}

func TestRecordBout_RollsBackWhenLoserWriteFails(t *testing.T) {
	db := testutil.MustInMemoryDB(t)
	boxers := NewBoxerRepository(db)
	meals := NewMealRepository(db)
	ctx := context.Background()

	ali := seedBoxer(t, boxers, "Muhammad Ali", 210, 78, 32)
	tyson := seedBoxer(t, boxers, "Mike Tyson", 220, 71, 24)
	require.NoError(t, boxers.Delete(ctx, tyson.ID))

	err := boxers.RecordBout(ctx, ali.ID, tyson.ID)
	require.ErrorIs(t, err, models.ErrNotFound)
	stored, err := boxers.GetByID(ctx, ali.ID)
	require.NoError(t, err)
	require.Zero(t, stored.Fights)
	require.Zero(t, stored.Wins)

	pasta, err := models.NewMeal("Spaghetti", "Italian", 12, models.DifficultyMed)
	require.NoError(t, err)
	require.NoError(t, meals.Create(ctx, pasta))
	require.ErrorIs(t, meals.RecordBout(ctx, pasta.ID, 999), models.ErrNotFound)
	got, err := meals.GetByID(ctx, pasta.ID)
	require.NoError(t, err)
	require.Zero(t, got.Battles)

	taco, err := models.NewMeal("Taco", "Mexican", 5, models.DifficultyLow)
	require.NoError(t, err)
	require.NoError(t, meals.Create(ctx, taco))
	require.NoError(t, meals.RecordBout(ctx, pasta.ID, taco.ID))
	board, err := meals.Leaderboard(ctx, SortByWins)
	require.NoError(t, err)
	require.Len(t, board, 2)
	require.Equal(t, "Spaghetti", board[0].Name)
	require.Equal(t, 1, board[1].Battles)
	require.Zero(t, board[1].Wins)
}
