package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/rankscout/internal/common"
	"github.com/ternarybob/rankscout/internal/interfaces"
	"github.com/ternarybob/rankscout/internal/models"
)

func newTestHistoryStorage(t *testing.T) interfaces.RankHistoryStorage {
	t.Helper()

	logger := arbor.NewLogger()
	db, err := NewBadgerDB(logger, &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewRankHistoryStorage(db, logger)
}

func foundResult(rank int, checkedAt time.Time) *models.RankResult {
	id := "7000000001"
	return &models.RankResult{
		Found:           true,
		Rank:            &rank,
		TotalProducts:   120,
		TargetProductID: &id,
		PagesScanned:    2,
		Platform:        "coupang",
		CheckedAt:       checkedAt,
	}
}

func TestNewBadgerDB_RequiresPath(t *testing.T) {
	_, err := NewBadgerDB(arbor.NewLogger(), &common.BadgerConfig{})
	assert.Error(t, err)
}

func TestRankHistoryStorage_SaveAndLatest(t *testing.T) {
	storage := newTestHistoryStorage(t)
	ctx := context.Background()

	task := &models.Task{
		ID:          "task_1",
		Keyword:     "  Wireless Mouse ",
		TargetURL:   "https://www.coupang.com/vp/products/7000000001",
		PlatformKey: "Coupang",
	}

	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	first, err := storage.SaveResult(ctx, task, foundResult(14, base))
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)
	assert.Equal(t, "wireless mouse", first.Keyword)
	assert.Equal(t, "coupang", first.Platform)
	assert.Equal(t, "7000000001", first.TargetProductID)
	assert.Equal(t, 14, first.Rank)

	_, err = storage.SaveResult(ctx, task, foundResult(9, base.Add(time.Hour)))
	require.NoError(t, err)

	latest, err := storage.Latest(ctx, "wireless mouse", "coupang")
	require.NoError(t, err)
	assert.Equal(t, 9, latest.Rank)
	assert.Equal(t, "task_1", latest.TaskID)
}

func TestRankHistoryStorage_SaveFailedResult(t *testing.T) {
	storage := newTestHistoryStorage(t)

	task := &models.Task{Keyword: "desk", TargetURL: "https://example.com/none", PlatformKey: "coupang"}
	result := models.NewFailedResult(task, nil, "Could not extract product ID from URL")

	entry, err := storage.SaveResult(context.Background(), task, result)
	require.NoError(t, err)
	assert.False(t, entry.Found)
	assert.Equal(t, 0, entry.Rank)
	assert.Empty(t, entry.TargetProductID)
	assert.Equal(t, "Could not extract product ID from URL", entry.Error)
}

func TestRankHistoryStorage_SaveRequiresTaskAndResult(t *testing.T) {
	storage := newTestHistoryStorage(t)

	_, err := storage.SaveResult(context.Background(), nil, &models.RankResult{})
	assert.Error(t, err)

	_, err = storage.SaveResult(context.Background(), &models.Task{}, nil)
	assert.Error(t, err)
}

func TestRankHistoryStorage_ListByKeyword(t *testing.T) {
	storage := newTestHistoryStorage(t)
	ctx := context.Background()

	mouse := &models.Task{Keyword: "mouse", TargetURL: "u", PlatformKey: "coupang"}
	keyboard := &models.Task{Keyword: "keyboard", TargetURL: "u", PlatformKey: "coupang"}
	naverMouse := &models.Task{Keyword: "mouse", TargetURL: "u", PlatformKey: "naver"}

	base := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		_, err := storage.SaveResult(ctx, mouse, foundResult(i, base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}
	_, err := storage.SaveResult(ctx, keyboard, foundResult(40, base))
	require.NoError(t, err)
	_, err = storage.SaveResult(ctx, naverMouse, foundResult(50, base))
	require.NoError(t, err)

	all, err := storage.ListByKeyword(ctx, "MOUSE", "coupang", 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []int{3, 2, 1}, []int{all[0].Rank, all[1].Rank, all[2].Rank})

	limited, err := storage.ListByKeyword(ctx, "mouse", "coupang", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)

	none, err := storage.ListByKeyword(ctx, "monitor", "coupang", 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRankHistoryStorage_LatestNotFound(t *testing.T) {
	storage := newTestHistoryStorage(t)

	_, err := storage.Latest(context.Background(), "nothing", "coupang")
	assert.ErrorIs(t, err, ErrHistoryNotFound)
}

func TestRankHistoryStorage_DeleteByKeyword(t *testing.T) {
	storage := newTestHistoryStorage(t)
	ctx := context.Background()

	mouse := &models.Task{Keyword: "mouse", TargetURL: "u", PlatformKey: "coupang"}
	keyboard := &models.Task{Keyword: "keyboard", TargetURL: "u", PlatformKey: "coupang"}

	now := time.Now()
	for i := 0; i < 2; i++ {
		_, err := storage.SaveResult(ctx, mouse, foundResult(i+1, now))
		require.NoError(t, err)
	}
	_, err := storage.SaveResult(ctx, keyboard, foundResult(7, now))
	require.NoError(t, err)

	deleted, err := storage.DeleteByKeyword(ctx, "mouse", "coupang")
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, err := storage.ListByKeyword(ctx, "mouse", "coupang", 0)
	require.NoError(t, err)
	assert.Empty(t, remaining)

	kept, err := storage.ListByKeyword(ctx, "keyboard", "coupang", 0)
	require.NoError(t, err)
	assert.Len(t, kept, 1)
}

func TestNewBadgerDB_ResetOnStartup(t *testing.T) {
	logger := arbor.NewLogger()
	path := filepath.Join(t.TempDir(), "db")

	db, err := NewBadgerDB(logger, &common.BadgerConfig{Path: path})
	require.NoError(t, err)
	storage := NewRankHistoryStorage(db, logger)
	_, err = storage.SaveResult(context.Background(), &models.Task{Keyword: "k", TargetURL: "u", PlatformKey: "coupang"}, foundResult(1, time.Now()))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = NewBadgerDB(logger, &common.BadgerConfig{Path: path, ResetOnStartup: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = NewRankHistoryStorage(db, logger).Latest(context.Background(), "k", "coupang")
	assert.ErrorIs(t, err, ErrHistoryNotFound)
}
