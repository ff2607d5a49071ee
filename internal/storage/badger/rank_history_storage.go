package badger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rankscout/internal/common"
	"github.com/ternarybob/rankscout/internal/interfaces"
	"github.com/ternarybob/rankscout/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// ErrHistoryNotFound is returned by Latest when nothing was recorded for the keyword
var ErrHistoryNotFound = errors.New("rank history not found")

// RankHistoryStorage implements interfaces.RankHistoryStorage for Badger
type RankHistoryStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewRankHistoryStorage creates a new RankHistoryStorage instance
func NewRankHistoryStorage(db *BadgerDB, logger arbor.ILogger) interfaces.RankHistoryStorage {
	return &RankHistoryStorage{
		db:     db,
		logger: logger,
	}
}

// normalizeKeyword makes keyword lookups case-insensitive
func normalizeKeyword(keyword string) string {
	return strings.ToLower(strings.TrimSpace(keyword))
}

// SaveResult records one rank observation
func (s *RankHistoryStorage) SaveResult(ctx context.Context, task *models.Task, result *models.RankResult) (*models.RankHistoryEntry, error) {
	if task == nil || result == nil {
		return nil, fmt.Errorf("task and result are required")
	}

	checkedAt := result.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = time.Now()
	}

	entry := &models.RankHistoryEntry{
		ID:              common.NewHistoryID(),
		TaskID:          task.ID,
		Keyword:         normalizeKeyword(task.Keyword),
		TargetURL:       task.TargetURL,
		Platform:        strings.ToLower(task.PlatformKey),
		TargetProductID: result.ProductID(),
		Found:           result.Found,
		Rank:            result.RankValue(),
		TotalProducts:   result.TotalProducts,
		PagesScanned:    result.PagesScanned,
		ProcessingMs:    result.ProcessingTimeMs,
		Error:           result.ErrorMessage(),
		CheckedAt:       checkedAt,
	}

	if err := s.db.Store().Upsert(entry.ID, entry); err != nil {
		return nil, fmt.Errorf("failed to save rank history: %w", err)
	}

	s.logger.Debug().
		Str("id", entry.ID).
		Str("keyword", entry.Keyword).
		Str("platform", entry.Platform).
		Int("rank", entry.Rank).
		Msg("Rank history saved")

	return entry, nil
}

// ListByKeyword returns the newest entries first; limit <= 0 returns all
func (s *RankHistoryStorage) ListByKeyword(ctx context.Context, keyword, platform string, limit int) ([]*models.RankHistoryEntry, error) {
	query := badgerhold.Where("Keyword").Eq(normalizeKeyword(keyword)).
		And("Platform").Eq(strings.ToLower(platform)).
		SortBy("CheckedAt").Reverse()
	if limit > 0 {
		query = query.Limit(limit)
	}

	var entries []models.RankHistoryEntry
	if err := s.db.Store().Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to list rank history: %w", err)
	}

	result := make([]*models.RankHistoryEntry, len(entries))
	for i := range entries {
		result[i] = &entries[i]
	}
	return result, nil
}

// Latest returns the most recent entry for keyword on platform
func (s *RankHistoryStorage) Latest(ctx context.Context, keyword, platform string) (*models.RankHistoryEntry, error) {
	entries, err := s.ListByKeyword(ctx, keyword, platform, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, ErrHistoryNotFound
	}
	return entries[0], nil
}

// DeleteByKeyword removes every entry for keyword on platform and returns how many were removed
func (s *RankHistoryStorage) DeleteByKeyword(ctx context.Context, keyword, platform string) (int, error) {
	query := badgerhold.Where("Keyword").Eq(normalizeKeyword(keyword)).
		And("Platform").Eq(strings.ToLower(platform))

	count, err := s.db.Store().Count(&models.RankHistoryEntry{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count rank history: %w", err)
	}

	if err := s.db.Store().DeleteMatching(&models.RankHistoryEntry{}, query); err != nil {
		return 0, fmt.Errorf("failed to delete rank history: %w", err)
	}

	s.logger.Debug().
		Str("keyword", keyword).
		Str("platform", platform).
		Int("deleted", int(count)).
		Msg("Rank history deleted")

	return int(count), nil
}
