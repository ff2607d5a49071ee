package badger

import (
	"fmt"
	"os"
	"strings"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/rankscout/internal/common"
	"github.com/timshannon/badgerhold/v4"
)

// BadgerDB wraps the badgerhold store holding rank history
type BadgerDB struct {
	store  *badgerhold.Store
	logger arbor.ILogger
	path   string
}

// NewBadgerDB opens (or creates) the rank history database at config.Path.
// With ResetOnStartup the directory is wiped first.
func NewBadgerDB(logger arbor.ILogger, config *common.BadgerConfig) (*BadgerDB, error) {
	if config == nil || strings.TrimSpace(config.Path) == "" {
		return nil, fmt.Errorf("badger path is required")
	}
	path := config.Path

	if config.ResetOnStartup {
		if err := os.RemoveAll(path); err != nil {
			return nil, fmt.Errorf("failed to reset rank history at %s: %w", path, err)
		}
		logger.Info().Str("path", path).Msg("Rank history reset on startup")
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	options := badgerhold.DefaultOptions
	options.Options = badgerdb.DefaultOptions(path).
		WithLogger(&badgerLogger{logger: logger}).
		WithLoggingLevel(badgerdb.WARNING)

	store, err := badgerhold.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to open rank history at %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Msg("Rank history store opened")

	return &BadgerDB{
		store:  store,
		logger: logger,
		path:   path,
	}, nil
}

// Store returns the underlying badgerhold store
func (b *BadgerDB) Store() *badgerhold.Store {
	return b.store
}

// Close flushes and closes the store
func (b *BadgerDB) Close() error {
	if b.store == nil {
		return nil
	}
	if err := b.store.Close(); err != nil {
		return fmt.Errorf("failed to close rank history at %s: %w", b.path, err)
	}
	b.store = nil
	return nil
}

// badgerLogger forwards badger's internal logging to arbor
type badgerLogger struct {
	logger arbor.ILogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace().Str("component", "badger").Msg(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
