package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kirillkom/sentiment-analyzer/internal/infrastructure/repository/memory"
)

// NewStore returns the in-memory engine restored from the analyses table, with
// every later mutation written through to it under the engine's lock.
func NewStore(ctx context.Context, db *sql.DB, logger *slog.Logger, opts ...memory.Option) (*memory.Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	journal := NewJournal(db)
	if err := journal.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	records, err := journal.LoadAll(ctx)
	if err != nil {
		return nil, err
	}

	store := memory.NewStore(append(opts, memory.WithJournal(journal))...)
	if err := store.Load(records); err != nil {
		return nil, fmt.Errorf("restore analyses: %w", err)
	}
	logger.Info("analysis_store_restored", "backend", "postgres", "records", len(records))
	return store, nil
}
