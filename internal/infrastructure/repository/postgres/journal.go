package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/sentiment-analyzer/internal/core/domain"
)

const schemaLockID int64 = 2024040101

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// Journal mirrors every record mutation into the analyses table.
type Journal struct {
	db *sql.DB
}

func NewJournal(db *sql.DB) *Journal {
	return &Journal{db: db}
}

func (j *Journal) EnsureSchema(ctx context.Context) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across CLI and worker startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS analyses (
	id TEXT PRIMARY KEY,
	client_name TEXT NOT NULL,
	document_id TEXT NOT NULL,
	content TEXT NOT NULL,
	sentiment TEXT NOT NULL,
	confidence DOUBLE PRECISION NOT NULL,
	channel TEXT NOT NULL,
	emotions JSONB NOT NULL,
	metrics JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_analyses_client_name ON analyses(client_name);
CREATE INDEX IF NOT EXISTS idx_analyses_created_at ON analyses(created_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (j *Journal) Upsert(ctx context.Context, r domain.AnalysisRecord) error {
	emotionsJSON, err := json.Marshal(r.Emotions)
	if err != nil {
		return domain.WrapError(domain.ErrPersistence, "marshal emotions", err)
	}
	metricsJSON, err := json.Marshal(r.Metrics)
	if err != nil {
		return domain.WrapError(domain.ErrPersistence, "marshal metrics", err)
	}

	_, err = j.db.ExecContext(ctx, `
INSERT INTO analyses (
	id, client_name, document_id, content, sentiment, confidence, channel, emotions, metrics, created_at, updated_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
ON CONFLICT (id) DO UPDATE SET
	client_name = EXCLUDED.client_name,
	document_id = EXCLUDED.document_id,
	content = EXCLUDED.content,
	sentiment = EXCLUDED.sentiment,
	confidence = EXCLUDED.confidence,
	channel = EXCLUDED.channel,
	emotions = EXCLUDED.emotions,
	metrics = EXCLUDED.metrics,
	updated_at = EXCLUDED.updated_at
`,
		r.ID, r.ClientName, r.DocumentID, r.Content, string(r.Sentiment), r.Confidence, r.Channel,
		emotionsJSON, metricsJSON, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return domain.WrapError(domain.ErrPersistence, "upsert analysis", err)
	}
	return nil
}

func (j *Journal) Delete(ctx context.Context, id string) error {
	if _, err := j.db.ExecContext(ctx, `DELETE FROM analyses WHERE id = $1`, id); err != nil {
		return domain.WrapError(domain.ErrPersistence, "delete analysis", err)
	}
	return nil
}

func (j *Journal) Truncate(ctx context.Context) error {
	if _, err := j.db.ExecContext(ctx, `DELETE FROM analyses`); err != nil {
		return domain.WrapError(domain.ErrPersistence, "truncate analyses", err)
	}
	return nil
}

// LoadAll reads every journaled record, oldest first.
func (j *Journal) LoadAll(ctx context.Context) ([]domain.AnalysisRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT id, client_name, document_id, content, sentiment, confidence, channel, emotions, metrics, created_at, updated_at
FROM analyses
ORDER BY created_at ASC, id ASC
`)
	if err != nil {
		return nil, domain.WrapError(domain.ErrPersistence, "query analyses", err)
	}
	defer rows.Close()

	out := make([]domain.AnalysisRecord, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.WrapError(domain.ErrPersistence, "iterate analyses", err)
	}
	return out, nil
}

func scanRecord(rows *sql.Rows) (domain.AnalysisRecord, error) {
	var (
		rec         domain.AnalysisRecord
		sentiment   string
		emotionsRaw []byte
		metricsRaw  []byte
		createdAt   time.Time
		updatedAt   time.Time
	)
	err := rows.Scan(
		&rec.ID, &rec.ClientName, &rec.DocumentID, &rec.Content, &sentiment, &rec.Confidence, &rec.Channel,
		&emotionsRaw, &metricsRaw, &createdAt, &updatedAt,
	)
	if err != nil {
		return domain.AnalysisRecord{}, domain.WrapError(domain.ErrPersistence, "scan analysis", err)
	}

	category, err := domain.ParseSentimentCategory(sentiment)
	if err != nil {
		return domain.AnalysisRecord{}, domain.WrapError(domain.ErrPersistence, "decode analysis "+rec.ID, err)
	}
	if err := json.Unmarshal(emotionsRaw, &rec.Emotions); err != nil {
		return domain.AnalysisRecord{}, domain.WrapError(domain.ErrPersistence, "decode emotions "+rec.ID, err)
	}
	if err := json.Unmarshal(metricsRaw, &rec.Metrics); err != nil {
		return domain.AnalysisRecord{}, domain.WrapError(domain.ErrPersistence, "decode metrics "+rec.ID, err)
	}
	rec.Sentiment = category
	rec.CreatedAt = createdAt.UTC()
	rec.UpdatedAt = updatedAt.UTC()
	return rec, nil
}
