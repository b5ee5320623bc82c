package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"EnterpriseRiskNews/internal/domain"
	"EnterpriseRiskNews/internal/ports"
)

const recordsTable = "risk_news_records"

// insertBatch bounds the rows of one INSERT statement.
const insertBatch = 200

const schema = `CREATE TABLE IF NOT EXISTS risk_news_records (
    id           BIGSERIAL PRIMARY KEY,
    run_id       UUID        NOT NULL,
    search_term  TEXT        NOT NULL,
    title        TEXT        NOT NULL,
    summary      TEXT        NOT NULL,
    keywords     TEXT[]      NOT NULL DEFAULT '{}',
    published_on DATE,
    link         TEXT        NOT NULL,
    domain       TEXT        NOT NULL,
    source       TEXT        NOT NULL,
    source_url   TEXT        NOT NULL,
    sentiment    TEXT        NOT NULL,
    polarity     DOUBLE PRECISION NOT NULL,
    run_at       TIMESTAMPTZ NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (run_id, link)
)`

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists emitted records into Postgres.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.RecordRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// OpenPostgres opens and pings a lib/pq connection.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the records table when missing.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create %s: %w", recordsTable, err)
	}
	return nil
}

// SaveRecords inserts the records of one run in a single transaction.
// Re-saving the same run is a no-op per link.
func (r *PostgresRepository) SaveRecords(ctx context.Context, runID string, records []domain.OutputRecord) error {
	if r.db == nil || len(records) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for start := 0; start < len(records); start += insertBatch {
		end := min(start+insertBatch, len(records))
		query, args, err := insertQuery(runID, records[start:end])
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert records: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit records: %w", err)
	}
	return nil
}

func insertQuery(runID string, records []domain.OutputRecord) (string, []any, error) {
	builder := psql.Insert(recordsTable).Columns(
		"run_id", "search_term", "title", "summary", "keywords", "published_on",
		"link", "domain", "source", "source_url", "sentiment", "polarity", "run_at",
	)
	for _, rec := range records {
		var published any
		if rec.Published != nil {
			published = rec.Published.Format(publishedLayout)
		}
		keywords := rec.Keywords
		if keywords == nil {
			keywords = []string{}
		}
		builder = builder.Values(
			runID,
			rec.SearchTerm,
			rec.Title,
			rec.Summary,
			pq.StringArray(keywords),
			published,
			rec.Link,
			rec.Domain,
			rec.Source,
			rec.SourceURL,
			string(rec.Sentiment.Label),
			rec.Sentiment.Score,
			rec.RunAt,
		)
	}
	return builder.Suffix("ON CONFLICT (run_id, link) DO NOTHING").ToSql()
}
