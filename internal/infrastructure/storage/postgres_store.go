package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"newsrelay/internal/domain"
	"newsrelay/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresStore persists the seen ledger in a seen_articles table, for
// deployments where the process has no durable filesystem.
type PostgresStore struct {
	db *sql.DB
}

var _ ports.SeenPersister = (*PostgresStore)(nil)

// NewPostgresStore wires a sql.DB implementation.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Load returns the persisted ledger ordered oldest-first, matching the
// store's insertion order.
func (p *PostgresStore) Load(ctx context.Context) ([]domain.SeenEntry, error) {
	if p.db == nil {
		return nil, nil
	}

	query, args, err := psql.
		Select("fingerprint", "first_seen_at").
		From("seen_articles").
		OrderBy("first_seen_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build load query: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query seen: %w", err)
	}
	defer rows.Close()

	var entries []domain.SeenEntry
	for rows.Next() {
		var entry domain.SeenEntry
		if err := rows.Scan(&entry.Fingerprint, &entry.FirstSeenAt); err != nil {
			return nil, fmt.Errorf("scan seen entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return entries, nil
}

// Save replaces the persisted ledger with the given entries inside one
// transaction: insert the new fingerprints, then delete everything the
// store has since evicted.
func (p *PostgresStore) Save(ctx context.Context, entries []domain.SeenEntry) error {
	if p.db == nil {
		return nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	fingerprints := make([]string, 0, len(entries))
	for _, entry := range entries {
		fingerprints = append(fingerprints, entry.Fingerprint)

		query, args, err := psql.
			Insert("seen_articles").
			Columns("fingerprint", "first_seen_at").
			Values(entry.Fingerprint, entry.FirstSeenAt).
			Suffix("ON CONFLICT (fingerprint) DO NOTHING").
			ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s: %w", entry.Fingerprint, err)
		}
	}

	query, args, err := psql.
		Delete("seen_articles").
		Where(sq.Expr("NOT (fingerprint = ANY(?))", pq.StringArray(fingerprints))).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("delete evicted: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
