package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"SpaceNewsAgent/internal/domain"
	"SpaceNewsAgent/internal/ports"
)

// PostgresStore keeps the snapshot as one JSON blob row keyed by name, so a
// run remains a single atomic overwrite.
//
// Expected schema:
//
//	CREATE TABLE snapshots (
//	    name       TEXT PRIMARY KEY,
//	    payload    JSONB NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
//	);
type PostgresStore struct {
	db      *sql.DB
	name    string
	builder sq.StatementBuilderType
}

var _ ports.SnapshotStore = (*PostgresStore)(nil)

// OpenPostgresStore connects to Postgres and binds the store to one snapshot
// name.
func OpenPostgresStore(dsn, name string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return NewPostgresStore(db, name), nil
}

// NewPostgresStore wires an existing sql.DB.
func NewPostgresStore(db *sql.DB, name string) *PostgresStore {
	return &PostgresStore{
		db:      db,
		name:    name,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// Load reads the prior snapshot row, or domain.ErrNoSnapshot when absent.
func (s *PostgresStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	query, args, err := s.builder.
		Select("payload").
		From("snapshots").
		Where(sq.Eq{"name": s.name}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}

	var raw []byte
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNoSnapshot
		}
		return nil, fmt.Errorf("query snapshot: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}
	return &snap, nil
}

// Save upserts the snapshot blob for this store's name.
func (s *PostgresStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	query, args, err := s.builder.
		Insert("snapshots").
		Columns("name", "payload").
		Values(s.name, raw).
		Suffix("ON CONFLICT (name) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()").
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
