package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hospintel/hospintel_backend/internal/model"
	"github.com/hospintel/hospintel_backend/pkg/database"
)

// SQLBackend stores records in a single `records` table keyed by
// (store, id). The full record is kept as JSON in `body`; the other columns
// exist for indexing and ad-hoc inspection.
type SQLBackend struct {
	db         *sql.DB
	dialect    database.Dialect
	maxRecords int
}

// NewSQLBackend wraps an open, migrated database.
func NewSQLBackend(db *sql.DB, dialect database.Dialect, maxRecords int) *SQLBackend {
	return &SQLBackend{db: db, dialect: dialect, maxRecords: maxRecords}
}

func (s *SQLBackend) GetAll(ctx context.Context, store string) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT body FROM records WHERE store = ?`), store)
	if err != nil {
		return nil, fmt.Errorf("failed to select records: %w", err)
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		var body string
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		var rec model.Record
		if err := json.Unmarshal([]byte(body), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SQLBackend) Get(ctx context.Context, store, id string) (*model.Record, error) {
	var body string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT body FROM records WHERE store = ? AND id = ?`), store, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select record: %w", err)
	}
	var rec model.Record
	if err := json.Unmarshal([]byte(body), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &rec, nil
}

func (s *SQLBackend) Add(ctx context.Context, store string, rec model.Record) error {
	body, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Serializes adds per store so the quota count below sees every
	// committed insert. SQLite already holds the write lock after INSERT.
	if s.maxRecords > 0 && s.dialect == database.DialectPostgres {
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, "hospintel:records:"+store); err != nil {
			return fmt.Errorf("failed to lock store: %w", err)
		}
	}

	var idemKey sql.NullString
	if rec.IdempotencyKey != "" {
		idemKey = sql.NullString{String: rec.IdempotencyKey, Valid: true}
	}

	// Insert first so a duplicate id wins over a full store.
	res, err := tx.ExecContext(ctx, s.rebind(`
		INSERT INTO records (store, id, kind, source, status, created_at, idempotency_key, body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (store, id) DO NOTHING`),
		store, rec.ID, string(rec.Kind), rec.Source, string(rec.Status),
		rec.CreatedAt.UTC().Format(time.RFC3339Nano), idemKey, string(body),
	)
	if err != nil {
		return fmt.Errorf("failed to insert record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrDuplicate
	}

	if s.maxRecords > 0 {
		var count int
		if err := tx.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM records WHERE store = ?`), store).Scan(&count); err != nil {
			return fmt.Errorf("failed to count records: %w", err)
		}
		if count > s.maxRecords {
			return ErrQuotaExceeded
		}
	}

	return tx.Commit()
}

func (s *SQLBackend) Delete(ctx context.Context, store, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM records WHERE store = ? AND id = ?`), store, id)
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLBackend) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *SQLBackend) rebind(q string) string {
	if s.dialect != database.DialectPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
