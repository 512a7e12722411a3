// Package sqlite provides a SQLite-backed preference store. The
// database file is the durable, cross-process storage surface; every
// mutation commits and then checkpoints the WAL so that a successful
// return means the change is observable from a fresh handle in any
// process.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	sqlitemigrate "github.com/louisbranch/luaprefs/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/luaprefs/internal/prefstore"
	"github.com/louisbranch/luaprefs/internal/prefstore/sqlite/migrations"
	_ "modernc.org/sqlite"
)

// Store persists typed preferences in SQLite.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a SQLite preference store at the provided path and applies
// embedded migrations. The connection is opened with synchronous=FULL
// so commits reach durable storage before returning.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_pragma=journal_mode(WAL)&_pragma=synchronous(FULL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection: the per-mutation checkpoint must not race reads
	// from other pooled connections.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// WriteBoolean sets the entry to a boolean value and flushes.
func (s *Store) WriteBoolean(ctx context.Context, domain, key string, value bool) error {
	stored := int64(0)
	if value {
		stored = 1
	}
	return s.write(ctx, domain, key, prefstore.KindBoolean, sql.NullInt64{Int64: stored, Valid: true}, sql.NullInt64{}, sql.NullFloat64{}, sql.NullString{})
}

// WriteInteger sets the entry to an integer value and flushes.
func (s *Store) WriteInteger(ctx context.Context, domain, key string, value int64) error {
	return s.write(ctx, domain, key, prefstore.KindInteger, sql.NullInt64{}, sql.NullInt64{Int64: value, Valid: true}, sql.NullFloat64{}, sql.NullString{})
}

// WriteFloat sets the entry to a float value and flushes.
func (s *Store) WriteFloat(ctx context.Context, domain, key string, value float64) error {
	return s.write(ctx, domain, key, prefstore.KindFloat, sql.NullInt64{}, sql.NullInt64{}, sql.NullFloat64{Float64: value, Valid: true}, sql.NullString{})
}

// WriteString sets the entry to a text value and flushes. The value
// must be valid UTF-8; invalid text is rejected before any mutation.
func (s *Store) WriteString(ctx context.Context, domain, key, value string) error {
	if !utf8.ValidString(value) {
		return prefstore.ErrInvalidText
	}
	return s.write(ctx, domain, key, prefstore.KindString, sql.NullInt64{}, sql.NullInt64{}, sql.NullFloat64{}, sql.NullString{String: value, Valid: true})
}

func (s *Store) write(ctx context.Context, domain, key string, kind prefstore.Kind, boolValue, intValue sql.NullInt64, realValue sql.NullFloat64, textValue sql.NullString) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO preferences (domain, key, kind, bool_value, int_value, real_value, text_value, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (domain, key) DO UPDATE SET
    kind = excluded.kind,
    bool_value = excluded.bool_value,
    int_value = excluded.int_value,
    real_value = excluded.real_value,
    text_value = excluded.text_value,
    updated_at = excluded.updated_at
`, domain, key, int(kind), boolValue, intValue, realValue, textValue, time.Now().UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("write %s preference: %w", kind, err)
	}

	return s.flush(ctx)
}

// ReadBoolean returns the stored boolean for the (domain, key) pair.
func (s *Store) ReadBoolean(ctx context.Context, domain, key string) (bool, error) {
	row, err := s.read(ctx, domain, key, prefstore.KindBoolean)
	if err != nil {
		return false, err
	}
	return row.boolValue.Int64 != 0, nil
}

// ReadInteger returns the stored integer for the (domain, key) pair.
func (s *Store) ReadInteger(ctx context.Context, domain, key string) (int64, error) {
	row, err := s.read(ctx, domain, key, prefstore.KindInteger)
	if err != nil {
		return 0, err
	}
	return row.intValue.Int64, nil
}

// ReadFloat returns the stored float for the (domain, key) pair.
func (s *Store) ReadFloat(ctx context.Context, domain, key string) (float64, error) {
	row, err := s.read(ctx, domain, key, prefstore.KindFloat)
	if err != nil {
		return 0, err
	}
	return row.realValue.Float64, nil
}

// ReadString returns the stored text for the (domain, key) pair. Text
// longer than maxBytes is reported as ErrTextTooLarge, never truncated.
// maxBytes <= 0 disables the budget.
func (s *Store) ReadString(ctx context.Context, domain, key string, maxBytes int) (string, error) {
	row, err := s.read(ctx, domain, key, prefstore.KindString)
	if err != nil {
		return "", err
	}
	if maxBytes > 0 && len(row.textValue.String) > maxBytes {
		return "", prefstore.ErrTextTooLarge
	}
	return row.textValue.String, nil
}

type preferenceRow struct {
	kind      prefstore.Kind
	boolValue sql.NullInt64
	intValue  sql.NullInt64
	realValue sql.NullFloat64
	textValue sql.NullString
}

func (s *Store) read(ctx context.Context, domain, key string, want prefstore.Kind) (preferenceRow, error) {
	if err := ctx.Err(); err != nil {
		return preferenceRow{}, err
	}
	if s == nil || s.sqlDB == nil {
		return preferenceRow{}, fmt.Errorf("storage is not configured")
	}

	var row preferenceRow
	var kind int
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT kind, bool_value, int_value, real_value, text_value
FROM preferences
WHERE domain = ? AND key = ?
`, domain, key).Scan(&kind, &row.boolValue, &row.intValue, &row.realValue, &row.textValue)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return preferenceRow{}, prefstore.ErrNotFound
		}
		return preferenceRow{}, fmt.Errorf("read preference: %w", err)
	}
	row.kind = prefstore.Kind(kind)
	if row.kind != want {
		return preferenceRow{}, fmt.Errorf("%w: stored %s, requested %s", prefstore.ErrKindMismatch, row.kind, want)
	}
	return row, nil
}

// Exists reports whether an entry of any kind is present.
func (s *Store) Exists(ctx context.Context, domain, key string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if s == nil || s.sqlDB == nil {
		return false, fmt.Errorf("storage is not configured")
	}

	var found int
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT 1 FROM preferences WHERE domain = ? AND key = ?
`, domain, key).Scan(&found)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check preference: %w", err)
	}
	return true, nil
}

// Delete removes the entry and flushes. Deleting an absent key succeeds.
func (s *Store) Delete(ctx context.Context, domain, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	if _, err := s.sqlDB.ExecContext(ctx, `
DELETE FROM preferences WHERE domain = ? AND key = ?
`, domain, key); err != nil {
		return fmt.Errorf("delete preference: %w", err)
	}

	return s.flush(ctx)
}

// flush checkpoints the WAL so the preceding commit is confirmed in the
// main database file. A busy checkpoint counts as a failed flush; the
// write itself may have landed but cannot be confirmed durable. Reads
// never call this.
func (s *Store) flush(ctx context.Context) error {
	var busy, logFrames, checkpointed int
	err := s.sqlDB.QueryRowContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE)").
		Scan(&busy, &logFrames, &checkpointed)
	if err != nil {
		return fmt.Errorf("%w: %v", prefstore.ErrFlushFailed, err)
	}
	if busy != 0 {
		return fmt.Errorf("%w: checkpoint busy", prefstore.ErrFlushFailed)
	}
	return nil
}

var _ prefstore.Store = (*Store)(nil)
