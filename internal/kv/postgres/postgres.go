package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-storefront/internal/kv"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

type Config struct {
	Host            string
	Port            string
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

func NewPostgres(cfg *Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
	return db, nil
}

// SQLSTATE disk_full
const pqDiskFull = "53100"

const schema = `
CREATE TABLE IF NOT EXISTS kv_entries (
    namespace  TEXT NOT NULL,
    key        TEXT NOT NULL,
    value      TEXT NOT NULL,
    updated_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (namespace, key)
)`

type entry struct {
	Namespace string    `db:"namespace"`
	Key       string    `db:"key"`
	Value     string    `db:"value"`
	UpdatedAt time.Time `db:"updated_at"`
}

type PGStore struct {
	DB         *sqlx.DB
	namespace  string
	quotaBytes int64
}

func NewPGStore(db *sqlx.DB, namespace string, quotaBytes int64) *PGStore {
	if namespace == "" {
		namespace = "storefront"
	}
	return &PGStore{DB: db, namespace: namespace, quotaBytes: quotaBytes}
}

var _ kv.Store = (*PGStore)(nil)

func (r *PGStore) Migrate(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

func (r *PGStore) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	query := `SELECT value FROM kv_entries WHERE namespace = $1 AND key = $2 LIMIT 1`
	err := r.DB.GetContext(ctx, &value, query, r.namespace, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

func (r *PGStore) Set(ctx context.Context, key, value string) error {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if r.quotaBytes > 0 {
		// Serializes quota checks per namespace until the transaction ends.
		if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, r.namespace); err != nil {
			return err
		}
		var used int64
		usage := `SELECT COALESCE(SUM(OCTET_LENGTH(key) + OCTET_LENGTH(value)), 0) FROM kv_entries WHERE namespace = $1 AND key <> $2`
		if err := tx.GetContext(ctx, &used, usage, r.namespace, key); err != nil {
			return err
		}
		if used+int64(len(key)+len(value)) > r.quotaBytes {
			return kv.ErrQuotaExceeded
		}
	}

	query := `
        INSERT INTO kv_entries (namespace, key, value, updated_at)
        VALUES (:namespace, :key, :value, :updated_at)
        ON CONFLICT (namespace, key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
    `
	_, err = tx.NamedExecContext(ctx, query, &entry{
		Namespace: r.namespace,
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return mapError(err)
	}
	return mapError(tx.Commit())
}

func (r *PGStore) Remove(ctx context.Context, key string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM kv_entries WHERE namespace = $1 AND key = $2", r.namespace, key)
	return err
}

func (r *PGStore) ClearAll(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM kv_entries WHERE namespace = $1", r.namespace)
	return err
}

func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqDiskFull {
		return fmt.Errorf("%w: %v", kv.ErrQuotaExceeded, err)
	}
	return err
}
