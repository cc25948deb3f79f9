// Package store wires the sqlite database, migrations and repositories into
// one durable local store with per-operation atomicity across the log table,
// the outbox and the metadata row.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"wildlings/internal/common"
	"wildlings/internal/dbx"
	"wildlings/internal/migrations"
	"wildlings/internal/repositories/logs"
	"wildlings/internal/repositories/metadata"
	"wildlings/internal/repositories/outbox"
)

// Repositories is one consistent view over the three tables. The Store
// embeds a database-bound view; WithTx hands callers a transaction-bound one.
type Repositories struct {
	Logs     logs.Repository
	Outbox   outbox.Repository
	Metadata metadata.Repository
}

func newRepositories(db dbx.DBTX) *Repositories {
	return &Repositories{
		Logs:     logs.NewSQLiteRepository(db),
		Outbox:   outbox.NewSQLiteRepository(db),
		Metadata: metadata.NewSQLiteRepository(db),
	}
}

// Store is the durable local store backing mutators, stats and sync.
type Store struct {
	*Repositories
	db *sql.DB
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// Open opens (creating if needed) the sqlite database at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// The store assumes one logical timeline; a single connection keeps
	// sqlite's locking out of the picture.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{Repositories: newRepositories(db), db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// WithTx runs fn with a Repositories view bound to a single transaction.
// All writes commit together or not at all. Any failure is surfaced as
// common.ErrOperationFailed wrapping the original cause, so sentinel
// checks with errors.Is still match.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, r *Repositories) error) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, newRepositories(tx))
	})
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrOperationFailed, err)
	}
	return nil
}

// EnsureDeviceID returns the persisted device id, generating one with gen
// and storing it on first use. Works against both the database-bound and a
// transaction-bound Repositories.
func EnsureDeviceID(ctx context.Context, r *Repositories, gen func() string) (string, error) {
	md, err := r.Metadata.Get(ctx)
	if err != nil {
		return "", err
	}
	if md.DeviceID != nil {
		return *md.DeviceID, nil
	}

	id := gen()
	if err := r.Metadata.SetDeviceID(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}
