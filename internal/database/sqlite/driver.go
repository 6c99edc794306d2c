// Package sqlite is a catalog source for SQLite databases, backed by the
// pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // register "sqlite" driver

	"github.com/koustreak/ddlgen/internal/database"
	"github.com/koustreak/ddlgen/internal/errs"
)

// Driver is a SQLite catalog source. It is safe for concurrent use by
// multiple goroutines; the catalogs it hands out are not.
type Driver struct {
	db *sqlx.DB
}

var _ database.Pool = (*Driver)(nil)

// New opens the database file named by cfg.DSN and returns a Driver.
// It calls Ping to validate the connection before returning.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	db, err := sqlx.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}
	db.SetMaxIdleConns(int(cfg.MinConns))
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	d := &Driver{db: db}

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	if err := d.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return d, nil
}

func (d *Driver) Ping(ctx context.Context) error {
	if err := d.db.PingContext(ctx); err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

func (d *Driver) Close() {
	_ = d.db.Close()
}

// Acquire pins one pooled connection for catalog queries.
func (d *Driver) Acquire(ctx context.Context) (database.Catalog, error) {
	conn, err := d.db.Connx(ctx)
	if err != nil {
		return nil, mapError(err, "failed to acquire connection")
	}
	return &catalog{conn: conn}, nil
}

// DB exposes the underlying handle, for callers that seed or migrate the
// database they are about to inspect.
func (d *Driver) DB() *sqlx.DB {
	return d.db
}
