package mysql

import (
	"context"
	"time"

	_ "github.com/go-sql-driver/mysql" // register "mysql" driver
	"github.com/jmoiron/sqlx"

	"github.com/koustreak/ddlgen/internal/database"
	"github.com/koustreak/ddlgen/internal/errs"
)

// Driver is a MySQL catalog source backed by a database/sql pool.
// It is safe for concurrent use by multiple goroutines; the catalogs it
// hands out are not.
type Driver struct {
	db *sqlx.DB
}

var _ database.Pool = (*Driver)(nil)

// New opens a MySQL connection pool using the provided Config and returns a Driver.
// It calls Ping to validate the connection before returning.
func New(ctx context.Context, cfg *database.Config) (*Driver, error) {
	db, err := sqlx.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "invalid DSN", err)
	}

	db.SetMaxOpenConns(int(cfg.MaxConns))
	db.SetMaxIdleConns(int(cfg.MinConns))
	db.SetConnMaxLifetime(cfg.MaxConnLifetime)
	db.SetConnMaxIdleTime(cfg.MaxConnIdleTime)

	d := &Driver{db: db}

	pingCtx, cancel := pingContext(ctx, cfg.ConnectTimeout)
	defer cancel()

	if err := d.Ping(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return d, nil
}

// pingContext bounds the initial ping by timeout; zero or less leaves ctx
// unbounded.
func pingContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// --- database.Pool implementation ---

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
