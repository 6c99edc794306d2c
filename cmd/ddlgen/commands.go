package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"go.yaml.in/yaml/v3"

	"github.com/koustreak/ddlgen/internal/archive"
	"github.com/koustreak/ddlgen/internal/config"
	"github.com/koustreak/ddlgen/internal/database"
	"github.com/koustreak/ddlgen/internal/database/mysql"
	"github.com/koustreak/ddlgen/internal/database/postgres"
	"github.com/koustreak/ddlgen/internal/database/sqlite"
	"github.com/koustreak/ddlgen/internal/dialect"
	"github.com/koustreak/ddlgen/internal/errs"
	"github.com/koustreak/ddlgen/internal/filestore/minio"
	"github.com/koustreak/ddlgen/internal/logger"
	"github.com/koustreak/ddlgen/internal/meta"
	"github.com/koustreak/ddlgen/internal/schema"
	"github.com/koustreak/ddlgen/internal/server"
)

// env is what every command runs with.
type env struct {
	ctx    context.Context
	cfg    *config.Config
	log    *logger.Logger
	args   []string
	stdout io.Writer
}

var commands = map[string]func(*env) error{
	"dialects": runDialects,
	"tables":   runTables,
	"inspect":  runInspect,
	"ddl":      runDDL,
	"export":   runExport,
	"archived": runArchived,
	"serve":    runServe,
}

// setup parses flags, loads configuration and builds the logger. A nil env
// means the command must not run; code is then the exit code.
func setup(ctx context.Context, name string, args []string, stderr io.Writer) (*env, int) {
	fs := pflag.NewFlagSet("ddlgen "+name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to a YAML config file")
	config.RegisterFlags(fs)

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil, exitOK
		}
		return nil, exitUsage
	}

	cfg, err := config.Load(*configPath, fs)
	if err != nil {
		fmt.Fprintf(stderr, "ddlgen: %v\n", err)
		return nil, exitUsage
	}

	cfg.Log.Output = stderr
	log := logger.New(&cfg.Log)
	logger.SetGlobal(log)

	return &env{
		ctx:  log.WithContext(ctx),
		cfg:  cfg,
		log:  log,
		args: fs.Args(),
	}, exitOK
}

// openPool connects to the configured database.
func openPool(ctx context.Context, cfg *database.Config) (database.Pool, error) {
	if cfg.DSN == "" {
		return nil, errs.New(errs.ErrKindInvalidInput, "database dsn is required")
	}

	var (
		pool database.Pool
		err  error
	)
	switch cfg.Driver {
	case database.DriverMySQL:
		pool, err = mysql.New(ctx, cfg)
	case database.DriverPostgres:
		pool, err = postgres.New(ctx, cfg)
	case database.DriverSQLite:
		pool, err = sqlite.New(ctx, cfg)
	default:
		return nil, errs.Newf(errs.ErrKindUnsupported, "unsupported database driver: %s", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// withPool opens the database, bounds ctx by the query timeout and runs fn.
func (e *env) withPool(fn func(ctx context.Context, in *schema.Introspector) error) error {
	pool, err := openPool(e.ctx, &e.cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	ctx := e.ctx
	if t := e.cfg.Database.QueryTimeout; t > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t)
		defer cancel()
	}
	return fn(ctx, schema.New(pool))
}

// selectTables loads the tables named on the command line, in that order,
// or every matching table when none are named.
func (e *env) selectTables(ctx context.Context, in *schema.Introspector) ([]*meta.TableMeta, error) {
	types := e.cfg.Generate.Types
	if len(e.args) > 0 && len(types) == 0 {
		types = []string{"TABLE", "VIEW"}
	}

	tables, err := in.TableMeta(ctx, e.cfg.Generate.Filter(), types...)
	if err != nil {
		return nil, err
	}
	if len(e.args) == 0 {
		return tables, nil
	}

	byName := make(map[string]*meta.TableMeta, len(tables))
	for _, t := range tables {
		byName[t.TableName] = t
	}
	picked := make([]*meta.TableMeta, 0, len(e.args))
	for _, name := range e.args {
		t, ok := byName[name]
		if !ok {
			return nil, errs.Newf(errs.ErrKindNotFound, "table %s not found", name)
		}
		picked = append(picked, t)
	}
	return picked, nil
}

func (e *env) generator() (dialect.Generator, error) {
	t, err := dialect.ParseType(e.cfg.Generate.Dialect)
	if err != nil {
		return nil, err
	}
	return dialect.Resolve(t)
}

func runDialects(e *env) error {
	for _, t := range dialect.Supported() {
		fmt.Fprintln(e.stdout, t)
	}
	return nil
}

func runTables(e *env) error {
	return e.withPool(func(ctx context.Context, in *schema.Introspector) error {
		names, err := in.ListTableNames(ctx, e.cfg.Generate.Filter(), e.cfg.Generate.Types...)
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Fprintln(e.stdout, n)
		}
		return nil
	})
}

func runInspect(e *env) error {
	return e.withPool(func(ctx context.Context, in *schema.Introspector) error {
		tables, err := e.selectTables(ctx, in)
		if err != nil {
			return err
		}
		return e.encode(tables)
	})
}

func (e *env) encode(v any) error {
	if e.cfg.Generate.Format == config.FormatYAML {
		enc := yaml.NewEncoder(e.stdout)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runDDL(e *env) error {
	g, err := e.generator()
	if err != nil {
		return err
	}

	return e.withPool(func(ctx context.Context, in *schema.Introspector) error {
		tables, err := e.selectTables(ctx, in)
		if err != nil {
			return err
		}

		wrote := false
		for _, t := range tables {
			script, err := dialect.CreateTableFor(g, t)
			if err != nil {
				return err
			}
			if script == "" {
				continue
			}
			if !strings.HasSuffix(script, ";") {
				script += ";"
			}
			if wrote {
				fmt.Fprintln(e.stdout)
			}
			fmt.Fprintln(e.stdout, script)
			wrote = true
		}
		return nil
	})
}

func runExport(e *env) error {
	g, err := e.generator()
	if err != nil {
		return err
	}

	a, closeStore, err := e.openArchive()
	if err != nil {
		return err
	}
	defer closeStore()

	return e.withPool(func(ctx context.Context, in *schema.Introspector) error {
		tables, err := e.selectTables(ctx, in)
		if err != nil {
			return err
		}

		results, err := a.Export(ctx, g, tables)
		if err != nil {
			return err
		}
		return e.encode(results)
	})
}

func (e *env) openArchive() (*archive.Archive, func(), error) {
	store, err := minio.New(e.ctx, &e.cfg.Archive.Config)
	if err != nil {
		return nil, nil, err
	}
	a := archive.New(store, e.cfg.Archive.Bucket, e.cfg.Archive.Prefix)
	return a, func() { _ = store.Close() }, nil
}

// runArchived lists the archived scripts of the configured dialect, or
// prints the stored script of each named table.
func runArchived(e *env) error {
	d, err := dialect.ParseType(e.cfg.Generate.Dialect)
	if err != nil {
		return err
	}

	a, closeStore, err := e.openArchive()
	if err != nil {
		return err
	}
	defer closeStore()

	if len(e.args) == 0 {
		objs, err := a.List(e.ctx, d)
		if err != nil {
			return err
		}
		for _, o := range objs {
			fmt.Fprintf(e.stdout, "%s\t%d\t%s\n", o.Key, o.Size, o.LastModified.Format(time.RFC3339))
		}
		return nil
	}

	for _, table := range e.args {
		script, err := a.Fetch(e.ctx, d, e.cfg.Generate.Schema, table)
		if err != nil {
			return err
		}
		fmt.Fprintln(e.stdout, script)
	}
	return nil
}

func runServe(e *env) error {
	pool, err := openPool(e.ctx, &e.cfg.Database)
	if err != nil {
		return err
	}
	defer pool.Close()

	d, err := dialect.ParseType(e.cfg.Generate.Dialect)
	if err != nil {
		return err
	}

	srv := server.New(pool, server.Options{
		Filter:       e.cfg.Generate.Filter(),
		Types:        e.cfg.Generate.Types,
		Dialect:      d,
		QueryTimeout: e.cfg.Database.QueryTimeout,
		Ping:         pool.Ping,
		Logger:       e.log,
	})

	sc := e.cfg.Server
	return srv.ListenAndServe(e.ctx, sc.Addr, sc.ReadTimeout, sc.WriteTimeout, sc.ShutdownTimeout)
}
