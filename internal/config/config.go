// Package config loads ddlgen settings from an optional YAML file,
// DDLGEN_* environment variables and command-line flags, in increasing
// order of precedence.
//
// Usage:
//
//	fs := pflag.NewFlagSet("ddlgen", pflag.ContinueOnError)
//	config.RegisterFlags(fs)
//	_ = fs.Parse(os.Args[1:])
//
//	cfg, err := config.Load(configPath, fs)
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/koustreak/ddlgen/internal/database"
	"github.com/koustreak/ddlgen/internal/dialect"
	"github.com/koustreak/ddlgen/internal/errs"
	"github.com/koustreak/ddlgen/internal/filestore"
	"github.com/koustreak/ddlgen/internal/logger"
)

// EnvPrefix prefixes every environment override, e.g. DDLGEN_DATABASE_DSN.
const EnvPrefix = "DDLGEN"

// Output formats for inspected metadata.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config is the full ddlgen configuration.
type Config struct {
	Database database.Config `mapstructure:"database"`
	Log      logger.Config   `mapstructure:"log"`
	Generate GenerateConfig  `mapstructure:"generate"`
	Server   ServerConfig    `mapstructure:"server"`
	Archive  ArchiveConfig   `mapstructure:"archive"`
}

// GenerateConfig selects what is introspected and how it is rendered.
type GenerateConfig struct {
	Dialect string   `mapstructure:"dialect"`
	Catalog string   `mapstructure:"catalog"`
	Schema  string   `mapstructure:"schema"`
	Pattern string   `mapstructure:"pattern"` // LIKE pattern, blank matches all
	Types   []string `mapstructure:"types"`   // table types, blank means TABLE
	Format  string   `mapstructure:"format"`  // json or yaml
}

// Filter returns the catalog filter the settings describe.
func (g GenerateConfig) Filter() database.Filter {
	return database.Filter{Catalog: g.Catalog, Schema: g.Schema, TableNamePattern: g.Pattern}
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// ArchiveConfig points at the object store receiving exported scripts.
type ArchiveConfig struct {
	filestore.Config `mapstructure:",squash"`

	Prefix string `mapstructure:"prefix"`
}

// flagKeys binds command-line flags to configuration keys.
var flagKeys = map[string]string{
	"driver":     "database.driver",
	"dsn":        "database.dsn",
	"timeout":    "database.query_timeout",
	"log-level":  "log.level",
	"log-format": "log.format",
	"dialect":    "generate.dialect",
	"catalog":    "generate.catalog",
	"schema":     "generate.schema",
	"pattern":    "generate.pattern",
	"types":      "generate.types",
	"format":     "generate.format",
	"addr":       "server.addr",
	"endpoint":   "archive.endpoint",
	"bucket":     "archive.bucket",
	"prefix":     "archive.prefix",
}

// RegisterFlags adds the flags Load understands to fs. Flag defaults are
// left blank so that unset flags never shadow file or environment values.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("driver", "", "database driver: mysql, postgres or sqlite")
	fs.String("dsn", "", "database connection string")
	fs.Duration("timeout", 0, "per-operation query timeout")
	fs.String("log-level", "", "log level: debug, info, warn, error")
	fs.String("log-format", "", "log format: json or console")
	fs.String("dialect", "", "target DDL dialect")
	fs.String("catalog", "", "source catalog, blank for the connection default")
	fs.String("schema", "", "source schema, blank for the connection default")
	fs.String("pattern", "", "table name LIKE pattern")
	fs.StringSlice("types", nil, "table types to include (default TABLE)")
	fs.String("format", "", "metadata output format: json or yaml")
	fs.String("addr", "", "HTTP listen address")
	fs.String("endpoint", "", "object store endpoint for exports")
	fs.String("bucket", "", "object store bucket for exports")
	fs.String("prefix", "", "object key prefix for exports")
}

func setDefaults(v *viper.Viper) {
	db := database.DefaultConfig(database.DriverMySQL, "")
	v.SetDefault("database.driver", string(db.Driver))
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_conns", db.MaxConns)
	v.SetDefault("database.min_conns", db.MinConns)
	v.SetDefault("database.max_conn_lifetime", db.MaxConnLifetime)
	v.SetDefault("database.max_conn_idle_time", db.MaxConnIdleTime)
	v.SetDefault("database.connect_timeout", db.ConnectTimeout)
	v.SetDefault("database.query_timeout", db.QueryTimeout)

	lg := logger.DefaultConfig()
	v.SetDefault("log.level", lg.Level)
	v.SetDefault("log.format", lg.Format)
	v.SetDefault("log.time_format", lg.TimeFormat)

	v.SetDefault("generate.dialect", string(dialect.MySQL))
	v.SetDefault("generate.catalog", "")
	v.SetDefault("generate.schema", "")
	v.SetDefault("generate.pattern", "")
	v.SetDefault("generate.types", []string{})
	v.SetDefault("generate.format", FormatJSON)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	fs := filestore.DefaultConfig("", "", "")
	v.SetDefault("archive.provider", string(fs.Provider))
	v.SetDefault("archive.endpoint", "")
	v.SetDefault("archive.access_key", "")
	v.SetDefault("archive.secret_key", "")
	v.SetDefault("archive.use_ssl", false)
	v.SetDefault("archive.region", "")
	v.SetDefault("archive.bucket", fs.Bucket)
	v.SetDefault("archive.prefix", "ddl")
}

// Load reads the configuration. path may be blank; fs may be nil. Only
// flags the user actually set override file and environment values.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidInput, fmt.Sprintf("read config %s", path), err)
		}
	}

	if fs != nil {
		fs.Visit(func(f *pflag.Flag) {
			if key, ok := flagKeys[f.Name]; ok {
				// BindPFlag only fails on a nil flag.
				_ = v.BindPFlag(key, f)
			}
		})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "unmarshal config", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values Load cannot type-check.
func (c *Config) Validate() error {
	var problems []error

	switch c.Database.Driver {
	case database.DriverMySQL, database.DriverPostgres, database.DriverSQLite:
	default:
		problems = append(problems, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}

	if _, err := dialect.ParseType(c.Generate.Dialect); err != nil {
		problems = append(problems, err)
	}

	switch strings.ToLower(c.Generate.Format) {
	case FormatJSON, FormatYAML:
		c.Generate.Format = strings.ToLower(c.Generate.Format)
	default:
		problems = append(problems, fmt.Errorf("unknown output format %q", c.Generate.Format))
	}

	if c.Database.ConnectTimeout < 0 {
		problems = append(problems, errors.New("database.connect_timeout must not be negative"))
	}
	if c.Database.QueryTimeout < 0 {
		problems = append(problems, errors.New("database.query_timeout must not be negative"))
	}

	if len(problems) > 0 {
		return errs.Wrap(errs.ErrKindInvalidInput, "invalid configuration", errors.Join(problems...))
	}
	return nil
}
