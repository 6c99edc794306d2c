package database

import "time"

// Driver identifies the database engine a catalog source talks to.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
	DriverSQLite   Driver = "sqlite"
)

// Config holds all settings needed to connect to and pool a database.
type Config struct {
	// Driver is the database engine (e.g. DriverMySQL).
	Driver Driver `mapstructure:"driver"`

	// DSN is the full data source name / connection string.
	// Example: "user:pass@tcp(localhost:3306)/app?parseTime=true"
	DSN string `mapstructure:"dsn"`

	// Pool tuning
	MaxConns        int32         `mapstructure:"max_conns"`          // maximum number of connections in the pool
	MinConns        int32         `mapstructure:"min_conns"`          // minimum number of idle connections kept alive
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`  // maximum time a connection may be reused
	MaxConnIdleTime time.Duration `mapstructure:"max_conn_idle_time"` // maximum time a connection may sit idle

	// Timeouts
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"` // time limit for establishing a new connection
	QueryTimeout   time.Duration `mapstructure:"query_timeout"`   // per-operation deadline applied by callers
}

// DefaultConfig returns pool settings sized for metadata work: a handful of
// short-lived catalog queries rather than a steady query load.
func DefaultConfig(driver Driver, dsn string) *Config {
	return &Config{
		Driver:          driver,
		DSN:             dsn,
		MaxConns:        4,
		MinConns:        1,
		MaxConnLifetime: 30 * time.Minute,
		MaxConnIdleTime: 5 * time.Minute,
		ConnectTimeout:  10 * time.Second,
		QueryTimeout:    30 * time.Second,
	}
}
