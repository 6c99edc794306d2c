package database

import (
	"context"

	"github.com/koustreak/ddlgen/internal/sqltype"
)

// Index type codes reported in IndexRow.Type, as catalog APIs number them.
const (
	IndexStatistic int16 = 0 // table statistics pseudo-row, not an index
	IndexClustered int16 = 1
	IndexHashed    int16 = 2
	IndexOther     int16 = 3
)

// Filter narrows catalog queries. Blank Catalog/Schema mean "the
// connection's defaults"; a blank TableNamePattern matches every table.
// Patterns use the engine's LIKE wildcards (_ and %).
type Filter struct {
	Catalog          string
	Schema           string
	TableNamePattern string
}

// TableRef names exactly one table.
type TableRef struct {
	Catalog string
	Schema  string
	Table   string
}

// TableRow is one row of the catalog's table list.
type TableRow struct {
	Catalog string `db:"table_catalog"`
	Schema  string `db:"table_schema"`
	Name    string `db:"table_name"`
	Type    string `db:"table_type"` // normalized: TABLE, VIEW, SYSTEM TABLE, ...
	Comment string `db:"table_comment"`
}

// Ref returns the reference naming this table.
func (r TableRow) Ref() TableRef {
	return TableRef{Catalog: r.Catalog, Schema: r.Schema, Table: r.Name}
}

// ColumnRow is one row of the catalog's column list. Pointer fields are nil
// when the driver cannot report the value.
type ColumnRow struct {
	Schema          string
	TableName       string
	ColumnName      string
	DataType        sqltype.Code
	TypeName        string
	ColumnSize      int
	DecimalDigits   *int
	Nullable        bool
	Default         *string
	Remarks         string
	OrdinalPosition int
	AutoIncrement   *bool
	EnumValues      []string
}

// IndexRow is one column of one index, as the catalog reports it.
type IndexRow struct {
	TableName  string
	IndexName  string
	ColumnName string
	NonUnique  bool
	Type       int16
	Position   int
}

// Catalog is the metadata view of one acquired connection. It is not safe
// for concurrent use; Release returns the connection to its pool.
type Catalog interface {
	// Defaults returns the connection's current catalog and schema.
	Defaults(ctx context.Context) (catalog, schema string, err error)

	// Tables lists tables and views matching f, in catalog order.
	Tables(ctx context.Context, f Filter) ([]TableRow, error)

	// PrimaryKeys returns the key columns of ref in key order.
	PrimaryKeys(ctx context.Context, ref TableRef) ([]string, error)

	// Columns returns the columns of ref ordered by ordinal position.
	Columns(ctx context.Context, ref TableRef) ([]ColumnRow, error)

	// Indexes returns one row per index column, grouped by index.
	Indexes(ctx context.Context, ref TableRef) ([]IndexRow, error)

	// Release gives the connection back. It is safe to call more than once.
	Release()
}

// AutoIncrementDetector is implemented by catalogs that detect auto-increment
// columns with a separate query instead of reporting them per column.
// Returning an errs.ErrKindUnsupported error means "cannot tell".
type AutoIncrementDetector interface {
	AutoIncrementColumns(ctx context.Context, ref TableRef) ([]string, error)
}

// Source hands out catalogs, one connection each.
type Source interface {
	Acquire(ctx context.Context) (Catalog, error)
}

// Pool is a Source that owns a connection pool.
type Pool interface {
	Source

	// Ping verifies the database is reachable.
	Ping(ctx context.Context) error

	// Close releases all resources held by the pool.
	Close()
}
