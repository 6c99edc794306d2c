// Package dialect renders normalized table metadata as CREATE TABLE and
// comment statements for a specific database engine.
//
// Generators are stateless: every method is a pure function of its
// arguments, and one value may be shared across goroutines.
//
// Usage:
//
//	g, err := dialect.Resolve(dialect.MySQL)
//	if err != nil { ... }
//	ddl, err := g.GenerateCreateTableSQL("app", "users", "user table", cols)
package dialect

import (
	"strings"

	"github.com/koustreak/ddlgen/internal/meta"
)

// Type identifies a supported SQL dialect.
type Type string

const (
	MySQL      Type = "mysql"
	DM         Type = "dm"
	PostgreSQL Type = "postgresql"
)

// PrimaryKeyStyle tells where a dialect declares the primary key.
type PrimaryKeyStyle int

const (
	// PrimaryKeyConstraint appends a PRIMARY KEY (...) clause after the columns.
	PrimaryKeyConstraint PrimaryKeyStyle = iota
	// PrimaryKeyInline marks the key column itself with PRIMARY KEY.
	PrimaryKeyInline
)

// Generator renders DDL for one dialect.
type Generator interface {
	// Type returns the dialect identifier.
	Type() Type

	// QuoteIdentifier quotes a single column, table or schema name.
	QuoteIdentifier(name string) string

	// QuoteTableReference quotes schema.table; a blank schema is omitted.
	QuoteTableReference(schema, table string) string

	// TypeFragment renders the column's type, e.g. DECIMAL(10,2). It fails
	// with a validation error naming the column when the declared length is
	// smaller than the scale.
	TypeFragment(col meta.ColumnMeta) (string, error)

	// DefaultValueClause renders DEFAULT ..., or "" when there is none.
	DefaultValueClause(col meta.ColumnMeta) string

	// ColumnDefinition renders the full column clause: name, type,
	// nullability, auto-increment, default and comment, each only when
	// applicable.
	ColumnDefinition(col meta.ColumnMeta) (string, error)

	// PrimaryKeyStyle reports how the dialect declares primary keys.
	PrimaryKeyStyle() PrimaryKeyStyle

	// PrimaryKeyClause renders the trailing ", PRIMARY KEY (...)" fragment,
	// or "" when the key is declared inline or pkNames is empty.
	PrimaryKeyClause(pkNames []string) string

	// TableCommentStatements returns either one inline table option or a set
	// of separate COMMENT ON statements, depending on the dialect.
	TableCommentStatements(schema, table, comment string, cols []meta.ColumnMeta) []string

	// CreateTableStatements returns the CREATE TABLE statement followed by
	// any separate comment statements. Each statement is a single line
	// without a terminating semicolon. No columns yields no statements.
	CreateTableStatements(schema, table, comment string, cols []meta.ColumnMeta) ([]string, error)

	// GenerateCreateTableSQL joins CreateTableStatements into one script.
	// No columns yields "".
	GenerateCreateTableSQL(schema, table, comment string, cols []meta.ColumnMeta) (string, error)
}

// keyedGenerator renders a table whose primary key order is given
// explicitly instead of following column order.
type keyedGenerator interface {
	keyedStatements(schema, table, comment string, cols []meta.ColumnMeta, pks []string) ([]string, error)
}

var (
	_ keyedGenerator = mysqlGenerator{}
	_ keyedGenerator = dmGenerator{}
	_ keyedGenerator = postgresGenerator{}
)

// CreateTableFor renders t with g. The key columns follow t.PKNames,
// which keeps the catalog's key order; without it they follow the
// primary-key flags in column order.
func CreateTableFor(g Generator, t *meta.TableMeta) (string, error) {
	kg, ok := g.(keyedGenerator)
	if !ok || len(t.PKNames) == 0 {
		return g.GenerateCreateTableSQL(t.Schema, t.TableName, t.TableComment, t.Columns)
	}
	stmts, err := kg.keyedStatements(t.Schema, t.TableName, t.TableComment, t.Columns, t.PKNames)
	if err != nil {
		return "", err
	}
	return script(stmts), nil
}

// script joins statements: the first is left bare when alone, otherwise
// every statement is terminated with a semicolon on its own line.
func script(stmts []string) string {
	switch len(stmts) {
	case 0:
		return ""
	case 1:
		return stmts[0]
	}
	return strings.Join(stmts, ";\n") + ";"
}

// pkNames returns the names of columns flagged as primary key, in column order.
func pkNames(cols []meta.ColumnMeta) []string {
	var names []string
	for _, c := range cols {
		if c.PrimaryKey {
			names = append(names, c.ColumnName)
		}
	}
	return names
}
