package sqlite

import (
	"context"
	"database/sql"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"
	rsql "github.com/rqlite/sql"

	"github.com/koustreak/ddlgen/internal/database"
	"github.com/koustreak/ddlgen/internal/errs"
	"github.com/koustreak/ddlgen/internal/sqltype"
)

// mainSchema is the schema name SQLite gives the primary database file.
const mainSchema = "main"

// schemaOf resolves the attached database a request reads; blank means main.
func schemaOf(schema string) string {
	if strings.TrimSpace(schema) == "" {
		return mainSchema
	}
	return schema
}

// masterOf names the sqlite_master table of an attached database.
func masterOf(schema string) string {
	return `"` + strings.ReplaceAll(schema, `"`, `""`) + `".sqlite_master`
}

// catalog reads sqlite_master and the table-valued pragmas over one pinned
// connection. SQLite keeps no comments, so remarks are always empty.
type catalog struct {
	conn *sqlx.Conn
}

var _ database.AutoIncrementDetector = (*catalog)(nil)

func (c *catalog) Release() {
	_ = c.conn.Close()
}

func (c *catalog) Defaults(context.Context) (string, string, error) {
	return "", mainSchema, nil
}

// Tables lists the tables and views of the attached database named by
// f.Schema, main when blank.
func (c *catalog) Tables(ctx context.Context, f database.Filter) ([]database.TableRow, error) {
	schema := schemaOf(f.Schema)
	q := `
		SELECT ''    AS table_catalog,
		       ?     AS table_schema,
		       name  AS table_name,
		       CASE type WHEN 'table' THEN 'TABLE' ELSE 'VIEW' END AS table_type,
		       ''    AS table_comment
		FROM ` + masterOf(schema) + `
		WHERE type IN ('table', 'view')
		  AND name NOT LIKE 'sqlite\_%' ESCAPE '\'
		  AND name LIKE ?
		ORDER BY type, name`

	var rows []database.TableRow
	if err := c.conn.SelectContext(ctx, &rows, q, schema, f.TableNamePattern); err != nil {
		return nil, mapError(err, "failed to list tables")
	}
	return rows, nil
}

func (c *catalog) PrimaryKeys(ctx context.Context, ref database.TableRef) ([]string, error) {
	const q = `SELECT name FROM pragma_table_info(?, ?) WHERE pk > 0 ORDER BY pk`

	var names []string
	if err := c.conn.SelectContext(ctx, &names, q, ref.Table, schemaOf(ref.Schema)); err != nil {
		return nil, mapError(err, "failed to fetch primary keys")
	}
	return names, nil
}

// columnRow mirrors one pragma_table_info row.
type columnRow struct {
	CID       int            `db:"cid"`
	Name      string         `db:"name"`
	Type      string         `db:"type"`
	NotNull   int            `db:"not_null"`
	Default   sql.NullString `db:"dflt_value"`
	PKOrdinal int            `db:"pk"`
}

func (c *catalog) Columns(ctx context.Context, ref database.TableRef) ([]database.ColumnRow, error) {
	const q = `
		SELECT cid, name, type, "notnull" AS not_null, dflt_value, pk
		FROM pragma_table_info(?, ?)
		ORDER BY cid`

	schema := schemaOf(ref.Schema)
	var rows []columnRow
	if err := c.conn.SelectContext(ctx, &rows, q, ref.Table, schema); err != nil {
		return nil, mapError(err, "failed to fetch columns")
	}

	cols := make([]database.ColumnRow, len(rows))
	for i, r := range rows {
		decl := parseDeclared(r.Type)
		code := codeOf(decl.Name)

		col := database.ColumnRow{
			Schema:          schema,
			TableName:       ref.Table,
			ColumnName:      r.Name,
			DataType:        code,
			TypeName:        decl.Name,
			ColumnSize:      decl.Length,
			Nullable:        r.NotNull == 0,
			OrdinalPosition: r.CID + 1,
		}
		if code == sqltype.Boolean && !decl.HasLength {
			col.ColumnSize = 1
		}
		scale := decl.Scale
		col.DecimalDigits = &scale
		if r.Default.Valid {
			def := r.Default.String
			col.Default = &def
		}
		cols[i] = col
	}
	return cols, nil
}

// indexRow mirrors one row of pragma_index_list joined with pragma_index_info.
type indexRow struct {
	Index     string `db:"index_name"`
	Column    string `db:"column_name"`
	NonUnique int    `db:"non_unique"`
	Position  int    `db:"position"`
}

func (c *catalog) Indexes(ctx context.Context, ref database.TableRef) ([]database.IndexRow, error) {
	const q = `
		SELECT il.name                AS index_name,
		       COALESCE(ii.name, '')  AS column_name,
		       NOT il."unique"        AS non_unique,
		       ii.seqno + 1           AS position
		FROM pragma_index_list(?, ?) il
		JOIN pragma_index_info(il.name, ?) ii
		ORDER BY non_unique, il.name, ii.seqno`

	schema := schemaOf(ref.Schema)
	var rows []indexRow
	if err := c.conn.SelectContext(ctx, &rows, q, ref.Table, schema, schema); err != nil {
		return nil, mapError(err, "failed to fetch indexes")
	}

	idx := make([]database.IndexRow, len(rows))
	for i, r := range rows {
		idx[i] = database.IndexRow{
			TableName:  ref.Table,
			IndexName:  r.Index,
			ColumnName: r.Column,
			NonUnique:  r.NonUnique != 0,
			Type:       database.IndexOther,
			Position:   r.Position,
		}
	}
	return idx, nil
}

// AutoIncrementColumns reports the INTEGER PRIMARY KEY column of tables
// declared with AUTOINCREMENT. SQLite keeps no per-column flag, so the
// answer comes from parsing the stored CREATE TABLE text; tables without
// one (internal or virtual tables) or with text the parser rejects are
// reported as unsupported.
func (c *catalog) AutoIncrementColumns(ctx context.Context, ref database.TableRef) ([]string, error) {
	schema := schemaOf(ref.Schema)
	q := `SELECT sql FROM ` + masterOf(schema) + ` WHERE name = ? AND type IN ('table', 'view')`

	var ddl []sql.NullString
	if err := c.conn.SelectContext(ctx, &ddl, q, ref.Table); err != nil {
		return nil, mapError(err, "failed to read table definition")
	}
	if len(ddl) == 0 || !ddl[0].Valid {
		return nil, errs.Newf(errs.ErrKindUnsupported, "table %s has no stored definition", ref.Table)
	}

	declared, err := autoIncrementDeclared(ddl[0].String)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindUnsupported, "failed to parse definition of table "+ref.Table, err)
	}
	if len(declared) == 0 {
		return nil, nil
	}

	const pk = `SELECT name FROM pragma_table_info(?, ?) WHERE pk = 1 AND upper(type) = 'INTEGER'`

	var names []string
	if err := c.conn.SelectContext(ctx, &names, pk, ref.Table, schema); err != nil {
		return nil, mapError(err, "failed to fetch primary keys")
	}
	return slices.DeleteFunc(names, func(n string) bool {
		return !slices.ContainsFunc(declared, func(d string) bool { return strings.EqualFold(d, n) })
	}), nil
}

// autoIncrementDeclared returns the columns whose own PRIMARY KEY
// constraint carries AUTOINCREMENT. Views yield nothing.
func autoIncrementDeclared(ddl string) ([]string, error) {
	stmt, err := rsql.NewParser(strings.NewReader(ddl)).ParseStatement()
	if err != nil {
		return nil, err
	}
	create, ok := stmt.(*rsql.CreateTableStatement)
	if !ok {
		return nil, nil
	}

	var names []string
	for _, col := range create.Columns {
		for _, cons := range col.Constraints {
			if pk, ok := cons.(*rsql.PrimaryKeyConstraint); ok && pk.Autoincrement.IsValid() {
				names = append(names, col.Name.Name)
			}
		}
	}
	return names, nil
}
