package mysql

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/koustreak/ddlgen/internal/database"
	"github.com/koustreak/ddlgen/internal/sqltype"
)

// catalog answers metadata queries from information_schema over one
// pinned connection. MySQL has no schemas below the database, so the
// database name is reported as the schema and the catalog is left blank.
type catalog struct {
	conn *sqlx.Conn
}

func (c *catalog) Release() {
	_ = c.conn.Close()
}

func (c *catalog) Defaults(ctx context.Context) (string, string, error) {
	const q = `SELECT COALESCE(DATABASE(), '')`

	var schema string
	if err := c.conn.GetContext(ctx, &schema, q); err != nil {
		return "", "", mapError(err, "failed to read current database")
	}
	return "", schema, nil
}

func (c *catalog) Tables(ctx context.Context, f database.Filter) ([]database.TableRow, error) {
	const q = `
		SELECT ''                         AS table_catalog,
		       table_schema               AS table_schema,
		       table_name                 AS table_name,
		       CASE table_type
		           WHEN 'BASE TABLE' THEN 'TABLE'
		           ELSE table_type
		       END                        AS table_type,
		       COALESCE(table_comment, '') AS table_comment
		FROM information_schema.tables
		WHERE table_schema = ?
		  AND table_name LIKE ?
		ORDER BY table_type, table_name`

	var rows []database.TableRow
	if err := c.conn.SelectContext(ctx, &rows, q, f.Schema, f.TableNamePattern); err != nil {
		return nil, mapError(err, "failed to list tables")
	}
	return rows, nil
}

func (c *catalog) PrimaryKeys(ctx context.Context, ref database.TableRef) ([]string, error) {
	const q = `
		SELECT column_name AS column_name
		FROM information_schema.key_column_usage
		WHERE table_schema    = ?
		  AND table_name      = ?
		  AND constraint_name = 'PRIMARY'
		ORDER BY ordinal_position`

	var names []string
	if err := c.conn.SelectContext(ctx, &names, q, ref.Schema, ref.Table); err != nil {
		return nil, mapError(err, "failed to fetch primary keys")
	}
	return names, nil
}

// columnRow mirrors one information_schema.columns row.
type columnRow struct {
	Schema            string         `db:"table_schema"`
	Table             string         `db:"table_name"`
	Name              string         `db:"column_name"`
	DataType          string         `db:"data_type"`
	ColumnType        string         `db:"column_type"`
	CharLength        sql.NullInt64  `db:"char_length"`
	NumericPrecision  sql.NullInt64  `db:"numeric_precision"`
	NumericScale      sql.NullInt64  `db:"numeric_scale"`
	DatetimePrecision sql.NullInt64  `db:"datetime_precision"`
	IsNullable        string         `db:"is_nullable"`
	Default           sql.NullString `db:"column_default"`
	Comment           string         `db:"column_comment"`
	Position          int            `db:"ordinal_position"`
	Extra             string         `db:"extra"`
}

func (c *catalog) Columns(ctx context.Context, ref database.TableRef) ([]database.ColumnRow, error) {
	const q = `
		SELECT table_schema             AS table_schema,
		       table_name               AS table_name,
		       column_name              AS column_name,
		       data_type                AS data_type,
		       column_type              AS column_type,
		       character_maximum_length AS char_length,
		       numeric_precision        AS numeric_precision,
		       numeric_scale            AS numeric_scale,
		       datetime_precision       AS datetime_precision,
		       is_nullable              AS is_nullable,
		       column_default           AS column_default,
		       column_comment           AS column_comment,
		       ordinal_position         AS ordinal_position,
		       extra                    AS extra
		FROM information_schema.columns
		WHERE table_schema = ?
		  AND table_name   = ?
		ORDER BY ordinal_position`

	var rows []columnRow
	if err := c.conn.SelectContext(ctx, &rows, q, ref.Schema, ref.Table); err != nil {
		return nil, mapError(err, "failed to fetch columns")
	}

	cols := make([]database.ColumnRow, len(rows))
	for i, r := range rows {
		cols[i] = r.toColumnRow()
	}
	return cols, nil
}

func (r columnRow) toColumnRow() database.ColumnRow {
	code := codeOf(r.DataType)
	autoInc := strings.Contains(strings.ToLower(r.Extra), "auto_increment")

	col := database.ColumnRow{
		Schema:          r.Schema,
		TableName:       r.Table,
		ColumnName:      r.Name,
		DataType:        code,
		TypeName:        typeName(r.DataType, r.ColumnType),
		Nullable:        strings.EqualFold(r.IsNullable, "YES"),
		Remarks:         r.Comment,
		OrdinalPosition: r.Position,
		AutoIncrement:   &autoInc,
		EnumValues:      enumValues(r.ColumnType),
	}
	if r.Default.Valid {
		col.Default = &r.Default.String
	}

	scale := int(r.NumericScale.Int64)
	switch {
	case sqltype.IsInteger(code), code == sqltype.Bit:
		col.ColumnSize = displayWidth(r.ColumnType)
		if col.ColumnSize == 0 {
			col.ColumnSize = int(r.NumericPrecision.Int64)
		}
	case sqltype.IsDecimal(code):
		col.ColumnSize = int(r.NumericPrecision.Int64)
	case sqltype.IsTemporal(code):
		scale = int(r.DatetimePrecision.Int64)
	default:
		col.ColumnSize = int(r.CharLength.Int64)
	}
	col.DecimalDigits = &scale
	return col
}

// indexRow mirrors one information_schema.statistics row.
type indexRow struct {
	Table     string `db:"table_name"`
	Index     string `db:"index_name"`
	Column    string `db:"column_name"`
	NonUnique int    `db:"non_unique"`
	IndexType string `db:"index_type"`
	Position  int    `db:"seq_in_index"`
}

func (c *catalog) Indexes(ctx context.Context, ref database.TableRef) ([]database.IndexRow, error) {
	const q = `
		SELECT table_name               AS table_name,
		       index_name               AS index_name,
		       COALESCE(column_name, '') AS column_name,
		       non_unique               AS non_unique,
		       index_type               AS index_type,
		       seq_in_index             AS seq_in_index
		FROM information_schema.statistics
		WHERE table_schema = ?
		  AND table_name   = ?
		ORDER BY non_unique, index_name, seq_in_index`

	var rows []indexRow
	if err := c.conn.SelectContext(ctx, &rows, q, ref.Schema, ref.Table); err != nil {
		return nil, mapError(err, "failed to fetch indexes")
	}

	idx := make([]database.IndexRow, len(rows))
	for i, r := range rows {
		typ := database.IndexOther
		if strings.EqualFold(r.IndexType, "HASH") {
			typ = database.IndexHashed
		}
		idx[i] = database.IndexRow{
			TableName:  r.Table,
			IndexName:  r.Index,
			ColumnName: r.Column,
			NonUnique:  r.NonUnique != 0,
			Type:       typ,
			Position:   r.Position,
		}
	}
	return idx, nil
}
