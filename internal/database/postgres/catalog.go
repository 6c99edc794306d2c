package postgres

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/koustreak/ddlgen/internal/database"
	"github.com/koustreak/ddlgen/internal/sqltype"
)

// catalog reads pg_catalog and information_schema over one pooled
// connection. A connection only sees its own database, so Filter.Catalog
// is not used.
type catalog struct {
	conn *pgxpool.Conn
}

func (c *catalog) Release() {
	c.conn.Release()
}

func (c *catalog) Defaults(ctx context.Context) (string, string, error) {
	const q = `SELECT current_database()::text, COALESCE(current_schema()::text, '')`

	var db, schema string
	if err := c.conn.QueryRow(ctx, q).Scan(&db, &schema); err != nil {
		return "", "", mapError(err, "failed to read current schema")
	}
	return db, schema, nil
}

func (c *catalog) Tables(ctx context.Context, f database.Filter) ([]database.TableRow, error) {
	const q = `
		SELECT current_database()::text AS table_catalog,
		       n.nspname::text          AS table_schema,
		       c.relname::text          AS table_name,
		       CASE c.relkind
		           WHEN 'r' THEN 'TABLE'
		           WHEN 'p' THEN 'TABLE'
		           WHEN 'v' THEN 'VIEW'
		           WHEN 'm' THEN 'MATERIALIZED VIEW'
		           WHEN 'f' THEN 'FOREIGN TABLE'
		       END                      AS table_type,
		       COALESCE(obj_description(c.oid, 'pg_class'), '') AS table_comment
		FROM pg_catalog.pg_class c
		JOIN pg_catalog.pg_namespace n ON n.oid = c.relnamespace
		WHERE c.relkind IN ('r', 'p', 'v', 'm', 'f')
		  AND n.nspname = $1
		  AND c.relname LIKE $2
		ORDER BY table_type, table_name`

	rows, err := c.conn.Query(ctx, q, f.Schema, f.TableNamePattern)
	if err != nil {
		return nil, mapError(err, "failed to list tables")
	}
	defer rows.Close()

	var tables []database.TableRow
	for rows.Next() {
		var t database.TableRow
		if err := rows.Scan(&t.Catalog, &t.Schema, &t.Name, &t.Type, &t.Comment); err != nil {
			return nil, mapError(err, "failed to scan table row")
		}
		tables = append(tables, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating tables")
	}
	return tables, nil
}

func (c *catalog) PrimaryKeys(ctx context.Context, ref database.TableRef) ([]string, error) {
	const q = `
		SELECT kcu.column_name::text
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
		  ON tc.constraint_name = kcu.constraint_name
		 AND tc.table_schema    = kcu.table_schema
		 AND tc.table_name      = kcu.table_name
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema    = $1
		  AND tc.table_name      = $2
		ORDER BY kcu.ordinal_position`

	rows, err := c.conn.Query(ctx, q, ref.Schema, ref.Table)
	if err != nil {
		return nil, mapError(err, "failed to fetch primary keys")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, mapError(err, "failed to scan primary key")
		}
		names = append(names, s)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating primary keys")
	}
	return names, nil
}

// columnRow mirrors one row of the column query.
type columnRow struct {
	schema, table, name string
	udtName             string
	charLength          *int32
	numericPrecision    *int32
	numericScale        *int32
	datetimePrecision   *int32
	nullable            bool
	columnDefault       *string
	comment             string
	position            int32
	identity            bool
}

func (c *catalog) Columns(ctx context.Context, ref database.TableRef) ([]database.ColumnRow, error) {
	const q = `
		SELECT c.table_schema::text,
		       c.table_name::text,
		       c.column_name::text,
		       c.udt_name::text,
		       c.character_maximum_length::int,
		       c.numeric_precision::int,
		       c.numeric_scale::int,
		       c.datetime_precision::int,
		       c.is_nullable = 'YES',
		       c.column_default::text,
		       COALESCE(col_description(a.attrelid, a.attnum), ''),
		       c.ordinal_position::int,
		       c.is_identity = 'YES'
		FROM information_schema.columns c
		LEFT JOIN pg_catalog.pg_attribute a
		  ON a.attrelid = format('%I.%I', c.table_schema, c.table_name)::regclass
		 AND a.attname  = c.column_name
		WHERE c.table_schema = $1
		  AND c.table_name   = $2
		ORDER BY c.ordinal_position`

	rows, err := c.conn.Query(ctx, q, ref.Schema, ref.Table)
	if err != nil {
		return nil, mapError(err, "failed to fetch columns")
	}
	defer rows.Close()

	var cols []database.ColumnRow
	for rows.Next() {
		var r columnRow
		if err := rows.Scan(
			&r.schema, &r.table, &r.name, &r.udtName,
			&r.charLength, &r.numericPrecision, &r.numericScale, &r.datetimePrecision,
			&r.nullable, &r.columnDefault, &r.comment, &r.position, &r.identity,
		); err != nil {
			return nil, mapError(err, "failed to scan column info")
		}
		cols = append(cols, r.toColumnRow())
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating columns")
	}
	return cols, nil
}

func (r columnRow) toColumnRow() database.ColumnRow {
	code := codeOf(r.udtName)

	col := database.ColumnRow{
		Schema:          r.schema,
		TableName:       r.table,
		ColumnName:      r.name,
		DataType:        code,
		TypeName:        strings.ToUpper(r.udtName),
		Nullable:        r.nullable,
		Remarks:         r.comment,
		OrdinalPosition: int(r.position),
	}

	autoInc := r.identity
	if r.columnDefault != nil {
		if strings.HasPrefix(strings.ToLower(*r.columnDefault), "nextval(") {
			autoInc = true
		}
		if def, ok := normalizeDefault(*r.columnDefault); ok {
			col.Default = &def
		}
	}
	col.AutoIncrement = &autoInc

	scale := deref(r.numericScale)
	switch {
	case r.udtName == "bool":
		col.ColumnSize = 1
	case sqltype.IsTemporal(code):
		scale = deref(r.datetimePrecision)
	case r.charLength != nil:
		col.ColumnSize = deref(r.charLength)
	default:
		col.ColumnSize = deref(r.numericPrecision)
	}
	col.DecimalDigits = &scale
	return col
}

func (c *catalog) Indexes(ctx context.Context, ref database.TableRef) ([]database.IndexRow, error) {
	const q = `
		SELECT t.relname::text,
		       i.relname::text,
		       COALESCE(a.attname::text, ''),
		       NOT ix.indisunique,
		       CASE
		           WHEN am.amname = 'hash' THEN 2
		           WHEN ix.indisclustered  THEN 1
		           ELSE 3
		       END::int2,
		       k.ord::int
		FROM pg_catalog.pg_index ix
		JOIN pg_catalog.pg_class t     ON t.oid = ix.indrelid
		JOIN pg_catalog.pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_catalog.pg_class i     ON i.oid = ix.indexrelid
		JOIN pg_catalog.pg_am am       ON am.oid = i.relam
		CROSS JOIN LATERAL unnest(ix.indkey::int2[]) WITH ORDINALITY AS k(attnum, ord)
		LEFT JOIN pg_catalog.pg_attribute a
		  ON a.attrelid = t.oid
		 AND a.attnum   = k.attnum
		WHERE n.nspname = $1
		  AND t.relname = $2
		ORDER BY NOT ix.indisunique, i.relname, k.ord`

	rows, err := c.conn.Query(ctx, q, ref.Schema, ref.Table)
	if err != nil {
		return nil, mapError(err, "failed to fetch indexes")
	}
	defer rows.Close()

	var idx []database.IndexRow
	for rows.Next() {
		var (
			r   database.IndexRow
			pos int32
		)
		if err := rows.Scan(&r.TableName, &r.IndexName, &r.ColumnName, &r.NonUnique, &r.Type, &pos); err != nil {
			return nil, mapError(err, "failed to scan index info")
		}
		r.Position = int(pos)
		idx = append(idx, r)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating indexes")
	}
	return idx, nil
}

func deref(p *int32) int {
	if p == nil {
		return 0
	}
	return int(*p)
}
