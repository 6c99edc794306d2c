// Package schema assembles normalized table, column and index metadata from
// a database catalog.
//
// Usage:
//
//	pool, err := mysql.New(ctx, cfg)
//	if err != nil { ... }
//	defer pool.Close()
//
//	tables, err := schema.New(pool).TableMeta(ctx, database.Filter{Schema: "app"})
package schema

import (
	"context"
	"fmt"
	"strings"

	"github.com/koustreak/ddlgen/internal/database"
	"github.com/koustreak/ddlgen/internal/errs"
	"github.com/koustreak/ddlgen/internal/logger"
	"github.com/koustreak/ddlgen/internal/meta"
)

// TableTypeTable is the table type listed when no types are requested.
const TableTypeTable = "TABLE"

// Introspector reads catalog metadata through a Source. Every operation
// acquires its own catalog connection and releases it before returning, on
// success and on error alike. An Introspector is safe for concurrent use
// when its Source is (a pool); a Dedicated source must not be shared.
type Introspector struct {
	src database.Source
}

// New creates an Introspector reading from src.
func New(src database.Source) *Introspector {
	return &Introspector{src: src}
}

// ListTableNames returns the names of tables matching f whose type is one of
// types (TABLE when none are given), in catalog order.
func (i *Introspector) ListTableNames(ctx context.Context, f database.Filter, types ...string) ([]string, error) {
	cat, err := i.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer cat.Release()

	rows, err := listTables(ctx, cat, f, types)
	if err != nil {
		return nil, err
	}

	names := make([]string, len(rows))
	for n, r := range rows {
		names[n] = r.Name
	}
	return names, nil
}

// TableMeta returns full metadata for every table matching f whose type is
// one of types (TABLE when none are given). For each table the primary keys,
// columns and indexes are fetched in that order; any failing step aborts the
// whole call and no partial tables are returned.
func (i *Introspector) TableMeta(ctx context.Context, f database.Filter, types ...string) ([]*meta.TableMeta, error) {
	cat, err := i.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer cat.Release()

	rows, err := listTables(ctx, cat, f, types)
	if err != nil {
		return nil, err
	}

	tables := make([]*meta.TableMeta, 0, len(rows))
	for _, r := range rows {
		t, err := buildTable(ctx, cat, r)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, nil
}

// ColumnMeta returns the columns of one table, primary-key flags included.
// A blank table name yields an empty result without touching the database.
func (i *Introspector) ColumnMeta(ctx context.Context, catalog, schemaName, table string) ([]meta.ColumnMeta, error) {
	if strings.TrimSpace(table) == "" {
		return []meta.ColumnMeta{}, nil
	}

	cat, err := i.acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer cat.Release()

	f, err := resolveFilter(ctx, cat, database.Filter{Catalog: catalog, Schema: schemaName})
	if err != nil {
		return nil, err
	}
	ref := database.TableRef{Catalog: f.Catalog, Schema: f.Schema, Table: table}

	pks, err := primaryKeys(ctx, cat, ref)
	if err != nil {
		return nil, err
	}
	pkSet := toSet(pks)

	return columns(ctx, cat, ref, func(name string) bool { return pkSet[name] })
}

// ColumnNames returns the column names of table in the connection's default
// catalog and schema.
func (i *Introspector) ColumnNames(ctx context.Context, table string) ([]string, error) {
	cols, err := i.ColumnMeta(ctx, "", "", table)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(cols))
	for n, c := range cols {
		names[n] = c.ColumnName
	}
	return names, nil
}

func (i *Introspector) acquire(ctx context.Context) (database.Catalog, error) {
	cat, err := i.src.Acquire(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindMetadata, "failed to acquire catalog connection", err)
	}
	return cat, nil
}

// --- catalog steps ---

// resolveFilter fills a blank catalog or schema from the connection defaults
// and a blank pattern with the match-all wildcard.
func resolveFilter(ctx context.Context, cat database.Catalog, f database.Filter) (database.Filter, error) {
	if f.Catalog == "" || f.Schema == "" {
		c, s, err := cat.Defaults(ctx)
		if err != nil {
			return f, errs.Wrap(errs.ErrKindMetadata, "failed to resolve default catalog and schema", err)
		}
		if f.Catalog == "" {
			f.Catalog = c
		}
		if f.Schema == "" {
			f.Schema = s
		}
	}
	if f.TableNamePattern == "" {
		f.TableNamePattern = "%"
	}
	return f, nil
}

func listTables(ctx context.Context, cat database.Catalog, f database.Filter, types []string) ([]database.TableRow, error) {
	f, err := resolveFilter(ctx, cat, f)
	if err != nil {
		return nil, err
	}

	rows, err := cat.Tables(ctx, f)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindMetadata,
			fmt.Sprintf("failed to list tables in schema %s", f.Schema), err)
	}

	if len(types) == 0 {
		types = []string{TableTypeTable}
	}
	want := make(map[string]bool, len(types))
	for _, t := range types {
		want[strings.ToUpper(strings.TrimSpace(t))] = true
	}

	matched := make([]database.TableRow, 0, len(rows))
	for _, r := range rows {
		if want[strings.ToUpper(r.Type)] {
			matched = append(matched, r)
		}
	}
	return matched, nil
}

func buildTable(ctx context.Context, cat database.Catalog, r database.TableRow) (*meta.TableMeta, error) {
	log := logger.FromContext(ctx)
	ref := r.Ref()

	t := &meta.TableMeta{
		Catalog:      r.Catalog,
		Schema:       r.Schema,
		TableName:    r.Name,
		TableComment: r.Comment,
		TableType:    r.Type,
	}

	pks, err := primaryKeys(ctx, cat, ref)
	if err != nil {
		return nil, err
	}
	for _, pk := range pks {
		t.AddPKName(pk)
	}
	if len(t.PKNames) > 1 {
		log.WarnWith("composite primary key", map[string]any{
			"table":   r.Name,
			"columns": t.PKNames,
		})
	}

	cols, err := columns(ctx, cat, ref, t.IsPrimaryKey)
	if err != nil {
		return nil, err
	}
	for _, c := range cols {
		t.PutColumn(c)
	}

	idx, err := cat.Indexes(ctx, ref)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindMetadata,
			fmt.Sprintf("failed to fetch indexes for table %s", r.Name), err)
	}
	t.IndexInfoList = mergeIndexes(idx)

	log.DebugWith("table inspected", map[string]any{
		"table":   r.Name,
		"columns": len(t.Columns),
		"indexes": len(t.IndexInfoList),
	})
	return t, nil
}

func primaryKeys(ctx context.Context, cat database.Catalog, ref database.TableRef) ([]string, error) {
	pks, err := cat.PrimaryKeys(ctx, ref)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindMetadata,
			fmt.Sprintf("failed to fetch primary keys for table %s", ref.Table), err)
	}
	return pks, nil
}

func columns(ctx context.Context, cat database.Catalog, ref database.TableRef, isPK func(string) bool) ([]meta.ColumnMeta, error) {
	rows, err := cat.Columns(ctx, ref)
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindMetadata,
			fmt.Sprintf("failed to fetch columns for table %s", ref.Table), err)
	}

	var detected map[string]bool
	for _, r := range rows {
		if r.AutoIncrement == nil {
			detected, err = detectAutoIncrement(ctx, cat, ref)
			if err != nil {
				return nil, err
			}
			break
		}
	}

	cols := make([]meta.ColumnMeta, 0, len(rows))
	for _, r := range rows {
		c := meta.ColumnMeta{
			Schema:          r.Schema,
			TableName:       r.TableName,
			ColumnName:      r.ColumnName,
			JDBCType:        r.DataType,
			JDBCTypeName:    r.TypeName,
			ColumnLength:    r.ColumnSize,
			OrdinalPosition: r.OrdinalPosition,
			PrimaryKey:      isPK(r.ColumnName),
			Nullable:        r.Nullable,
			ColumnDefault:   r.Default,
			ColumnComment:   r.Remarks,
			EnumValues:      r.EnumValues,
		}
		if c.Schema == "" {
			c.Schema = ref.Schema
		}
		if c.TableName == "" {
			c.TableName = ref.Table
		}
		if r.DecimalDigits != nil {
			c.Scale = *r.DecimalDigits
		}
		if r.AutoIncrement != nil {
			c.AutoIncrement = *r.AutoIncrement
		} else {
			c.AutoIncrement = detected[r.ColumnName]
		}
		cols = append(cols, c)
	}
	return cols, nil
}

// detectAutoIncrement asks a catalog that cannot report auto-increment per
// column. Drivers without the capability leave every column unset.
func detectAutoIncrement(ctx context.Context, cat database.Catalog, ref database.TableRef) (map[string]bool, error) {
	p, ok := cat.(database.AutoIncrementDetector)
	if !ok {
		return nil, nil
	}

	names, err := p.AutoIncrementColumns(ctx, ref)
	if errs.IsUnsupported(err) {
		logger.FromContext(ctx).DebugWith("auto-increment detection unavailable", map[string]any{
			"table": ref.Table,
			"error": err.Error(),
		})
		return nil, nil
	}
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindMetadata,
			fmt.Sprintf("failed to detect auto-increment columns for table %s", ref.Table), err)
	}
	return toSet(names), nil
}

// mergeIndexes drops statistics pseudo-rows and folds the remaining rows
// into one IndexMeta per (table, index).
func mergeIndexes(rows []database.IndexRow) []meta.IndexMeta {
	kept := make([]meta.IndexRow, 0, len(rows))
	for _, r := range rows {
		if r.Type == database.IndexStatistic {
			continue
		}
		kept = append(kept, meta.IndexRow{
			TableName:  r.TableName,
			IndexName:  r.IndexName,
			ColumnName: r.ColumnName,
			NonUnique:  r.NonUnique,
		})
	}
	return meta.MergeIndexRows(kept)
}

// --- helpers ---

func toSet(ss []string) map[string]bool {
	m := make(map[string]bool, len(ss))
	for _, s := range ss {
		m[s] = true
	}
	return m
}
