package schema

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/ddlgen/internal/database"
	"github.com/koustreak/ddlgen/internal/errs"
	"github.com/koustreak/ddlgen/internal/logger"
	"github.com/koustreak/ddlgen/internal/sqltype"
)

var errBoom = errors.New("boom")

// fakeCatalog serves canned rows and records every call it receives.
type fakeCatalog struct {
	tables  []database.TableRow
	pks     map[string][]string
	columns map[string][]database.ColumnRow
	indexes map[string][]database.IndexRow

	failOn string

	calls      []string
	lastFilter database.Filter
	released   int
}

func (f *fakeCatalog) fail(step string) error {
	if f.failOn == step {
		return errBoom
	}
	return nil
}

func (f *fakeCatalog) Defaults(context.Context) (string, string, error) {
	f.calls = append(f.calls, "defaults")
	return "", "app", f.fail("defaults")
}

func (f *fakeCatalog) Tables(_ context.Context, flt database.Filter) ([]database.TableRow, error) {
	f.calls = append(f.calls, "tables")
	f.lastFilter = flt
	return f.tables, f.fail("tables")
}

func (f *fakeCatalog) PrimaryKeys(_ context.Context, ref database.TableRef) ([]string, error) {
	f.calls = append(f.calls, "pks:"+ref.Table)
	return f.pks[ref.Table], f.fail("pks")
}

func (f *fakeCatalog) Columns(_ context.Context, ref database.TableRef) ([]database.ColumnRow, error) {
	f.calls = append(f.calls, "columns:"+ref.Table)
	return f.columns[ref.Table], f.fail("columns")
}

func (f *fakeCatalog) Indexes(_ context.Context, ref database.TableRef) ([]database.IndexRow, error) {
	f.calls = append(f.calls, "indexes:"+ref.Table)
	return f.indexes[ref.Table], f.fail("indexes")
}

func (f *fakeCatalog) Release() { f.released++ }

// detectingCatalog adds auto-increment detection to fakeCatalog.
type detectingCatalog struct {
	*fakeCatalog
	autoInc  []string
	detectErr error
}

func (p *detectingCatalog) AutoIncrementColumns(context.Context, database.TableRef) ([]string, error) {
	p.calls = append(p.calls, "autoinc")
	return p.autoInc, p.detectErr
}

type fakeSource struct {
	cat        database.Catalog
	acquireErr error
	acquired   int
}

func (s *fakeSource) Acquire(context.Context) (database.Catalog, error) {
	if s.acquireErr != nil {
		return nil, s.acquireErr
	}
	s.acquired++
	return s.cat, nil
}

func boolPtr(b bool) *bool { return &b }
func intPtr(i int) *int    { return &i }

func newFixture() *fakeCatalog {
	return &fakeCatalog{
		tables: []database.TableRow{
			{Schema: "app", Name: "users", Type: "TABLE", Comment: "user table"},
			{Schema: "app", Name: "active_users", Type: "VIEW"},
			{Schema: "app", Name: "orders", Type: "TABLE"},
		},
		pks: map[string][]string{
			"users":  {"id"},
			"orders": {"tenant_id", "order_id"},
		},
		columns: map[string][]database.ColumnRow{
			"users": {
				{ColumnName: "id", DataType: sqltype.BigInt, TypeName: "BIGINT", ColumnSize: 20, DecimalDigits: intPtr(0), OrdinalPosition: 1, AutoIncrement: boolPtr(true)},
				{ColumnName: "name", DataType: sqltype.VarChar, TypeName: "VARCHAR", ColumnSize: 64, OrdinalPosition: 2, AutoIncrement: boolPtr(false), Remarks: "user name"},
				{ColumnName: "balance", DataType: sqltype.Decimal, TypeName: "DECIMAL", ColumnSize: 10, DecimalDigits: intPtr(2), Nullable: true, OrdinalPosition: 3, AutoIncrement: boolPtr(false)},
			},
			"active_users": {
				{ColumnName: "id", DataType: sqltype.BigInt, TypeName: "BIGINT", OrdinalPosition: 1, AutoIncrement: boolPtr(false)},
			},
			"orders": {
				{ColumnName: "tenant_id", DataType: sqltype.Integer, TypeName: "INT", OrdinalPosition: 1, AutoIncrement: boolPtr(false)},
				{ColumnName: "order_id", DataType: sqltype.Integer, TypeName: "INT", OrdinalPosition: 2, AutoIncrement: boolPtr(false)},
			},
		},
		indexes: map[string][]database.IndexRow{
			"users": {
				{TableName: "users", IndexName: "", Type: database.IndexStatistic},
				{TableName: "users", IndexName: "PRIMARY", ColumnName: "id", Type: database.IndexOther, Position: 1},
				{TableName: "users", IndexName: "idx_name_balance", ColumnName: "name", NonUnique: true, Type: database.IndexOther, Position: 1},
				{TableName: "users", IndexName: "idx_name_balance", ColumnName: "balance", NonUnique: true, Type: database.IndexOther, Position: 2},
			},
		},
	}
}

func TestTableMeta(t *testing.T) {
	cat := newFixture()
	src := &fakeSource{cat: cat}

	tables, err := New(src).TableMeta(context.Background(), database.Filter{})
	require.NoError(t, err)
	require.Len(t, tables, 2)

	users := tables[0]
	assert.Equal(t, "users", users.TableName)
	assert.Equal(t, "app", users.Schema)
	assert.Equal(t, "user table", users.TableComment)
	assert.Equal(t, "TABLE", users.TableType)
	assert.Equal(t, []string{"id"}, users.PKNames)
	assert.Equal(t, []string{"id", "name", "balance"}, users.ColumnNames())

	id, ok := users.Column("id")
	require.True(t, ok)
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.AutoIncrement)
	assert.Equal(t, "users", id.TableName)
	assert.Equal(t, "app", id.Schema)

	name, _ := users.Column("name")
	assert.False(t, name.PrimaryKey)
	assert.Equal(t, "user name", name.ColumnComment)

	balance, _ := users.Column("balance")
	assert.Equal(t, 2, balance.Scale)
	assert.Equal(t, 3, balance.OrdinalPosition)

	require.Len(t, users.IndexInfoList, 2)
	assert.Equal(t, "PRIMARY", users.IndexInfoList[0].IndexName)
	assert.Equal(t, "name,balance", users.IndexInfoList[1].ColumnName)
	assert.True(t, users.IndexInfoList[1].NonUnique)
	require.NoError(t, users.Validate())

	assert.Equal(t, []string{"tenant_id", "order_id"}, tables[1].PKNames)

	assert.Equal(t, []string{
		"defaults", "tables",
		"pks:users", "columns:users", "indexes:users",
		"pks:orders", "columns:orders", "indexes:orders",
	}, cat.calls)
	assert.Equal(t, 1, cat.released)
}

func TestTableMeta_ResolvesFilterDefaults(t *testing.T) {
	cat := newFixture()

	_, err := New(&fakeSource{cat: cat}).TableMeta(context.Background(), database.Filter{})
	require.NoError(t, err)
	assert.Equal(t, database.Filter{Schema: "app", TableNamePattern: "%"}, cat.lastFilter)

	cat = newFixture()
	_, err = New(&fakeSource{cat: cat}).TableMeta(context.Background(), database.Filter{Catalog: "c", Schema: "sales", TableNamePattern: "ord%"})
	require.NoError(t, err)
	assert.Equal(t, database.Filter{Catalog: "c", Schema: "sales", TableNamePattern: "ord%"}, cat.lastFilter)
	assert.NotContains(t, cat.calls, "defaults")
}

func TestTableMeta_TableTypes(t *testing.T) {
	tests := []struct {
		name  string
		types []string
		want  []string
	}{
		{"default is TABLE", nil, []string{"users", "orders"}},
		{"views only", []string{"view"}, []string{"active_users"}},
		{"both", []string{"TABLE", "VIEW"}, []string{"users", "active_users", "orders"}},
		{"nothing matches", []string{"SYSTEM TABLE"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			names, err := New(&fakeSource{cat: newFixture()}).ListTableNames(context.Background(), database.Filter{}, tt.types...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestTableMeta_StepFailures(t *testing.T) {
	tests := []struct {
		step    string
		message string
	}{
		{"defaults", "failed to resolve default catalog and schema"},
		{"tables", "failed to list tables in schema app"},
		{"pks", "failed to fetch primary keys for table users"},
		{"columns", "failed to fetch columns for table users"},
		{"indexes", "failed to fetch indexes for table users"},
	}

	for _, tt := range tests {
		t.Run(tt.step, func(t *testing.T) {
			cat := newFixture()
			cat.failOn = tt.step

			tables, err := New(&fakeSource{cat: cat}).TableMeta(context.Background(), database.Filter{})
			require.Error(t, err)
			assert.Nil(t, tables)
			assert.True(t, errs.IsMetadata(err))
			assert.ErrorIs(t, err, errBoom)
			assert.Contains(t, err.Error(), tt.message)
			assert.Equal(t, 1, cat.released, "catalog must be released on failure")
		})
	}
}

func TestTableMeta_AcquireFailure(t *testing.T) {
	src := &fakeSource{acquireErr: errs.New(errs.ErrKindConnectionFailed, "dial tcp")}

	_, err := New(src).TableMeta(context.Background(), database.Filter{})
	require.Error(t, err)
	assert.True(t, errs.IsMetadata(err))
	assert.Contains(t, err.Error(), "dial tcp")
}

func TestTableMeta_WarnsOnCompositeKey(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "warn", Format: "json", Output: &buf})
	ctx := log.WithContext(context.Background())

	_, err := New(&fakeSource{cat: newFixture()}).TableMeta(ctx, database.Filter{})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "composite primary key")
	assert.Contains(t, out, `"table":"orders"`)
	assert.NotContains(t, out, `"table":"users"`)
}

func TestColumnMeta(t *testing.T) {
	cat := newFixture()
	src := &fakeSource{cat: cat}

	cols, err := New(src).ColumnMeta(context.Background(), "", "", "orders")
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.True(t, cols[0].PrimaryKey)
	assert.True(t, cols[1].PrimaryKey)
	assert.Equal(t, []string{"defaults", "pks:orders", "columns:orders"}, cat.calls)
	assert.Equal(t, 1, cat.released)
}

func TestColumnMeta_BlankTable(t *testing.T) {
	src := &fakeSource{cat: newFixture()}

	for _, table := range []string{"", "   "} {
		cols, err := New(src).ColumnMeta(context.Background(), "", "app", table)
		require.NoError(t, err)
		assert.NotNil(t, cols)
		assert.Empty(t, cols)
	}
	assert.Zero(t, src.acquired)
}

func TestColumnMeta_Failure(t *testing.T) {
	cat := newFixture()
	cat.failOn = "columns"

	_, err := New(&fakeSource{cat: cat}).ColumnMeta(context.Background(), "", "app", "users")
	require.Error(t, err)
	assert.True(t, errs.IsMetadata(err))
	assert.Equal(t, 1, cat.released)
}

func TestColumnNames(t *testing.T) {
	names, err := New(&fakeSource{cat: newFixture()}).ColumnNames(context.Background(), "users")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "balance"}, names)
}

func unknownAutoIncrement(cat *fakeCatalog) {
	for table, cols := range cat.columns {
		for i := range cols {
			cols[i].AutoIncrement = nil
		}
		cat.columns[table] = cols
	}
}

func TestAutoIncrementDetection(t *testing.T) {
	t.Run("detector answers", func(t *testing.T) {
		base := newFixture()
		unknownAutoIncrement(base)
		cat := &detectingCatalog{fakeCatalog: base, autoInc: []string{"id"}}

		cols, err := New(&fakeSource{cat: cat}).ColumnMeta(context.Background(), "", "app", "users")
		require.NoError(t, err)
		assert.True(t, cols[0].AutoIncrement)
		assert.False(t, cols[1].AutoIncrement)
		assert.Contains(t, base.calls, "autoinc")
	})

	t.Run("unsupported is absorbed", func(t *testing.T) {
		base := newFixture()
		unknownAutoIncrement(base)
		cat := &detectingCatalog{fakeCatalog: base, detectErr: errs.New(errs.ErrKindUnsupported, "no stored definition")}

		cols, err := New(&fakeSource{cat: cat}).ColumnMeta(context.Background(), "", "app", "users")
		require.NoError(t, err)
		for _, c := range cols {
			assert.False(t, c.AutoIncrement, c.ColumnName)
		}
	})

	t.Run("other errors fail the call", func(t *testing.T) {
		base := newFixture()
		unknownAutoIncrement(base)
		cat := &detectingCatalog{fakeCatalog: base, detectErr: fmt.Errorf("detect: %w", errBoom)}

		_, err := New(&fakeSource{cat: cat}).ColumnMeta(context.Background(), "", "app", "users")
		require.Error(t, err)
		assert.True(t, errs.IsMetadata(err))
		assert.Contains(t, err.Error(), "failed to detect auto-increment columns for table users")
		assert.Equal(t, 1, base.released)
	})

	t.Run("reported flags skip detection", func(t *testing.T) {
		base := newFixture()
		cat := &detectingCatalog{fakeCatalog: base, autoInc: []string{"name"}}

		cols, err := New(&fakeSource{cat: cat}).ColumnMeta(context.Background(), "", "app", "users")
		require.NoError(t, err)
		assert.False(t, cols[1].AutoIncrement)
		assert.NotContains(t, base.calls, "autoinc")
	})
}

func TestDedicatedSource(t *testing.T) {
	t.Run("caller keeps the connection", func(t *testing.T) {
		cat := newFixture()

		_, err := New(database.Dedicated(cat)).TableMeta(context.Background(), database.Filter{})
		require.NoError(t, err)
		assert.Zero(t, cat.released)
	})

	t.Run("detector is forwarded", func(t *testing.T) {
		base := newFixture()
		unknownAutoIncrement(base)
		cat := &detectingCatalog{fakeCatalog: base, autoInc: []string{"id"}}

		cols, err := New(database.Dedicated(cat)).ColumnMeta(context.Background(), "", "app", "users")
		require.NoError(t, err)
		assert.True(t, cols[0].AutoIncrement)
		assert.Zero(t, base.released)
	})

	t.Run("missing detector is unsupported", func(t *testing.T) {
		cat := newFixture()
		unknownAutoIncrement(cat)

		cols, err := New(database.Dedicated(cat)).ColumnMeta(context.Background(), "", "app", "users")
		require.NoError(t, err)
		assert.False(t, cols[0].AutoIncrement)
	})
}
