package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/ddlgen/internal/database"
	"github.com/koustreak/ddlgen/internal/errs"
	"github.com/koustreak/ddlgen/internal/sqltype"
)

const fixture = `
CREATE TABLE users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       VARCHAR(64) NOT NULL,
	email      TEXT,
	balance    DECIMAL(10, 2) DEFAULT 0,
	active     BOOLEAN NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE UNIQUE INDEX idx_users_email ON users (email);
CREATE TABLE memberships (
	tenant_id INTEGER NOT NULL,
	user_id   INTEGER NOT NULL,
	role      TEXT DEFAULT 'member',
	PRIMARY KEY (tenant_id, user_id)
);
CREATE INDEX idx_memberships_role ON memberships (role, user_id);
CREATE VIEW active_users AS SELECT id, name FROM users WHERE active = 1;
`

func openFixture(t *testing.T) *Driver {
	t.Helper()

	ctx := context.Background()
	cfg := database.DefaultConfig(database.DriverSQLite, filepath.Join(t.TempDir(), "fixture.db"))

	d, err := New(ctx, cfg)
	require.NoError(t, err)
	t.Cleanup(d.Close)

	_, err = d.DB().ExecContext(ctx, fixture)
	require.NoError(t, err)
	return d
}

func acquire(t *testing.T, d *Driver) database.Catalog {
	t.Helper()
	cat, err := d.Acquire(context.Background())
	require.NoError(t, err)
	t.Cleanup(cat.Release)
	return cat
}

func TestCatalog_Tables(t *testing.T) {
	cat := acquire(t, openFixture(t))
	ctx := context.Background()

	rows, err := cat.Tables(ctx, database.Filter{Schema: "main", TableNamePattern: "%"})
	require.NoError(t, err)

	got := make(map[string]string, len(rows))
	for _, r := range rows {
		got[r.Name] = r.Type
		assert.Equal(t, "main", r.Schema)
	}
	assert.Equal(t, map[string]string{
		"users":        "TABLE",
		"memberships":  "TABLE",
		"active_users": "VIEW",
	}, got)

	rows, err = cat.Tables(ctx, database.Filter{Schema: "main", TableNamePattern: "mem%"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "memberships", rows[0].Name)
}

func TestCatalog_PrimaryKeys(t *testing.T) {
	cat := acquire(t, openFixture(t))
	ctx := context.Background()

	pks, err := cat.PrimaryKeys(ctx, database.TableRef{Table: "users"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, pks)

	pks, err = cat.PrimaryKeys(ctx, database.TableRef{Table: "memberships"})
	require.NoError(t, err)
	assert.Equal(t, []string{"tenant_id", "user_id"}, pks)
}

func TestCatalog_Columns(t *testing.T) {
	cat := acquire(t, openFixture(t))

	cols, err := cat.Columns(context.Background(), database.TableRef{Schema: "main", Table: "users"})
	require.NoError(t, err)
	require.Len(t, cols, 6)

	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.ColumnName
		assert.Equal(t, i+1, c.OrdinalPosition)
		assert.Nil(t, c.AutoIncrement)
	}
	assert.Equal(t, []string{"id", "name", "email", "balance", "active", "created_at"}, names)

	assert.Equal(t, sqltype.VarChar, cols[1].DataType)
	assert.Equal(t, 64, cols[1].ColumnSize)
	assert.False(t, cols[1].Nullable)

	assert.Equal(t, sqltype.Decimal, cols[3].DataType)
	assert.Equal(t, 10, cols[3].ColumnSize)
	assert.Equal(t, 2, *cols[3].DecimalDigits)
	require.NotNil(t, cols[3].Default)
	assert.Equal(t, "0", *cols[3].Default)

	assert.Equal(t, sqltype.Boolean, cols[4].DataType)
	assert.Equal(t, 1, cols[4].ColumnSize)

	assert.Equal(t, sqltype.Timestamp, cols[5].DataType)
	assert.Equal(t, "CURRENT_TIMESTAMP", *cols[5].Default)
	assert.Nil(t, cols[2].Default)
}

func TestCatalog_Indexes(t *testing.T) {
	cat := acquire(t, openFixture(t))

	idx, err := cat.Indexes(context.Background(), database.TableRef{Table: "memberships"})
	require.NoError(t, err)

	var role []database.IndexRow
	for _, r := range idx {
		if r.IndexName == "idx_memberships_role" {
			role = append(role, r)
		}
	}
	require.Len(t, role, 2)
	assert.Equal(t, "role", role[0].ColumnName)
	assert.Equal(t, "user_id", role[1].ColumnName)
	assert.True(t, role[0].NonUnique)
	assert.Equal(t, database.IndexOther, role[0].Type)

	idx, err = cat.Indexes(context.Background(), database.TableRef{Table: "users"})
	require.NoError(t, err)
	require.Len(t, idx, 1)
	assert.Equal(t, "idx_users_email", idx[0].IndexName)
	assert.False(t, idx[0].NonUnique)
}

func TestCatalog_AutoIncrementColumns(t *testing.T) {
	cat := acquire(t, openFixture(t))
	ctx := context.Background()
	detector := cat.(database.AutoIncrementDetector)

	cols, err := detector.AutoIncrementColumns(ctx, database.TableRef{Table: "users"})
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, cols)

	cols, err = detector.AutoIncrementColumns(ctx, database.TableRef{Table: "memberships"})
	require.NoError(t, err)
	assert.Empty(t, cols)

	cols, err = detector.AutoIncrementColumns(ctx, database.TableRef{Table: "active_users"})
	require.NoError(t, err)
	assert.Empty(t, cols)
}

func TestCatalog_AutoIncrementIgnoresKeywordOutsideKey(t *testing.T) {
	d := openFixture(t)
	ctx := context.Background()

	_, err := d.DB().ExecContext(ctx, `
		CREATE TABLE notes (
			id   INTEGER PRIMARY KEY, -- not AUTOINCREMENT
			body TEXT DEFAULT 'AUTOINCREMENT'
		)`)
	require.NoError(t, err)

	cols, err := acquire(t, d).(database.AutoIncrementDetector).AutoIncrementColumns(ctx, database.TableRef{Table: "notes"})
	if err != nil {
		assert.True(t, errs.IsUnsupported(err))
	}
	assert.Empty(t, cols)
}

func TestAutoIncrementDeclared(t *testing.T) {
	tests := []struct {
		name string
		ddl  string
		want []string
	}{
		{
			name: "column key",
			ddl:  `CREATE TABLE t (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT)`,
			want: []string{"id"},
		},
		{
			name: "not null before key",
			ddl:  `CREATE TABLE t (name TEXT, "Id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT)`,
			want: []string{"Id"},
		},
		{
			name: "plain key",
			ddl:  `CREATE TABLE t (id INTEGER PRIMARY KEY, name TEXT)`,
		},
		{
			name: "keyword in string default",
			ddl:  `CREATE TABLE t (id INTEGER PRIMARY KEY, note TEXT DEFAULT 'AUTOINCREMENT')`,
		},
		{
			name: "keyword as quoted column name",
			ddl:  `CREATE TABLE t ("autoincrement" INTEGER PRIMARY KEY, note TEXT)`,
		},
		{
			name: "table key constraint",
			ddl:  `CREATE TABLE t (a INTEGER, b INTEGER, PRIMARY KEY (a, b))`,
		},
		{
			name: "view",
			ddl:  `CREATE VIEW v AS SELECT 1`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := autoIncrementDeclared(tt.ddl)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalog_AttachedSchema(t *testing.T) {
	cat := acquire(t, openFixture(t))
	ctx := context.Background()

	conn := cat.(*catalog).conn
	_, err := conn.ExecContext(ctx, "ATTACH DATABASE ? AS aux", filepath.Join(t.TempDir(), "aux.db"))
	require.NoError(t, err)
	_, err = conn.ExecContext(ctx, `
		CREATE TABLE aux.logs (
			id  INTEGER PRIMARY KEY AUTOINCREMENT,
			msg TEXT NOT NULL
		);
		CREATE INDEX aux.idx_logs_msg ON logs (msg);`)
	require.NoError(t, err)

	aux := database.TableRef{Schema: "aux", Table: "logs"}

	rows, err := cat.Tables(ctx, database.Filter{Schema: "aux", TableNamePattern: "%"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "aux", rows[0].Schema)
	assert.Equal(t, "logs", rows[0].Name)

	rows, err = cat.Tables(ctx, database.Filter{Schema: "main", TableNamePattern: "logs"})
	require.NoError(t, err)
	assert.Empty(t, rows)

	pks, err := cat.PrimaryKeys(ctx, aux)
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, pks)

	pks, err = cat.PrimaryKeys(ctx, database.TableRef{Table: "logs"})
	require.NoError(t, err)
	assert.Empty(t, pks)

	cols, err := cat.Columns(ctx, aux)
	require.NoError(t, err)
	require.Len(t, cols, 2)
	assert.Equal(t, "aux", cols[0].Schema)
	assert.Equal(t, "msg", cols[1].ColumnName)

	idx, err := cat.Indexes(ctx, aux)
	require.NoError(t, err)
	require.Len(t, idx, 1)
	assert.Equal(t, "idx_logs_msg", idx[0].IndexName)

	auto, err := cat.(database.AutoIncrementDetector).AutoIncrementColumns(ctx, aux)
	require.NoError(t, err)
	assert.Equal(t, []string{"id"}, auto)

	_, err = cat.Tables(ctx, database.Filter{Schema: "missing", TableNamePattern: "%"})
	require.Error(t, err)
	assert.True(t, errs.IsNotFound(err))
}
