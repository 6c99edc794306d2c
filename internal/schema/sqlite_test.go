package schema_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/ddlgen/internal/database"
	"github.com/koustreak/ddlgen/internal/database/sqlite"
	"github.com/koustreak/ddlgen/internal/dialect"
	"github.com/koustreak/ddlgen/internal/schema"
)

const fixture = `
CREATE TABLE users (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	name       VARCHAR(64) NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE memberships (
	tenant_id INTEGER NOT NULL,
	user_id   INTEGER NOT NULL,
	role      TEXT DEFAULT 'member',
	PRIMARY KEY (tenant_id, user_id)
);
CREATE INDEX idx_memberships_role ON memberships (role, user_id);
CREATE VIEW member_roles AS SELECT tenant_id, role FROM memberships;
`

func openSQLite(t *testing.T) *sqlite.Driver {
	t.Helper()

	ctx := context.Background()
	d, err := sqlite.New(ctx, database.DefaultConfig(database.DriverSQLite, filepath.Join(t.TempDir(), "app.db")))
	require.NoError(t, err)
	t.Cleanup(d.Close)

	_, err = d.DB().ExecContext(ctx, fixture)
	require.NoError(t, err)
	return d
}

func TestIntrospector_SQLite(t *testing.T) {
	ctx := context.Background()
	in := schema.New(openSQLite(t))

	tables, err := in.TableMeta(ctx, database.Filter{})
	require.NoError(t, err)
	require.Len(t, tables, 2)

	byName := map[string]int{}
	for i, tbl := range tables {
		byName[tbl.TableName] = i
		require.NoError(t, tbl.Validate(), tbl.TableName)
	}

	users := tables[byName["users"]]
	assert.Equal(t, []string{"id"}, users.PKNames)
	id, ok := users.Column("id")
	require.True(t, ok)
	assert.True(t, id.PrimaryKey)
	assert.True(t, id.AutoIncrement)

	members := tables[byName["memberships"]]
	assert.Equal(t, []string{"tenant_id", "user_id"}, members.PKNames)
	require.Len(t, members.IndexInfoList, 2)

	views, err := in.ListTableNames(ctx, database.Filter{}, "VIEW")
	require.NoError(t, err)
	assert.Equal(t, []string{"member_roles"}, views)

	names, err := in.ColumnNames(ctx, "memberships")
	require.NoError(t, err)
	assert.Equal(t, []string{"tenant_id", "user_id", "role"}, names)
}

func TestIntrospector_SQLiteToPostgreSQL(t *testing.T) {
	ctx := context.Background()
	in := schema.New(openSQLite(t))

	tables, err := in.TableMeta(ctx, database.Filter{TableNamePattern: "memberships"})
	require.NoError(t, err)
	require.Len(t, tables, 1)

	g, err := dialect.Resolve(dialect.PostgreSQL)
	require.NoError(t, err)

	got, err := dialect.CreateTableFor(g, tables[0])
	require.NoError(t, err)
	assert.Equal(t, `CREATE TABLE "main"."memberships" (`+
		`"tenant_id" INTEGER NOT NULL, `+
		`"user_id" INTEGER NOT NULL, `+
		`"role" TEXT DEFAULT 'member', `+
		`PRIMARY KEY ("tenant_id", "user_id"))`, got)
}

func TestIntrospector_SQLiteDedicated(t *testing.T) {
	ctx := context.Background()
	d := openSQLite(t)

	cat, err := d.Acquire(ctx)
	require.NoError(t, err)
	defer cat.Release()

	cols, err := schema.New(database.Dedicated(cat)).ColumnMeta(ctx, "", "", "users")
	require.NoError(t, err)
	require.Len(t, cols, 3)
	assert.True(t, cols[0].AutoIncrement)

	// the connection stays usable after the operation
	_, _, err = cat.Defaults(ctx)
	require.NoError(t, err)
}
