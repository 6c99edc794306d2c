package dialect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/koustreak/ddlgen/internal/errs"
)

func TestResolve(t *testing.T) {
	for _, typ := range Supported() {
		g, err := Resolve(typ)
		require.NoError(t, err)
		assert.Equal(t, typ, g.Type())
	}
}

func TestResolve_Unknown(t *testing.T) {
	g, err := Resolve(Type("oracle"))
	require.Error(t, err)
	assert.Nil(t, g)
	assert.True(t, errs.IsUnsupported(err))
	assert.Contains(t, err.Error(), "unsupported database type: oracle")
}

func TestParseType(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{"mysql", MySQL},
		{" MySQL ", MySQL},
		{"mariadb", MySQL},
		{"dm", DM},
		{"DAMENG", DM},
		{"postgresql", PostgreSQL},
		{"postgres", PostgreSQL},
		{"pg", PostgreSQL},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseType("sqlserver")
	assert.True(t, errs.IsUnsupported(err))
}

func TestSupported(t *testing.T) {
	assert.Equal(t, []Type{DM, MySQL, PostgreSQL}, Supported())
}
