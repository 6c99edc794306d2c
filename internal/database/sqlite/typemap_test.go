package sqlite

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/koustreak/ddlgen/internal/sqltype"
)

func TestParseDeclared(t *testing.T) {
	tests := []struct {
		in   string
		want declaredType
	}{
		{"INTEGER", declaredType{Name: "INTEGER"}},
		{"varchar(64)", declaredType{Name: "VARCHAR", Length: 64, HasLength: true}},
		{"DECIMAL(10, 2)", declaredType{Name: "DECIMAL", Length: 10, Scale: 2, HasLength: true}},
		{"unsigned big int", declaredType{Name: "UNSIGNED BIG INT"}},
		{"", declaredType{Name: ""}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseDeclared(tt.in), tt.in)
	}
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		want sqltype.Code
	}{
		{"INTEGER", sqltype.Integer},
		{"boolean", sqltype.Boolean},
		{"DATETIME", sqltype.Timestamp},
		{"TEXT", sqltype.LongVarChar},
		{"UNSIGNED BIG INT", sqltype.Integer},
		{"CHARACTER VARYING", sqltype.VarChar},
		{"DOUBLE PRECISION", sqltype.Double},
		{"MEDIUMBLOB", sqltype.Blob},
		{"MONEY", sqltype.Numeric},
		{"", sqltype.Other},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, codeOf(tt.name), tt.name)
	}
}
