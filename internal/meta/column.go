// Package meta is the normalized, engine-independent schema representation
// produced by the introspector and consumed by the dialect generators.
package meta

import (
	"github.com/koustreak/ddlgen/internal/sqltype"
)

// ColumnMeta describes one physical column. Values are built once per
// catalog row and not modified afterwards.
type ColumnMeta struct {
	Schema     string `json:"schema" yaml:"schema"`
	TableName  string `json:"tableName" yaml:"tableName"`
	ColumnName string `json:"columnName" yaml:"columnName"`

	JDBCType        sqltype.Code `json:"jdbcType" yaml:"jdbcType"`
	JDBCTypeName    string       `json:"jdbcTypeName" yaml:"jdbcTypeName"`
	ColumnLength    int          `json:"columnLength" yaml:"columnLength"`
	Scale           int          `json:"scale" yaml:"scale"`
	OrdinalPosition int          `json:"ordinalPosition" yaml:"ordinalPosition"`

	PrimaryKey    bool `json:"primaryKey" yaml:"primaryKey"`
	AutoIncrement bool `json:"autoIncrement" yaml:"autoIncrement"`
	Nullable      bool `json:"nullable" yaml:"nullable"`

	ColumnDefault *string `json:"columnDefault" yaml:"columnDefault"` // nil when the catalog reports no default
	ColumnComment string  `json:"columnComment" yaml:"columnComment"`

	// EnumValues lists the members of ENUM and SET columns, unquoted.
	EnumValues []string `json:"enumValues,omitempty" yaml:"enumValues,omitempty"`
}

// Category is the semantic category of the column's type code.
func (c ColumnMeta) Category() sqltype.Category {
	return sqltype.Classify(c.JDBCType)
}

// Default returns the default literal and whether one is present.
func (c ColumnMeta) Default() (string, bool) {
	if c.ColumnDefault == nil {
		return "", false
	}
	return *c.ColumnDefault, true
}

// StringPtr is a helper for building ColumnDefault values.
func StringPtr(s string) *string {
	return &s
}
