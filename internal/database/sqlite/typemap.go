package sqlite

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/koustreak/ddlgen/internal/sqltype"
)

// typeCodes maps common declared type names to codes. Anything else falls
// back to SQLite's column affinity rules.
var typeCodes = map[string]sqltype.Code{
	"BOOLEAN":   sqltype.Boolean,
	"BOOL":      sqltype.Boolean,
	"BIT":       sqltype.Bit,
	"TINYINT":   sqltype.TinyInt,
	"SMALLINT":  sqltype.SmallInt,
	"INT":       sqltype.Integer,
	"INTEGER":   sqltype.Integer,
	"MEDIUMINT": sqltype.Integer,
	"BIGINT":    sqltype.BigInt,
	"FLOAT":     sqltype.Float,
	"REAL":      sqltype.Real,
	"DOUBLE":    sqltype.Double,
	"NUMERIC":   sqltype.Numeric,
	"DECIMAL":   sqltype.Decimal,
	"CHAR":      sqltype.Char,
	"NCHAR":     sqltype.NChar,
	"VARCHAR":   sqltype.VarChar,
	"NVARCHAR":  sqltype.NVarChar,
	"TEXT":      sqltype.LongVarChar,
	"CLOB":      sqltype.Clob,
	"BLOB":      sqltype.Blob,
	"BINARY":    sqltype.Binary,
	"VARBINARY": sqltype.VarBinary,
	"DATE":      sqltype.Date,
	"TIME":      sqltype.Time,
	"DATETIME":  sqltype.Timestamp,
	"TIMESTAMP": sqltype.Timestamp,
}

// declaredType is a parsed column declaration such as VARCHAR(64) or
// DECIMAL(10, 2).
type declaredType struct {
	Name      string
	Length    int
	Scale     int
	HasLength bool
}

var declPattern = regexp.MustCompile(`^\s*([A-Za-z][A-Za-z0-9_ ]*?)\s*(?:\(\s*(\d+)\s*(?:,\s*(\d+)\s*)?\))?\s*$`)

// parseDeclared splits a declared type into name, length and scale.
// Declarations it cannot read are returned whole as the name.
func parseDeclared(decl string) declaredType {
	m := declPattern.FindStringSubmatch(decl)
	if m == nil {
		return declaredType{Name: strings.ToUpper(strings.TrimSpace(decl))}
	}
	d := declaredType{Name: strings.ToUpper(m[1])}
	if m[2] != "" {
		d.Length, _ = strconv.Atoi(m[2])
		d.HasLength = true
	}
	if m[3] != "" {
		d.Scale, _ = strconv.Atoi(m[3])
	}
	return d
}

// codeOf resolves a declared type name to a code.
// See https://www.sqlite.org/datatype3.html#determination_of_column_affinity
func codeOf(name string) sqltype.Code {
	name = strings.ToUpper(strings.TrimSpace(name))
	if c, ok := typeCodes[name]; ok {
		return c
	}
	switch {
	case name == "":
		return sqltype.Other
	case strings.Contains(name, "INT"):
		return sqltype.Integer
	case strings.Contains(name, "CHAR"), strings.Contains(name, "CLOB"), strings.Contains(name, "TEXT"):
		return sqltype.VarChar
	case strings.Contains(name, "BLOB"):
		return sqltype.Blob
	case strings.Contains(name, "REAL"), strings.Contains(name, "FLOA"), strings.Contains(name, "DOUB"):
		return sqltype.Double
	}
	return sqltype.Numeric
}
