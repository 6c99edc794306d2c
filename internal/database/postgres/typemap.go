package postgres

import (
	"regexp"
	"strings"

	"github.com/koustreak/ddlgen/internal/sqltype"
)

// typeCodes maps pg_type names (information_schema.columns.udt_name) to
// type codes, the way PgJDBC reports them.
var typeCodes = map[string]sqltype.Code{
	"bool":        sqltype.Bit,
	"bit":         sqltype.Bit,
	"int2":        sqltype.SmallInt,
	"int4":        sqltype.Integer,
	"int8":        sqltype.BigInt,
	"oid":         sqltype.BigInt,
	"float4":      sqltype.Real,
	"float8":      sqltype.Double,
	"money":       sqltype.Double,
	"numeric":     sqltype.Numeric,
	"bpchar":      sqltype.Char,
	"varchar":     sqltype.VarChar,
	"text":        sqltype.VarChar,
	"name":        sqltype.VarChar,
	"bytea":       sqltype.Binary,
	"date":        sqltype.Date,
	"time":        sqltype.Time,
	"timetz":      sqltype.Time,
	"timestamp":   sqltype.Timestamp,
	"timestamptz": sqltype.Timestamp,
	"xml":         sqltype.SQLXML,
}

// codeOf returns the code for a udt_name. Array types (leading underscore)
// are ARRAY; unknown names such as uuid, json or inet are OTHER.
func codeOf(udtName string) sqltype.Code {
	name := strings.ToLower(strings.TrimSpace(udtName))
	if strings.HasPrefix(name, "_") {
		return sqltype.Array
	}
	if c, ok := typeCodes[name]; ok {
		return c
	}
	return sqltype.Other
}

var castSuffix = regexp.MustCompile(`^('(?:[^']|'')*')::[a-z ]+(?:\[\])?$`)

// normalizeDefault strips the type cast PostgreSQL prints after literal
// defaults ('x'::character varying) and drops sequence defaults, which
// belong to the identity rather than the column. ok is false when no
// default remains.
func normalizeDefault(def string) (string, bool) {
	def = strings.TrimSpace(def)
	if def == "" || strings.HasPrefix(strings.ToLower(def), "nextval(") {
		return "", false
	}
	if m := castSuffix.FindStringSubmatch(def); m != nil {
		return m[1], true
	}
	return def, true
}
