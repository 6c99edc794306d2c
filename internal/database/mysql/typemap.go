package mysql

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/koustreak/ddlgen/internal/sqltype"
)

// typeCodes maps information_schema.columns.data_type to type codes, the
// way Connector/J reports them.
var typeCodes = map[string]sqltype.Code{
	"bit":        sqltype.Bit,
	"bool":       sqltype.Bit,
	"boolean":    sqltype.Bit,
	"tinyint":    sqltype.TinyInt,
	"smallint":   sqltype.SmallInt,
	"mediumint":  sqltype.Integer,
	"int":        sqltype.Integer,
	"integer":    sqltype.Integer,
	"bigint":     sqltype.BigInt,
	"float":      sqltype.Real,
	"double":     sqltype.Double,
	"real":       sqltype.Double,
	"decimal":    sqltype.Decimal,
	"numeric":    sqltype.Decimal,
	"date":       sqltype.Date,
	"year":       sqltype.Date,
	"time":       sqltype.Time,
	"datetime":   sqltype.Timestamp,
	"timestamp":  sqltype.Timestamp,
	"char":       sqltype.Char,
	"varchar":    sqltype.VarChar,
	"tinytext":   sqltype.VarChar,
	"text":       sqltype.LongVarChar,
	"mediumtext": sqltype.LongVarChar,
	"longtext":   sqltype.LongVarChar,
	"json":       sqltype.LongVarChar,
	"enum":       sqltype.Char,
	"set":        sqltype.Char,
	"binary":     sqltype.Binary,
	"varbinary":  sqltype.VarBinary,
	"tinyblob":   sqltype.VarBinary,
	"blob":       sqltype.LongVarBinary,
	"mediumblob": sqltype.LongVarBinary,
	"longblob":   sqltype.LongVarBinary,
	"geometry":   sqltype.Binary,
}

// codeOf returns the code for a data_type value; unknown names are OTHER.
func codeOf(dataType string) sqltype.Code {
	if c, ok := typeCodes[strings.ToLower(strings.TrimSpace(dataType))]; ok {
		return c
	}
	return sqltype.Other
}

var widthPattern = regexp.MustCompile(`^[a-z]+\((\d+)\)`)

// displayWidth returns n from a column_type such as "tinyint(1) unsigned",
// or 0 when none is declared.
func displayWidth(columnType string) int {
	m := widthPattern.FindStringSubmatch(strings.ToLower(columnType))
	if m == nil {
		return 0
	}
	n, _ := strconv.Atoi(m[1])
	return n
}

// typeName renders data_type in upper case with the UNSIGNED and ZEROFILL
// modifiers found in column_type.
func typeName(dataType, columnType string) string {
	name := strings.ToUpper(dataType)
	ct := strings.ToLower(columnType)
	if strings.Contains(ct, " unsigned") {
		name += " UNSIGNED"
	}
	if strings.Contains(ct, " zerofill") {
		name += " ZEROFILL"
	}
	return name
}

// enumValues parses the members out of "enum('a','b')" or "set('a','b')".
// Quotes inside members are doubled, as MySQL prints them.
func enumValues(columnType string) []string {
	lower := strings.ToLower(columnType)
	var body string
	switch {
	case strings.HasPrefix(lower, "enum(") && strings.HasSuffix(lower, ")"):
		body = columnType[len("enum(") : len(columnType)-1]
	case strings.HasPrefix(lower, "set(") && strings.HasSuffix(lower, ")"):
		body = columnType[len("set(") : len(columnType)-1]
	default:
		return nil
	}

	var (
		values []string
		cur    strings.Builder
		inside bool
	)
	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case ch == '\'' && !inside:
			inside = true
		case ch == '\'' && i+1 < len(body) && body[i+1] == '\'':
			cur.WriteByte('\'')
			i++
		case ch == '\'':
			inside = false
			values = append(values, cur.String())
			cur.Reset()
		case inside:
			cur.WriteByte(ch)
		}
	}
	return values
}
