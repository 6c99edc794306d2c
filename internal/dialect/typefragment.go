package dialect

import (
	"fmt"
	"strings"

	"github.com/koustreak/ddlgen/internal/errs"
	"github.com/koustreak/ddlgen/internal/meta"
	"github.com/koustreak/ddlgen/internal/sqltype"
)

// typeRules carries what differs between dialects when rendering a type.
type typeRules struct {
	// booleanType renders a 1-wide TINYINT, BIT or BOOLEAN column.
	booleanType string
	// aliases maps a source type name to this dialect's spelling.
	aliases map[string]string
	// keepModifiers keeps UNSIGNED / ZEROFILL after the type.
	keepModifiers bool
	// bareFloats drops precision from FLOAT, REAL and DOUBLE.
	bareFloats bool
	// enums allows ENUM('a','b') and SET('a','b').
	enums bool
	// backslashEscapes marks string literals where \ starts an escape.
	backslashEscapes bool
}

// unsized type names never take a length, whatever the catalog reported.
var unsized = map[string]bool{
	"TEXT": true, "TINYTEXT": true, "MEDIUMTEXT": true, "LONGTEXT": true, "NTEXT": true,
	"CLOB": true, "NCLOB": true, "BLOB": true, "TINYBLOB": true, "MEDIUMBLOB": true, "LONGBLOB": true,
	"BYTEA": true, "IMAGE": true, "JSON": true, "JSONB": true, "XML": true, "UUID": true,
	"DATE": true, "YEAR": true, "BOOLEAN": true, "BOOL": true, "GEOMETRY": true,
	"INET": true, "CIDR": true, "MACADDR": true, "MONEY": true,
}

var modifiers = []string{" UNSIGNED", " ZEROFILL"}

// splitModifiers separates trailing UNSIGNED / ZEROFILL from a type name.
func splitModifiers(name string) (string, string) {
	var mods []string
	for changed := true; changed; {
		changed = false
		for _, m := range modifiers {
			if strings.HasSuffix(name, m) {
				name = strings.TrimSuffix(name, m)
				mods = append([]string{strings.TrimSpace(m)}, mods...)
				changed = true
			}
		}
	}
	return strings.TrimSpace(name), strings.Join(mods, " ")
}

// typeFragment renders col's type under r. It branches on the exact type
// code, not on the semantic category.
func typeFragment(r typeRules, col meta.ColumnMeta) (string, error) {
	name, mods := splitModifiers(strings.ToUpper(strings.TrimSpace(col.JDBCTypeName)))
	if name == "" {
		name = col.JDBCType.String()
	}
	if alias, ok := r.aliases[name]; ok {
		name = alias
	}

	frag, err := baseFragment(r, name, col)
	if err != nil {
		return "", err
	}
	if mods != "" && r.keepModifiers {
		frag += " " + mods
	}
	return frag, nil
}

func baseFragment(r typeRules, name string, col meta.ColumnMeta) (string, error) {
	code, n, s := col.JDBCType, col.ColumnLength, col.Scale

	switch {
	case (code == sqltype.TinyInt || code == sqltype.Bit || code == sqltype.Boolean) && n == 1:
		return r.booleanType, nil

	case unsized[name], strings.ContainsRune(name, '('):
		return name, nil

	case sqltype.IsDecimal(code):
		if n < s {
			return "", errs.Newf(errs.ErrKindValidation,
				"column %q: length %d is less than scale %d for %s", col.ColumnName, n, s, name)
		}
		floating := code == sqltype.Float || code == sqltype.Real || code == sqltype.Double
		if n > 0 && s > 0 && !(floating && r.bareFloats) {
			return fmt.Sprintf("%s(%d,%d)", name, n, s), nil
		}
		return name, nil

	case sqltype.IsInteger(code):
		return name, nil

	case sqltype.IsTemporal(code):
		if s > 0 {
			return fmt.Sprintf("%s(%d)", name, s), nil
		}
		return name, nil

	case sqltype.IsCharacter(code):
		if name == "ENUM" || name == "SET" {
			if r.enums && len(col.EnumValues) > 0 {
				quoted := make([]string, len(col.EnumValues))
				for i, v := range col.EnumValues {
					quoted[i] = r.literal(v)
				}
				return fmt.Sprintf("%s(%s)", name, strings.Join(quoted, ",")), nil
			}
			name = "VARCHAR"
		}
		if code == sqltype.LongVarChar || code == sqltype.LongNVarChar {
			return name, nil
		}
		return sized(name, n), nil

	case sqltype.IsLargeObject(code):
		return name, nil
	}

	return sized(name, n), nil
}

// sized renders NAME(n), or NAME alone when no length is known.
func sized(name string, n int) string {
	if n <= 0 {
		return name
	}
	return fmt.Sprintf("%s(%d)", name, n)
}
