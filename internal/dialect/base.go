package dialect

import (
	"strings"

	"github.com/koustreak/ddlgen/internal/meta"
	"github.com/koustreak/ddlgen/internal/sqltype"
)

const currentTimestamp = "CURRENT_TIMESTAMP"

// columnParts are the optional pieces of one column clause, in output order.
type columnParts struct {
	name          string
	typ           string
	notNull       bool
	autoIncrement string
	defaultValue  string
	primaryKey    bool
	comment       string
}

func (p columnParts) String() string {
	frags := []string{p.name, p.typ}
	if p.notNull {
		frags = append(frags, "NOT NULL")
	}
	frags = append(frags, p.autoIncrement, p.defaultValue)
	if p.primaryKey {
		frags = append(frags, "PRIMARY KEY")
	}
	frags = append(frags, p.comment)
	return joinFragments(frags...)
}

// baseColumn fills the parts every dialect renders the same way. Primary
// key columns are always NOT NULL; the auto-increment keyword is only
// emitted for auto-increment primary keys.
func baseColumn(quote func(string) string, r typeRules, autoIncrement string, col meta.ColumnMeta) (columnParts, error) {
	typ, err := typeFragment(r, col)
	if err != nil {
		return columnParts{}, err
	}
	p := columnParts{
		name:         quote(col.ColumnName),
		typ:          typ,
		notNull:      col.PrimaryKey || !col.Nullable,
		defaultValue: defaultValue(r, col),
	}
	if col.PrimaryKey && col.AutoIncrement {
		p.autoIncrement = autoIncrement
	}
	return p, nil
}

// defaultValue renders the DEFAULT clause. Blank and NULL defaults are
// dropped, and so are defaults of auto-increment keys (the sequence or
// identity supplies the value). Temporal defaults always render as
// CURRENT_TIMESTAMP; everything else is quoted. A default that arrives as
// one quoted literal is unquoted first and requoted for the target dialect;
// a quoted expression passes through.
func defaultValue(r typeRules, col meta.ColumnMeta) string {
	d, ok := col.Default()
	d = strings.TrimSpace(d)
	if !ok || d == "" || strings.EqualFold(d, "null") {
		return ""
	}
	if col.PrimaryKey && col.AutoIncrement {
		return ""
	}
	if sqltype.IsTemporal(col.JDBCType) {
		return "DEFAULT " + currentTimestamp
	}
	if isQuoted(d) {
		inner := d[1 : len(d)-1]
		if strings.Contains(strings.ReplaceAll(inner, "''", ""), "'") {
			return "DEFAULT " + d
		}
		d = strings.ReplaceAll(inner, "''", "'")
	}
	return "DEFAULT " + r.literal(d)
}

// joinFragments joins the non-empty fragments with single spaces.
func joinFragments(frags ...string) string {
	kept := frags[:0:0]
	for _, f := range frags {
		if f = strings.TrimSpace(f); f != "" {
			kept = append(kept, f)
		}
	}
	return strings.Join(kept, " ")
}

// quoteLiteral renders s as a single-quoted SQL string literal.
func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// literal quotes s for the dialect. Backslashes are doubled before quotes
// where the server reads them as escapes.
func (r typeRules) literal(s string) string {
	if r.backslashEscapes {
		s = strings.ReplaceAll(s, `\`, `\\`)
	}
	return quoteLiteral(s)
}

func isQuoted(s string) bool {
	return len(s) >= 2 && s[0] == '\'' && s[len(s)-1] == '\''
}

// quoteWith wraps name in q, doubling any q inside it.
func quoteWith(q, name string) string {
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// qualified quotes table, prefixed by the quoted schema when one is given.
func qualified(quote func(string) string, schema, table string) string {
	if strings.TrimSpace(schema) == "" {
		return quote(table)
	}
	return quote(schema) + "." + quote(table)
}

// constraintClause renders ", PRIMARY KEY (a, b)" or "".
func constraintClause(quote func(string) string, names []string, suffix string) string {
	if len(names) == 0 {
		return ""
	}
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = quote(n)
	}
	clause := ", PRIMARY KEY (" + strings.Join(quoted, ", ") + ")"
	if suffix != "" {
		clause += " " + suffix
	}
	return clause
}

// commentOnStatements renders COMMENT ON TABLE / COLUMN statements for
// dialects that keep comments out of CREATE TABLE. Blank comments are skipped.
func commentOnStatements(quote func(string) string, schema, table, comment string, cols []meta.ColumnMeta) []string {
	ref := qualified(quote, schema, table)

	var stmts []string
	if comment = oneLine(comment); comment != "" {
		stmts = append(stmts, "COMMENT ON TABLE "+ref+" IS "+quoteLiteral(comment))
	}
	for _, c := range cols {
		cc := oneLine(c.ColumnComment)
		if cc == "" {
			continue
		}
		stmts = append(stmts, "COMMENT ON COLUMN "+ref+"."+quote(c.ColumnName)+" IS "+quoteLiteral(cc))
	}
	return stmts
}

// createTable renders "CREATE TABLE ref (defs<pk>) options".
func createTable(ref string, defs []string, pkClause string, options ...string) string {
	stmt := "CREATE TABLE " + ref + " (" + strings.Join(defs, ", ") + pkClause + ")"
	if opts := joinFragments(options...); opts != "" {
		stmt += " " + opts
	}
	return stmt
}

// oneLine folds line breaks in free text (comments) so every statement
// stays on a single line.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
