package dialect

import "github.com/koustreak/ddlgen/internal/meta"

var dmRules = typeRules{
	booleanType: "BIT",
	aliases: map[string]string{
		"INT2":              "SMALLINT",
		"INT4":              "INT",
		"INT8":              "BIGINT",
		"SERIAL":            "INT",
		"BIGSERIAL":         "BIGINT",
		"MEDIUMINT":         "INT",
		"FLOAT4":            "REAL",
		"FLOAT8":            "DOUBLE",
		"DOUBLE PRECISION":  "DOUBLE",
		"BOOL":              "BIT",
		"BOOLEAN":           "BIT",
		"DATETIME":          "TIMESTAMP",
		"TIMESTAMPTZ":       "TIMESTAMP",
		"TIMETZ":            "TIME",
		"YEAR":              "SMALLINT",
		"TINYTEXT":          "TEXT",
		"MEDIUMTEXT":        "TEXT",
		"LONGTEXT":          "TEXT",
		"LONGVARCHAR":       "TEXT",
		"LONGNVARCHAR":      "TEXT",
		"TINYBLOB":          "BLOB",
		"MEDIUMBLOB":        "BLOB",
		"LONGBLOB":          "BLOB",
		"BYTEA":             "BLOB",
		"LONGVARBINARY":     "BLOB",
		"JSON":              "CLOB",
		"JSONB":             "CLOB",
		"BPCHAR":            "CHAR",
		"CHARACTER VARYING": "VARCHAR",
		"UUID":              "CHAR(36)",
	},
}

// dmGenerator renders DM (Dameng) DDL: double-quoted identifiers, an
// inline PRIMARY KEY on the key column and separate COMMENT ON statements.
type dmGenerator struct{}

// NewDM returns the DM generator.
func NewDM() Generator { return dmGenerator{} }

func (dmGenerator) Type() Type { return DM }

func (dmGenerator) QuoteIdentifier(name string) string { return quoteWith(`"`, name) }

func (g dmGenerator) QuoteTableReference(schema, table string) string {
	return qualified(g.QuoteIdentifier, schema, table)
}

func (dmGenerator) TypeFragment(col meta.ColumnMeta) (string, error) {
	return typeFragment(dmRules, col)
}

func (dmGenerator) DefaultValueClause(col meta.ColumnMeta) string { return defaultValue(dmRules, col) }

// ColumnDefinition marks a primary-key column PRIMARY KEY inline.
func (g dmGenerator) ColumnDefinition(col meta.ColumnMeta) (string, error) {
	return g.definition(col, col.PrimaryKey)
}

func (g dmGenerator) definition(col meta.ColumnMeta, inlinePK bool) (string, error) {
	p, err := baseColumn(g.QuoteIdentifier, dmRules, "IDENTITY(1,1)", col)
	if err != nil {
		return "", err
	}
	p.primaryKey = inlinePK
	return p.String(), nil
}

func (dmGenerator) PrimaryKeyStyle() PrimaryKeyStyle { return PrimaryKeyInline }

// PrimaryKeyClause is empty for single-column keys, which are declared
// inline. A column cannot carry PRIMARY KEY on its own when the key spans
// several columns, so those get a trailing constraint.
func (g dmGenerator) PrimaryKeyClause(pkNames []string) string {
	if len(pkNames) < 2 {
		return ""
	}
	return constraintClause(g.QuoteIdentifier, pkNames, "")
}

func (g dmGenerator) TableCommentStatements(schema, table, comment string, cols []meta.ColumnMeta) []string {
	return commentOnStatements(g.QuoteIdentifier, schema, table, comment, cols)
}

func (g dmGenerator) CreateTableStatements(schema, table, comment string, cols []meta.ColumnMeta) ([]string, error) {
	return g.keyedStatements(schema, table, comment, cols, pkNames(cols))
}

func (g dmGenerator) keyedStatements(schema, table, comment string, cols []meta.ColumnMeta, pks []string) ([]string, error) {
	if len(cols) == 0 {
		return nil, nil
	}
	defs := make([]string, len(cols))
	for i, c := range cols {
		def, err := g.definition(c, len(pks) == 1 && c.ColumnName == pks[0])
		if err != nil {
			return nil, err
		}
		defs[i] = def
	}

	stmt := createTable(g.QuoteTableReference(schema, table), defs, g.PrimaryKeyClause(pks))
	return append([]string{stmt}, g.TableCommentStatements(schema, table, comment, cols)...), nil
}

func (g dmGenerator) GenerateCreateTableSQL(schema, table, comment string, cols []meta.ColumnMeta) (string, error) {
	stmts, err := g.CreateTableStatements(schema, table, comment, cols)
	if err != nil {
		return "", err
	}
	return script(stmts), nil
}
