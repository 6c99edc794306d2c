package dialect

import "github.com/koustreak/ddlgen/internal/meta"

var postgresRules = typeRules{
	booleanType: "BOOLEAN",
	bareFloats:  true,
	aliases: map[string]string{
		"TINYINT":       "SMALLINT",
		"MEDIUMINT":     "INTEGER",
		"INT":           "INTEGER",
		"INT2":          "SMALLINT",
		"INT4":          "INTEGER",
		"INT8":          "BIGINT",
		"SERIAL":        "INTEGER",
		"BIGSERIAL":     "BIGINT",
		"FLOAT":         "REAL",
		"FLOAT4":        "REAL",
		"FLOAT8":        "DOUBLE PRECISION",
		"DOUBLE":        "DOUBLE PRECISION",
		"NUMBER":        "NUMERIC",
		"BOOL":          "BOOLEAN",
		"BIT":           "BOOLEAN",
		"DATETIME":      "TIMESTAMP",
		"YEAR":          "SMALLINT",
		"TINYTEXT":      "TEXT",
		"MEDIUMTEXT":    "TEXT",
		"LONGTEXT":      "TEXT",
		"CLOB":          "TEXT",
		"NCLOB":         "TEXT",
		"NTEXT":         "TEXT",
		"LONGVARCHAR":   "TEXT",
		"LONGNVARCHAR":  "TEXT",
		"NVARCHAR":      "VARCHAR",
		"NVARCHAR2":     "VARCHAR",
		"VARCHAR2":      "VARCHAR",
		"NCHAR":         "CHAR",
		"BPCHAR":        "CHAR",
		"BLOB":          "BYTEA",
		"TINYBLOB":      "BYTEA",
		"MEDIUMBLOB":    "BYTEA",
		"LONGBLOB":      "BYTEA",
		"IMAGE":         "BYTEA",
		"BINARY":        "BYTEA",
		"VARBINARY":     "BYTEA",
		"LONGVARBINARY": "BYTEA",
		"ENUM":          "VARCHAR",
		"SET":           "VARCHAR",
	},
}

// postgresGenerator renders PostgreSQL DDL: double-quoted identifiers,
// identity columns and separate COMMENT ON statements.
type postgresGenerator struct{}

// NewPostgreSQL returns the PostgreSQL generator.
func NewPostgreSQL() Generator { return postgresGenerator{} }

func (postgresGenerator) Type() Type { return PostgreSQL }

func (postgresGenerator) QuoteIdentifier(name string) string { return quoteWith(`"`, name) }

func (g postgresGenerator) QuoteTableReference(schema, table string) string {
	return qualified(g.QuoteIdentifier, schema, table)
}

func (postgresGenerator) TypeFragment(col meta.ColumnMeta) (string, error) {
	return typeFragment(postgresRules, col)
}

func (postgresGenerator) DefaultValueClause(col meta.ColumnMeta) string {
	return defaultValue(postgresRules, col)
}

func (g postgresGenerator) ColumnDefinition(col meta.ColumnMeta) (string, error) {
	p, err := baseColumn(g.QuoteIdentifier, postgresRules, "GENERATED BY DEFAULT AS IDENTITY", col)
	if err != nil {
		return "", err
	}
	return p.String(), nil
}

func (postgresGenerator) PrimaryKeyStyle() PrimaryKeyStyle { return PrimaryKeyConstraint }

func (g postgresGenerator) PrimaryKeyClause(pkNames []string) string {
	return constraintClause(g.QuoteIdentifier, pkNames, "")
}

func (g postgresGenerator) TableCommentStatements(schema, table, comment string, cols []meta.ColumnMeta) []string {
	return commentOnStatements(g.QuoteIdentifier, schema, table, comment, cols)
}

func (g postgresGenerator) CreateTableStatements(schema, table, comment string, cols []meta.ColumnMeta) ([]string, error) {
	return g.keyedStatements(schema, table, comment, cols, pkNames(cols))
}

func (g postgresGenerator) keyedStatements(schema, table, comment string, cols []meta.ColumnMeta, pks []string) ([]string, error) {
	if len(cols) == 0 {
		return nil, nil
	}
	defs := make([]string, len(cols))
	for i, c := range cols {
		def, err := g.ColumnDefinition(c)
		if err != nil {
			return nil, err
		}
		defs[i] = def
	}

	stmt := createTable(g.QuoteTableReference(schema, table), defs, g.PrimaryKeyClause(pks))
	return append([]string{stmt}, g.TableCommentStatements(schema, table, comment, cols)...), nil
}

func (g postgresGenerator) GenerateCreateTableSQL(schema, table, comment string, cols []meta.ColumnMeta) (string, error) {
	stmts, err := g.CreateTableStatements(schema, table, comment, cols)
	if err != nil {
		return "", err
	}
	return script(stmts), nil
}
