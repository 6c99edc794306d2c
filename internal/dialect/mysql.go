package dialect

import (
	"github.com/koustreak/ddlgen/internal/meta"
)

const mysqlTableOptions = "ENGINE=InnoDB DEFAULT CHARSET=utf8mb4"

var mysqlRules = typeRules{
	booleanType:      "TINYINT(1)",
	keepModifiers:    true,
	enums:            true,
	backslashEscapes: true,
	aliases: map[string]string{
		"INT2":              "SMALLINT",
		"INT4":              "INT",
		"INT8":              "BIGINT",
		"SERIAL":            "INT",
		"BIGSERIAL":         "BIGINT",
		"FLOAT4":            "FLOAT",
		"FLOAT8":            "DOUBLE",
		"DOUBLE PRECISION":  "DOUBLE",
		"NUMBER":            "DECIMAL",
		"BOOL":              "BOOLEAN",
		"BYTEA":             "LONGBLOB",
		"IMAGE":             "LONGBLOB",
		"CLOB":              "LONGTEXT",
		"NCLOB":             "LONGTEXT",
		"NTEXT":             "LONGTEXT",
		"VARCHAR2":          "VARCHAR",
		"NVARCHAR":          "VARCHAR",
		"NVARCHAR2":         "VARCHAR",
		"NCHAR":             "CHAR",
		"CHARACTER":         "CHAR",
		"BPCHAR":            "CHAR",
		"CHARACTER VARYING": "VARCHAR",
		"TIMESTAMPTZ":       "TIMESTAMP",
		"TIMETZ":            "TIME",
		"JSONB":             "JSON",
		"UUID":              "CHAR(36)",
		"LONGVARCHAR":       "LONGTEXT",
		"LONGNVARCHAR":      "LONGTEXT",
		"LONGVARBINARY":     "LONGBLOB",
	},
}

// mysqlGenerator renders MySQL and MariaDB DDL: backtick identifiers, a
// trailing primary key constraint and inline comments.
type mysqlGenerator struct{}

// NewMySQL returns the MySQL generator.
func NewMySQL() Generator { return mysqlGenerator{} }

func (mysqlGenerator) Type() Type { return MySQL }

func (mysqlGenerator) QuoteIdentifier(name string) string { return quoteWith("`", name) }

func (g mysqlGenerator) QuoteTableReference(schema, table string) string {
	return qualified(g.QuoteIdentifier, schema, table)
}

func (mysqlGenerator) TypeFragment(col meta.ColumnMeta) (string, error) {
	return typeFragment(mysqlRules, col)
}

func (mysqlGenerator) DefaultValueClause(col meta.ColumnMeta) string {
	return defaultValue(mysqlRules, col)
}

func (g mysqlGenerator) ColumnDefinition(col meta.ColumnMeta) (string, error) {
	p, err := baseColumn(g.QuoteIdentifier, mysqlRules, "AUTO_INCREMENT", col)
	if err != nil {
		return "", err
	}
	if c := oneLine(col.ColumnComment); c != "" {
		p.comment = "COMMENT " + mysqlRules.literal(c)
	}
	return p.String(), nil
}

func (mysqlGenerator) PrimaryKeyStyle() PrimaryKeyStyle { return PrimaryKeyConstraint }

// PrimaryKeyClause adds USING BTREE to composite keys.
func (g mysqlGenerator) PrimaryKeyClause(pkNames []string) string {
	var using string
	if len(pkNames) > 1 {
		using = "USING BTREE"
	}
	return constraintClause(g.QuoteIdentifier, pkNames, using)
}

// TableCommentStatements returns the inline COMMENT='..' table option.
// Column comments are part of each column definition.
func (mysqlGenerator) TableCommentStatements(_, _, comment string, _ []meta.ColumnMeta) []string {
	c := oneLine(comment)
	if c == "" {
		return nil
	}
	return []string{"COMMENT=" + mysqlRules.literal(c)}
}

func (g mysqlGenerator) CreateTableStatements(schema, table, comment string, cols []meta.ColumnMeta) ([]string, error) {
	return g.keyedStatements(schema, table, comment, cols, pkNames(cols))
}

func (g mysqlGenerator) keyedStatements(schema, table, comment string, cols []meta.ColumnMeta, pks []string) ([]string, error) {
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

	options := append([]string{mysqlTableOptions}, g.TableCommentStatements(schema, table, comment, cols)...)
	stmt := createTable(g.QuoteTableReference(schema, table), defs, g.PrimaryKeyClause(pks), options...)
	return []string{stmt}, nil
}

func (g mysqlGenerator) GenerateCreateTableSQL(schema, table, comment string, cols []meta.ColumnMeta) (string, error) {
	stmts, err := g.CreateTableStatements(schema, table, comment, cols)
	if err != nil {
		return "", err
	}
	return script(stmts), nil
}
