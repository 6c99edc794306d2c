package meta

import (
	"fmt"
	"slices"

	"github.com/koustreak/ddlgen/internal/errs"
)

// TableMeta describes one table or view.
type TableMeta struct {
	Catalog   string `json:"catalog" yaml:"catalog"`
	Schema    string `json:"schema" yaml:"schema"`
	TableName string `json:"tableName" yaml:"tableName"`

	TableComment string `json:"tableComment" yaml:"tableComment"`
	TableType    string `json:"tableType" yaml:"tableType"` // TABLE, VIEW, ...

	// PKNames has set semantics; the catalog's key order is kept because
	// generators render composite keys in that order.
	PKNames       []string     `json:"pkNames" yaml:"pkNames"`
	IndexInfoList []IndexMeta  `json:"indexInfoList" yaml:"indexInfoList"`
	Columns       []ColumnMeta `json:"columns" yaml:"columns"`
}

// AddPKName records a primary-key column name once.
func (t *TableMeta) AddPKName(name string) {
	if !slices.Contains(t.PKNames, name) {
		t.PKNames = append(t.PKNames, name)
	}
}

// IsPrimaryKey reports whether name is one of the table's key columns.
func (t *TableMeta) IsPrimaryKey(name string) bool {
	return slices.Contains(t.PKNames, name)
}

// PutColumn appends c, or replaces in place the column with the same name.
func (t *TableMeta) PutColumn(c ColumnMeta) {
	for i := range t.Columns {
		if t.Columns[i].ColumnName == c.ColumnName {
			t.Columns[i] = c
			return
		}
	}
	t.Columns = append(t.Columns, c)
}

// Column looks a column up by name.
func (t *TableMeta) Column(name string) (ColumnMeta, bool) {
	for _, c := range t.Columns {
		if c.ColumnName == name {
			return c, true
		}
	}
	return ColumnMeta{}, false
}

// ColumnNames returns the column names in catalog order.
func (t *TableMeta) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.ColumnName
	}
	return names
}

// Validate checks that PKNames and the columns' PrimaryKey flags agree.
func (t *TableMeta) Validate() error {
	for _, name := range t.PKNames {
		c, ok := t.Column(name)
		if !ok {
			return errs.New(errs.ErrKindValidation,
				fmt.Sprintf("table %s: primary key column %q has no column metadata", t.TableName, name))
		}
		if !c.PrimaryKey {
			return errs.New(errs.ErrKindValidation,
				fmt.Sprintf("table %s: column %q is a primary key but not flagged as one", t.TableName, name))
		}
	}
	for _, c := range t.Columns {
		if c.PrimaryKey && !t.IsPrimaryKey(c.ColumnName) {
			return errs.New(errs.ErrKindValidation,
				fmt.Sprintf("table %s: column %q is flagged as primary key but missing from pkNames", t.TableName, c.ColumnName))
		}
	}
	return nil
}
