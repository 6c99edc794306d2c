package meta

import "strings"

// IndexKey identifies an index within a schema. It is the merge key for
// catalog rows and the equality key of IndexMeta.
type IndexKey struct {
	TableName string
	IndexName string
}

// IndexMeta describes one index. After merging, ColumnName holds the
// participating columns comma-joined in catalog order; ColumnNames holds the
// same list unjoined.
type IndexMeta struct {
	TableName   string   `json:"tableName" yaml:"tableName"`
	IndexName   string   `json:"indexName" yaml:"indexName"`
	ColumnName  string   `json:"columnName" yaml:"columnName"`
	ColumnNames []string `json:"columnNames" yaml:"columnNames"`
	NonUnique   bool     `json:"nonUnique" yaml:"nonUnique"`
}

// Key returns the (table, index) pair identifying m.
func (m IndexMeta) Key() IndexKey {
	return IndexKey{TableName: m.TableName, IndexName: m.IndexName}
}

// Equal compares indexes by table and index name only.
func (m IndexMeta) Equal(o IndexMeta) bool {
	return m.Key() == o.Key()
}

// IndexRow is one catalog row: one column of one index.
type IndexRow struct {
	TableName  string
	IndexName  string
	ColumnName string
	NonUnique  bool
}

// MergeIndexRows folds rows that share a (table, index) key into a single
// IndexMeta, appending column names in arrival order. Output order is the
// order in which each key was first seen.
func MergeIndexRows(rows []IndexRow) []IndexMeta {
	pos := make(map[IndexKey]int, len(rows))
	var out []IndexMeta

	for _, r := range rows {
		key := IndexKey{TableName: r.TableName, IndexName: r.IndexName}
		i, seen := pos[key]
		if !seen {
			pos[key] = len(out)
			out = append(out, IndexMeta{
				TableName: r.TableName,
				IndexName: r.IndexName,
				NonUnique: r.NonUnique,
			})
			i = len(out) - 1
		}
		if r.ColumnName != "" {
			out[i].ColumnNames = append(out[i].ColumnNames, r.ColumnName)
		}
	}

	for i := range out {
		out[i].ColumnName = strings.Join(out[i].ColumnNames, ",")
	}
	return out
}
