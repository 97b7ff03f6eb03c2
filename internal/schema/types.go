package schema

import (
	"encoding/json"
	"iter"
)

// ColumnDefinition describes one table column, normalized across vendors.
type ColumnDefinition struct {
	Name string `json:"name"`
	Type string `json:"type"` // vendor-reported type name, e.g. "character varying", "VARCHAR"

	// Size is the character length or the numeric precision, whichever the
	// type has; nil when neither applies.
	Size  *int `json:"size"`
	Scale *int `json:"scale"`

	NotNull bool `json:"notnull"`

	// Default is the decoded default value. nil means no default, and also
	// covers time-of-insert and generated defaults (CURRENT_TIMESTAMP,
	// now(), nextval(...), getdate(), ...), which are not fixed values.
	Default *string `json:"default"`

	Autoinc bool `json:"autoinc"`
	Primary bool `json:"primary"`
}

// TableSchema is an ordered, read-only mapping from column name to
// ColumnDefinition. Iteration follows the columns' ordinal position.
// The zero value is an empty table.
type TableSchema struct {
	columns []ColumnDefinition
	index   map[string]int
}

func newTableSchema(capacity int) *TableSchema {
	return &TableSchema{
		columns: make([]ColumnDefinition, 0, capacity),
		index:   make(map[string]int, capacity),
	}
}

// add appends col, or merges it into an existing column of the same name.
// Several catalog rows for one column happen when it belongs to more than
// one constraint; the first row keeps its position and primary is OR-ed.
func (t *TableSchema) add(col ColumnDefinition) {
	if i, ok := t.index[col.Name]; ok {
		t.columns[i].Primary = t.columns[i].Primary || col.Primary
		return
	}
	t.index[col.Name] = len(t.columns)
	t.columns = append(t.columns, col)
}

// Len returns the number of columns.
func (t *TableSchema) Len() int {
	if t == nil {
		return 0
	}
	return len(t.columns)
}

// Get returns the column called name.
func (t *TableSchema) Get(name string) (ColumnDefinition, bool) {
	if t == nil {
		return ColumnDefinition{}, false
	}
	i, ok := t.index[name]
	if !ok {
		return ColumnDefinition{}, false
	}
	return t.columns[i], true
}

// Names returns the column names in ordinal order.
func (t *TableSchema) Names() []string {
	names := make([]string, 0, t.Len())
	for name := range t.All() {
		names = append(names, name)
	}
	return names
}

// Columns returns a copy of the columns in ordinal order.
func (t *TableSchema) Columns() []ColumnDefinition {
	if t == nil {
		return []ColumnDefinition{}
	}
	out := make([]ColumnDefinition, len(t.columns))
	copy(out, t.columns)
	return out
}

// All iterates name → column in ordinal order.
func (t *TableSchema) All() iter.Seq2[string, ColumnDefinition] {
	return func(yield func(string, ColumnDefinition) bool) {
		if t == nil {
			return
		}
		for _, col := range t.columns {
			if !yield(col.Name, col) {
				return
			}
		}
	}
}

// MarshalJSON encodes the table as an array in ordinal order; JSON objects
// do not keep key order.
func (t *TableSchema) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Columns())
}

// Snapshot is every table of one schema, inspected in a single call.
// It is built fresh each time and never cached.
type Snapshot struct {
	Vendor string          `json:"vendor"`
	Schema string          `json:"schema"`
	Tables []TableSnapshot `json:"tables"`
}

// TableSnapshot is one table of a Snapshot.
type TableSnapshot struct {
	Name     string       `json:"name"`
	Columns  *TableSchema `json:"columns"`
	Sequence string       `json:"sequence,omitempty"`
}
