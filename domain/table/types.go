package table

import (
	"fmt"
	"strings"
	"time"
)

// ValueType identifies the storage type of a column or cell
type ValueType string

const (
	TypeInt    ValueType = "integer"
	TypeFloat  ValueType = "float"
	TypeString ValueType = "string"
	TypeBool   ValueType = "bool"
	TypeTime   ValueType = "datetime"
)

// IsNumeric reports whether the type belongs to the numeric family
func (t ValueType) IsNumeric() bool {
	return t == TypeInt || t == TypeFloat
}

// Value is a single typed cell. Missing values carry no payload.
type Value struct {
	Type    ValueType
	Missing bool
	Num     float64 // payload for TypeInt and TypeFloat
	Str     string  // payload for TypeString
	Bool    bool    // payload for TypeBool
	Time    time.Time
}

// Null returns a missing cell
func Null() Value {
	return Value{Missing: true}
}

// Int returns an integer-typed cell
func Int(v int64) Value {
	return Value{Type: TypeInt, Num: float64(v)}
}

// Float returns a float-typed cell
func Float(v float64) Value {
	return Value{Type: TypeFloat, Num: v}
}

// String returns a string-typed cell; empty strings are treated as missing
func String(v string) Value {
	if v == "" {
		return Null()
	}
	return Value{Type: TypeString, Str: v}
}

// Bool returns a boolean-typed cell
func Bool(v bool) Value {
	return Value{Type: TypeBool, Bool: v}
}

// Time returns a datetime-typed cell
func Time(v time.Time) Value {
	return Value{Type: TypeTime, Time: v}
}

// Equal compares two cells for exact equality. Two missing cells are equal.
func (v Value) Equal(other Value) bool {
	if v.Missing || other.Missing {
		return v.Missing && other.Missing
	}
	if v.Type != other.Type {
		return false
	}
	switch v.Type {
	case TypeInt, TypeFloat:
		return v.Num == other.Num
	case TypeString:
		return v.Str == other.Str
	case TypeBool:
		return v.Bool == other.Bool
	case TypeTime:
		return v.Time.Equal(other.Time)
	}
	return false
}

// Display renders the cell for reports and previews
func (v Value) Display() string {
	if v.Missing {
		return ""
	}
	switch v.Type {
	case TypeInt:
		return fmt.Sprintf("%d", int64(v.Num))
	case TypeFloat:
		return fmt.Sprintf("%g", v.Num)
	case TypeString:
		return v.Str
	case TypeBool:
		return fmt.Sprintf("%t", v.Bool)
	case TypeTime:
		return v.Time.Format(time.RFC3339)
	}
	return ""
}

// Column is a named homogeneous sequence of cells
type Column struct {
	Name   string
	Type   ValueType
	Values []Value
}

// Floats returns the non-missing cells of a numeric column as float64s
func (c *Column) Floats() []float64 {
	if !c.Type.IsNumeric() {
		return nil
	}
	out := make([]float64, 0, len(c.Values))
	for _, v := range c.Values {
		if !v.Missing {
			out = append(out, v.Num)
		}
	}
	return out
}

// NullCount returns the number of missing cells
func (c *Column) NullCount() int {
	n := 0
	for _, v := range c.Values {
		if v.Missing {
			n++
		}
	}
	return n
}

// UniqueCount returns the number of distinct non-missing values
func (c *Column) UniqueCount() int {
	seen := make(map[string]struct{})
	for _, v := range c.Values {
		if v.Missing {
			continue
		}
		seen[v.Display()] = struct{}{}
	}
	return len(seen)
}

// Table is an ordered collection of named columns with equal row counts
type Table struct {
	columns []Column
	index   map[string]int // lower-case name -> position
}

// New creates an empty table
func New() *Table {
	return &Table{index: make(map[string]int)}
}

// AddColumn appends a column. Column names must be unique and every column
// must carry the same row count as the table.
func (t *Table) AddColumn(col Column) error {
	key := strings.ToLower(col.Name)
	if _, exists := t.index[key]; exists {
		return fmt.Errorf("duplicate column name %q", col.Name)
	}
	if len(t.columns) > 0 && len(col.Values) != t.NumRows() {
		return fmt.Errorf("column %q has %d rows, table has %d", col.Name, len(col.Values), t.NumRows())
	}
	t.index[key] = len(t.columns)
	t.columns = append(t.columns, col)
	return nil
}

// NumRows returns the row count
func (t *Table) NumRows() int {
	if len(t.columns) == 0 {
		return 0
	}
	return len(t.columns[0].Values)
}

// NumCols returns the column count
func (t *Table) NumCols() int {
	return len(t.columns)
}

// Columns returns the columns in declaration order
func (t *Table) Columns() []Column {
	return t.columns
}

// ColumnNames returns the column names in declaration order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Column looks a column up by exact name
func (t *Table) Column(name string) (*Column, bool) {
	// Exact match wins over case-insensitive fallback
	for i := range t.columns {
		if t.columns[i].Name == name {
			return &t.columns[i], true
		}
	}
	return nil, false
}

// ColumnFold looks a column up ignoring case
func (t *Table) ColumnFold(name string) (*Column, bool) {
	idx, ok := t.index[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return &t.columns[idx], true
}

// NumericColumns returns columns of the numeric family, in order
func (t *Table) NumericColumns() []*Column {
	var out []*Column
	for i := range t.columns {
		if t.columns[i].Type.IsNumeric() {
			out = append(out, &t.columns[i])
		}
	}
	return out
}

// FloatColumns returns float-typed columns only, in order
func (t *Table) FloatColumns() []*Column {
	var out []*Column
	for i := range t.columns {
		if t.columns[i].Type == TypeFloat {
			out = append(out, &t.columns[i])
		}
	}
	return out
}

// Row materializes one row as a slice of cells in column order
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.columns))
	for c := range t.columns {
		row[c] = t.columns[c].Values[i]
	}
	return row
}

// RowKey renders a row as a comparable string, used for duplicate detection
func (t *Table) RowKey(i int) string {
	var b strings.Builder
	for c := range t.columns {
		v := t.columns[c].Values[i]
		if v.Missing {
			b.WriteString("\x00\x01")
		} else {
			b.WriteString(v.Display())
		}
		b.WriteByte('\x00')
	}
	return b.String()
}

// DropRowsWithNulls returns a copy of the table keeping only complete rows
func (t *Table) DropRowsWithNulls() *Table {
	keep := make([]int, 0, t.NumRows())
	for i := 0; i < t.NumRows(); i++ {
		complete := true
		for c := range t.columns {
			if t.columns[c].Values[i].Missing {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, i)
		}
	}
	out := New()
	for _, col := range t.columns {
		values := make([]Value, len(keep))
		for j, i := range keep {
			values[j] = col.Values[i]
		}
		// AddColumn cannot fail here: names were unique in the source table
		_ = out.AddColumn(Column{Name: col.Name, Type: col.Type, Values: values})
	}
	return out
}
