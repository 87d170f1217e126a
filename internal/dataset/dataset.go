package dataset

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Dataset is an immutable named table. It is shared by reference across
// every view in a link group; nothing mutates it after Build.
type Dataset struct {
	name    string
	columns []Column
	index   map[string]int

	keys  []Key
	strs  map[string][]string
	nums  map[string][]float64
	times map[string][]time.Time

	rows int
}

// Name returns the dataset's name.
func (d *Dataset) Name() string { return d.name }

// RowCount returns the number of rows.
func (d *Dataset) RowCount() int { return d.rows }

// Columns returns the ordered column schema.
func (d *Dataset) Columns() []Column {
	out := make([]Column, len(d.columns))
	copy(out, d.columns)
	return out
}

// Keys returns the per-row keys in row order. The returned slice is
// shared; callers must not modify it.
func (d *Dataset) Keys() []Key { return d.keys }

// AllKeys returns the full key universe as a set.
func (d *Dataset) AllKeys() KeySet {
	s := make(KeySet, d.rows)
	for _, k := range d.keys {
		s[k] = struct{}{}
	}
	return s
}

// HasColumn reports whether the named column exists.
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// ColumnType returns the declared type of the named column.
func (d *Dataset) ColumnType(name string) (Type, error) {
	i, ok := d.index[name]
	if !ok {
		return 0, newError(ErrUnknownColumn, "%q in dataset %q", name, d.name)
	}
	return d.columns[i].Type, nil
}

// Strings returns the values of a categorical or key column in row order.
func (d *Dataset) Strings(name string) ([]string, error) {
	t, err := d.ColumnType(name)
	if err != nil {
		return nil, err
	}
	if t != Categorical && t != KeyColumn {
		return nil, newError(ErrTypeMismatch, "column %q is %s, not categorical", name, t)
	}
	return d.strs[name], nil
}

// Floats returns the values of a numeric column in row order.
func (d *Dataset) Floats(name string) ([]float64, error) {
	t, err := d.ColumnType(name)
	if err != nil {
		return nil, err
	}
	if t != Numeric {
		return nil, newError(ErrTypeMismatch, "column %q is %s, not numeric", name, t)
	}
	return d.nums[name], nil
}

// Times returns the values of a datetime column in row order.
func (d *Dataset) Times(name string) ([]time.Time, error) {
	t, err := d.ColumnType(name)
	if err != nil {
		return nil, err
	}
	if t != Datetime {
		return nil, newError(ErrTypeMismatch, "column %q is %s, not datetime", name, t)
	}
	return d.times[name], nil
}

// Builder assembles a Dataset column by column. Column lengths must agree
// and key values must be unique; Build reports violations.
type Builder struct {
	name    string
	columns []Column
	strs    map[string][]string
	nums    map[string][]float64
	times   map[string][]time.Time
	keyCol  string
	errs    []error
}

// NewBuilder starts a dataset with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:  name,
		strs:  make(map[string][]string),
		nums:  make(map[string][]float64),
		times: make(map[string][]time.Time),
	}
}

func (b *Builder) addColumn(name string, t Type) bool {
	if name == "" {
		b.errs = append(b.errs, errors.New("column name cannot be empty"))
		return false
	}
	for _, c := range b.columns {
		if c.Name == name {
			b.errs = append(b.errs, fmt.Errorf("column %q added twice", name))
			return false
		}
	}
	b.columns = append(b.columns, Column{Name: name, Type: t})
	return true
}

// Categorical adds a string-labelled column.
func (b *Builder) Categorical(name string, values []string) *Builder {
	if b.addColumn(name, Categorical) {
		b.strs[name] = values
	}
	return b
}

// Numeric adds a float64 column.
func (b *Builder) Numeric(name string, values []float64) *Builder {
	if b.addColumn(name, Numeric) {
		b.nums[name] = values
	}
	return b
}

// Datetime adds a time column.
func (b *Builder) Datetime(name string, values []time.Time) *Builder {
	if b.addColumn(name, Datetime) {
		b.times[name] = values
	}
	return b
}

// Key adds the designated key column. At most one key column is allowed;
// without one, Build falls back to row-index keys.
func (b *Builder) Key(name string, values []string) *Builder {
	if b.keyCol != "" {
		b.errs = append(b.errs, fmt.Errorf("key column already set to %q", b.keyCol))
		return b
	}
	if b.addColumn(name, KeyColumn) {
		b.strs[name] = values
		b.keyCol = name
	}
	return b
}

// Build validates and seals the dataset.
func (b *Builder) Build() (*Dataset, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	if len(b.columns) == 0 {
		return nil, errors.New("dataset has no columns")
	}

	rows := -1
	lengthOf := func(c Column) int {
		switch c.Type {
		case Numeric:
			return len(b.nums[c.Name])
		case Datetime:
			return len(b.times[c.Name])
		default:
			return len(b.strs[c.Name])
		}
	}
	for _, c := range b.columns {
		n := lengthOf(c)
		if rows == -1 {
			rows = n
			continue
		}
		if n != rows {
			return nil, newError(ErrRaggedColumns, "column %q has %d rows, want %d", c.Name, n, rows)
		}
	}

	keys := make([]Key, rows)
	if b.keyCol != "" {
		seen := make(map[Key]struct{}, rows)
		for i, v := range b.strs[b.keyCol] {
			k := Key(v)
			if _, dup := seen[k]; dup {
				return nil, newError(ErrDuplicateKey, "%q in column %q", v, b.keyCol)
			}
			seen[k] = struct{}{}
			keys[i] = k
		}
	} else {
		for i := range keys {
			keys[i] = Key(strconv.Itoa(i))
		}
	}

	index := make(map[string]int, len(b.columns))
	for i, c := range b.columns {
		index[c.Name] = i
	}

	return &Dataset{
		name:    b.name,
		columns: b.columns,
		index:   index,
		keys:    keys,
		strs:    b.strs,
		nums:    b.nums,
		times:   b.times,
		rows:    rows,
	}, nil
}
