package dataset

import (
	"time"
)

// Type declares how a column's values are interpreted.
type Type int

const (
	// Categorical columns hold a bounded set of string labels.
	Categorical Type = iota
	// Numeric columns hold float64 measurements.
	Numeric
	// Datetime columns hold points in time.
	Datetime
	// KeyColumn columns hold the stable per-row identifier.
	KeyColumn
)

func (t Type) String() string {
	switch t {
	case Categorical:
		return "categorical"
	case Numeric:
		return "numeric"
	case Datetime:
		return "datetime"
	case KeyColumn:
		return "key"
	}
	return "unknown"
}

// Column describes one column of a dataset.
type Column struct {
	Name string `json:"name"`
	Type Type   `json:"type"`
}

// Key is the stable identifier of a single row. Keys are unique within a
// dataset and correlate selection across views that may display
// aggregated or transformed subsets.
type Key string

// KeySet is a set of row keys.
type KeySet map[Key]struct{}

// NewKeySet builds a set from the given keys.
func NewKeySet(keys ...Key) KeySet {
	s := make(KeySet, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

// Has reports whether k is in the set.
func (s KeySet) Has(k Key) bool {
	_, ok := s[k]
	return ok
}

// Intersect returns the keys present in both sets.
func (s KeySet) Intersect(other KeySet) KeySet {
	small, large := s, other
	if len(large) < len(small) {
		small, large = large, small
	}
	out := make(KeySet)
	for k := range small {
		if large.Has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// Keys returns the members of the set in unspecified order.
func (s KeySet) Keys() []Key {
	out := make([]Key, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	return out
}

// Table is the capability surface shared by full datasets and filtered
// projections. Anything that can enumerate rows and hand out typed
// columns can back a view.
type Table interface {
	RowCount() int
	Keys() []Key
	Columns() []Column
	Strings(column string) ([]string, error)
	Floats(column string) ([]float64, error)
	Times(column string) ([]time.Time, error)
}
