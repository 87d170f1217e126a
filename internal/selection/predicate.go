package selection

import (
	"time"

	"github.com/vizlink/vizlink/internal/dataset"
)

// Predicate is a filter contribution over one dataset column. Predicates
// are evaluated against the dataset to a key set; a link group intersects
// the key sets of all active predicates to form the visible universe.
type Predicate interface {
	// Column names the column the predicate filters on.
	Column() string
	// Validate checks the predicate against the dataset's schema.
	Validate(d *dataset.Dataset) error
	// Eval returns the keys of the rows that pass the predicate.
	Eval(d *dataset.Dataset) (dataset.KeySet, error)
}

// Membership keeps rows whose categorical value is one of Values. It is
// the predicate a checkbox-set widget emits.
type Membership struct {
	Col    string
	Values []string
}

func (p Membership) Column() string { return p.Col }

func (p Membership) Validate(d *dataset.Dataset) error {
	t, err := d.ColumnType(p.Col)
	if err != nil {
		return newError(ErrInvalidPredicate, "membership over unknown column %q", p.Col)
	}
	if t != dataset.Categorical && t != dataset.KeyColumn {
		return newError(ErrInvalidPredicate, "membership over %s column %q", t, p.Col)
	}
	return nil
}

func (p Membership) Eval(d *dataset.Dataset) (dataset.KeySet, error) {
	if err := p.Validate(d); err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(p.Values))
	for _, v := range p.Values {
		want[v] = struct{}{}
	}

	vals, err := d.Strings(p.Col)
	if err != nil {
		return nil, err
	}
	out := make(dataset.KeySet)
	for i, v := range vals {
		if _, ok := want[v]; ok {
			out[d.Keys()[i]] = struct{}{}
		}
	}
	return out, nil
}

// Range keeps rows whose numeric value lies in the closed interval
// [Min, Max]. It is the predicate a range-slider widget emits.
type Range struct {
	Col      string
	Min, Max float64
}

func (p Range) Column() string { return p.Col }

func (p Range) Validate(d *dataset.Dataset) error {
	t, err := d.ColumnType(p.Col)
	if err != nil {
		return newError(ErrInvalidPredicate, "range over unknown column %q", p.Col)
	}
	if t != dataset.Numeric {
		return newError(ErrInvalidPredicate, "range over %s column %q", t, p.Col)
	}
	if p.Min > p.Max {
		return newError(ErrInvalidPredicate, "inverted range [%g, %g]", p.Min, p.Max)
	}
	return nil
}

func (p Range) Eval(d *dataset.Dataset) (dataset.KeySet, error) {
	if err := p.Validate(d); err != nil {
		return nil, err
	}
	vals, err := d.Floats(p.Col)
	if err != nil {
		return nil, err
	}
	out := make(dataset.KeySet)
	for i, v := range vals {
		if v >= p.Min && v <= p.Max {
			out[d.Keys()[i]] = struct{}{}
		}
	}
	return out, nil
}

// TimeRange keeps rows whose datetime value lies in the closed interval
// [From, To].
type TimeRange struct {
	Col      string
	From, To time.Time
}

func (p TimeRange) Column() string { return p.Col }

func (p TimeRange) Validate(d *dataset.Dataset) error {
	t, err := d.ColumnType(p.Col)
	if err != nil {
		return newError(ErrInvalidPredicate, "time range over unknown column %q", p.Col)
	}
	if t != dataset.Datetime {
		return newError(ErrInvalidPredicate, "time range over %s column %q", t, p.Col)
	}
	if p.From.After(p.To) {
		return newError(ErrInvalidPredicate, "inverted time range [%s, %s]", p.From, p.To)
	}
	return nil
}

func (p TimeRange) Eval(d *dataset.Dataset) (dataset.KeySet, error) {
	if err := p.Validate(d); err != nil {
		return nil, err
	}
	vals, err := d.Times(p.Col)
	if err != nil {
		return nil, err
	}
	out := make(dataset.KeySet)
	for i, v := range vals {
		if !v.Before(p.From) && !v.After(p.To) {
			out[d.Keys()[i]] = struct{}{}
		}
	}
	return out, nil
}

// Equality keeps rows whose categorical value equals Value. It is the
// predicate a single-select widget emits.
type Equality struct {
	Col   string
	Value string
}

func (p Equality) Column() string { return p.Col }

func (p Equality) Validate(d *dataset.Dataset) error {
	return Membership{Col: p.Col, Values: []string{p.Value}}.Validate(d)
}

func (p Equality) Eval(d *dataset.Dataset) (dataset.KeySet, error) {
	return Membership{Col: p.Col, Values: []string{p.Value}}.Eval(d)
}
