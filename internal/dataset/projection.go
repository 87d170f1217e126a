package dataset

import "time"

// Projection is a filtered, read-only view of a dataset. It shares the
// parent's columns and exposes only the rows whose keys survive the
// filter, in the parent's row order.
type Projection struct {
	src  *Dataset
	rows []int
	keys []Key
}

// Select projects the dataset down to the rows in keep. A nil keep set
// means no filter: every row is kept.
func (d *Dataset) Select(keep KeySet) *Projection {
	p := &Projection{src: d}
	for i, k := range d.keys {
		if keep == nil || keep.Has(k) {
			p.rows = append(p.rows, i)
			p.keys = append(p.keys, k)
		}
	}
	return p
}

// RowCount returns the number of surviving rows.
func (p *Projection) RowCount() int { return len(p.rows) }

// Keys returns the surviving row keys in order.
func (p *Projection) Keys() []Key { return p.keys }

// Columns returns the parent's column schema.
func (p *Projection) Columns() []Column { return p.src.Columns() }

// Strings returns the filtered values of a categorical or key column.
func (p *Projection) Strings(column string) ([]string, error) {
	full, err := p.src.Strings(column)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(p.rows))
	for i, r := range p.rows {
		out[i] = full[r]
	}
	return out, nil
}

// Floats returns the filtered values of a numeric column.
func (p *Projection) Floats(column string) ([]float64, error) {
	full, err := p.src.Floats(column)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(p.rows))
	for i, r := range p.rows {
		out[i] = full[r]
	}
	return out, nil
}

// Times returns the filtered values of a datetime column.
func (p *Projection) Times(column string) ([]time.Time, error) {
	full, err := p.src.Times(column)
	if err != nil {
		return nil, err
	}
	out := make([]time.Time, len(p.rows))
	for i, r := range p.rows {
		out[i] = full[r]
	}
	return out, nil
}
