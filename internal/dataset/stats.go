package dataset

import (
	"github.com/aclements/go-moremath/stats"
)

// Summary describes the distribution of a numeric column. Range widgets
// use Min/Max as their default bounds.
type Summary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
}

// NumericSummary computes summary statistics for a numeric column.
func (d *Dataset) NumericSummary(name string) (Summary, error) {
	xs, err := d.Floats(name)
	if err != nil {
		return Summary{}, err
	}
	if len(xs) == 0 {
		return Summary{Column: name}, nil
	}

	s := stats.Sample{Xs: xs}
	min, max := s.Bounds()
	return Summary{
		Column: name,
		Count:  len(xs),
		Min:    min,
		Max:    max,
		Mean:   s.Mean(),
		Median: s.Quantile(0.5),
	}, nil
}

// Levels returns the distinct values of a categorical column in first-seen
// order. Checkbox widgets use this as their option list.
func (d *Dataset) Levels(name string) ([]string, error) {
	vs, err := d.Strings(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(vs))
	var out []string
	for _, v := range vs {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out, nil
}
