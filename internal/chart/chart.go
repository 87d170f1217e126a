// Package chart defines the declarative description of how dataset
// columns map to visual channels for one view. A spec is immutable once a
// view is constructed; changing the mapping means building a new view.
package chart

import (
	"errors"
	"fmt"

	"github.com/vizlink/vizlink/internal/dataset"
)

// ErrInvalidChannelMapping is returned when a spec references a column
// the dataset does not have, or binds a column of the wrong type to a
// channel. It surfaces at view construction, never at render time.
var ErrInvalidChannelMapping = errors.New("invalid channel mapping")

// Channel names a visual encoding channel.
type Channel string

const (
	X     Channel = "x"
	Y     Channel = "y"
	Color Channel = "color"
	Size  Channel = "size"
	Group Channel = "group"
)

// Mark selects the geometric mark a view draws.
type Mark int

const (
	MarkPoint Mark = iota
	MarkLine
	MarkArea
)

func (m Mark) String() string {
	switch m {
	case MarkPoint:
		return "point"
	case MarkLine:
		return "line"
	case MarkArea:
		return "area"
	}
	return "unknown"
}

// Style carries presentation options that do not depend on the data.
type Style struct {
	// DimOpacity is the opacity applied to visible rows outside the
	// highlight set while a highlight is active.
	DimOpacity float64
	// Width and Height are the artifact dimensions in pixels.
	Width, Height int
}

// Spec maps channels to column names for one view.
type Spec struct {
	Title    string
	Mark     Mark
	Channels map[Channel]string
	Style    Style
}

const (
	defaultWidth      = 640
	defaultHeight     = 480
	defaultDimOpacity = 0.25
)

// WithDefaults fills unset style values.
func (s Spec) WithDefaults() Spec {
	if s.Style.Width == 0 {
		s.Style.Width = defaultWidth
	}
	if s.Style.Height == 0 {
		s.Style.Height = defaultHeight
	}
	if s.Style.DimOpacity == 0 {
		s.Style.DimOpacity = defaultDimOpacity
	}
	return s
}

// Column returns the column bound to a channel, or "" when unbound.
func (s Spec) Column(c Channel) string {
	return s.Channels[c]
}

// Validate checks every bound channel against the dataset schema. The x
// and y channels are required and must be numeric or datetime; color and
// group accept any column; size must be numeric.
func (s Spec) Validate(d *dataset.Dataset) error {
	var errGrp []error

	for _, ch := range []Channel{X, Y} {
		col := s.Column(ch)
		if col == "" {
			errGrp = append(errGrp, fmt.Errorf("%w: channel %q is required", ErrInvalidChannelMapping, ch))
			continue
		}
		t, err := d.ColumnType(col)
		if err != nil {
			errGrp = append(errGrp, fmt.Errorf("%w: channel %q references unknown column %q", ErrInvalidChannelMapping, ch, col))
			continue
		}
		if t != dataset.Numeric && t != dataset.Datetime {
			errGrp = append(errGrp, fmt.Errorf("%w: channel %q needs a numeric or datetime column, %q is %s", ErrInvalidChannelMapping, ch, col, t))
		}
	}

	for _, ch := range []Channel{Color, Group} {
		col := s.Column(ch)
		if col == "" {
			continue
		}
		if !d.HasColumn(col) {
			errGrp = append(errGrp, fmt.Errorf("%w: channel %q references unknown column %q", ErrInvalidChannelMapping, ch, col))
		}
	}

	if col := s.Column(Size); col != "" {
		t, err := d.ColumnType(col)
		if err != nil {
			errGrp = append(errGrp, fmt.Errorf("%w: channel %q references unknown column %q", ErrInvalidChannelMapping, Size, col))
		} else if t != dataset.Numeric {
			errGrp = append(errGrp, fmt.Errorf("%w: channel %q needs a numeric column, %q is %s", ErrInvalidChannelMapping, Size, col, t))
		}
	}

	return errors.Join(errGrp...)
}
