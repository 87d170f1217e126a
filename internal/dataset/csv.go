package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// CSVOptions control the CSV loader.
type CSVOptions struct {
	// Name overrides the dataset name; defaults to the file's base name.
	Name string
	// KeyColumn designates the column holding stable row keys. When
	// empty, rows are keyed by index.
	KeyColumn string
}

var dateLayouts = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}

// LoadCSV reads a headered CSV file into a dataset. Column types are
// inferred from the values: a column where every value parses as a number
// becomes numeric, every value parsing as a date becomes datetime,
// anything else is categorical.
func LoadCSV(path string, opts *CSVOptions) (*Dataset, error) {
	start := time.Now()
	if opts == nil {
		opts = &CSVOptions{}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV %s: %w", path, err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("CSV %s has no header row", path)
	}

	header := records[0]
	body := records[1:]

	if opts.KeyColumn != "" && !containsColumn(header, opts.KeyColumn) {
		return nil, newError(ErrUnknownColumn, "key column %q not in CSV header", opts.KeyColumn)
	}

	name := opts.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	b := NewBuilder(name)
	for col, colName := range header {
		raw := make([]string, len(body))
		for i, rec := range body {
			if col < len(rec) {
				raw[i] = rec[col]
			}
		}

		switch {
		case colName == opts.KeyColumn && colName != "":
			b.Key(colName, raw)
		case allNumeric(raw):
			nums := make([]float64, len(raw))
			for i, v := range raw {
				nums[i], _ = strconv.ParseFloat(strings.TrimSpace(v), 64)
			}
			b.Numeric(colName, nums)
		case allDates(raw):
			times := make([]time.Time, len(raw))
			for i, v := range raw {
				times[i], _ = parseDate(strings.TrimSpace(v))
			}
			b.Datetime(colName, times)
		default:
			b.Categorical(colName, raw)
		}
	}

	d, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build dataset from %s: %w", path, err)
	}

	log.Debug().Str("duration", time.Since(start).String()).
		Msgf("Loaded dataset %q: %d rows, %d columns", d.Name(), d.RowCount(), len(d.Columns()))
	return d, nil
}

func containsColumn(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

func allNumeric(vs []string) bool {
	if len(vs) == 0 {
		return false
	}
	for _, v := range vs {
		if _, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err != nil {
			return false
		}
	}
	return true
}

func allDates(vs []string) bool {
	if len(vs) == 0 {
		return false
	}
	for _, v := range vs {
		if _, err := parseDate(strings.TrimSpace(v)); err != nil {
			return false
		}
	}
	return true
}

func parseDate(v string) (time.Time, error) {
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
