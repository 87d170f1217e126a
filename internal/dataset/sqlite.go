package dataset

import (
	"database/sql"
	"fmt"
	"regexp"
	"strconv"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// SQLiteOptions control the SQLite loader.
type SQLiteOptions struct {
	// Name overrides the dataset name; defaults to the table name.
	Name string
	// KeyColumn designates the column holding stable row keys.
	KeyColumn string
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// LoadSQLite reads every row of a table from a SQLite database file into a
// dataset. Integer and real columns become numeric, text columns become
// categorical, and columns scanned as time.Time become datetime.
func LoadSQLite(path, table string, opts *SQLiteOptions) (*Dataset, error) {
	start := time.Now()
	if opts == nil {
		opts = &SQLiteOptions{}
	}
	if !identPattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name: %q", table)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.Query("SELECT * FROM " + table)
	if err != nil {
		return nil, fmt.Errorf("failed to read table %s: %w", table, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to describe table %s: %w", table, err)
	}

	if opts.KeyColumn != "" && !containsColumn(cols, opts.KeyColumn) {
		return nil, newError(ErrUnknownColumn, "key column %q not in table %s", opts.KeyColumn, table)
	}

	cells := make([][]interface{}, len(cols))
	for rows.Next() {
		scan := make([]interface{}, len(cols))
		for i := range scan {
			scan[i] = new(interface{})
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, fmt.Errorf("failed to scan row from %s: %w", table, err)
		}
		for i, v := range scan {
			cells[i] = append(cells[i], *(v.(*interface{})))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed while reading table %s: %w", table, err)
	}

	name := opts.Name
	if name == "" {
		name = table
	}

	b := NewBuilder(name)
	for i, colName := range cols {
		vals := cells[i]
		switch {
		case colName == opts.KeyColumn && opts.KeyColumn != "":
			b.Key(colName, stringify(vals))
		case allFloatCells(vals):
			nums := make([]float64, len(vals))
			for j, v := range vals {
				nums[j] = toFloat(v)
			}
			b.Numeric(colName, nums)
		case allTimeCells(vals):
			times := make([]time.Time, len(vals))
			for j, v := range vals {
				times[j], _ = v.(time.Time)
			}
			b.Datetime(colName, times)
		default:
			b.Categorical(colName, stringify(vals))
		}
	}

	d, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build dataset from table %s: %w", table, err)
	}

	log.Debug().Str("duration", time.Since(start).String()).
		Msgf("Loaded dataset %q from %s: %d rows", d.Name(), path, d.RowCount())
	return d, nil
}

func allFloatCells(vals []interface{}) bool {
	if len(vals) == 0 {
		return false
	}
	for _, v := range vals {
		switch v.(type) {
		case int64, float64:
		default:
			return false
		}
	}
	return true
}

func allTimeCells(vals []interface{}) bool {
	if len(vals) == 0 {
		return false
	}
	for _, v := range vals {
		if _, ok := v.(time.Time); !ok {
			return false
		}
	}
	return true
}

func toFloat(v interface{}) float64 {
	switch x := v.(type) {
	case int64:
		return float64(x)
	case float64:
		return x
	}
	return 0
}

func stringify(vals []interface{}) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		switch x := v.(type) {
		case nil:
			out[i] = ""
		case []byte:
			out[i] = string(x)
		case string:
			out[i] = x
		case int64:
			out[i] = strconv.FormatInt(x, 10)
		case float64:
			out[i] = strconv.FormatFloat(x, 'g', -1, 64)
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}
