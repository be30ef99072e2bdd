package tabular

import (
	"fmt"
	"strconv"
)

// Row is one record keyed by column name.
type Row map[string]any

// Frame is an ordered-column, row-oriented table. Cell values are untyped
// (string, int64, float64, bool or nil); coercion is the consumer's job,
// usually through Float and String.
type Frame struct {
	cols []string
	rows []Row
}

// NewFrame creates an empty frame with the given column order.
func NewFrame(cols ...string) *Frame {
	return &Frame{cols: append([]string(nil), cols...)}
}

// Columns returns the column names in order.
func (f *Frame) Columns() []string {
	return append([]string(nil), f.cols...)
}

// Len returns the number of rows.
func (f *Frame) Len() int { return len(f.rows) }

// Append adds rows. Keys outside the declared columns are kept on the row
// but codecs only encode declared columns.
func (f *Frame) Append(rows ...Row) {
	f.rows = append(f.rows, rows...)
}

// Row returns the i-th row. The map is shared with the frame, not copied.
func (f *Frame) Row(i int) Row { return f.rows[i] }

// Rows returns the backing row slice, shared with the frame.
func (f *Frame) Rows() []Row { return f.rows }

// Column returns the values of one column in row order.
func (f *Frame) Column(name string) []any {
	out := make([]any, len(f.rows))
	for i, row := range f.rows {
		out[i] = row[name]
	}
	return out
}

// Float coerces a cell value to float64. Numeric strings count; nil and
// everything else report false.
func Float(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int64:
		return float64(x), true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// String coerces a cell value to its text form. Nil becomes the empty
// string.
func String(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}
