package tabular

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Codec encodes and decodes one stream format. Implement it and call
// Registry.RegisterCodec to add a file format.
type Codec interface {
	Decode(r io.Reader, options map[string]any) (*Frame, error)
	Encode(w io.Writer, frame *Frame, options map[string]any) error
}

// CSVCodec reads and writes files with a header row. Decoded cells are
// inferred: integers, floats, and bare true/false; empty cells become nil;
// everything else stays a string. Options: delimiter (single character).
type CSVCodec struct{}

func (CSVCodec) Decode(r io.Reader, options map[string]any) (*Frame, error) {
	reader := csv.NewReader(r)
	if d := delimiter(options); d != 0 {
		reader.Comma = d
	}

	header, err := reader.Read()
	if err == io.EOF {
		return NewFrame(), nil
	}
	if err != nil {
		return nil, err
	}

	frame := NewFrame(header...)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		row := make(Row, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = inferCell(record[i])
			}
		}
		frame.Append(row)
	}
	return frame, nil
}

func (CSVCodec) Encode(w io.Writer, frame *Frame, options map[string]any) error {
	writer := csv.NewWriter(w)
	if d := delimiter(options); d != 0 {
		writer.Comma = d
	}

	cols := frame.Columns()
	if err := writer.Write(cols); err != nil {
		return err
	}
	record := make([]string, len(cols))
	for _, row := range frame.Rows() {
		for i, col := range cols {
			record[i] = String(row[col])
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func delimiter(options map[string]any) rune {
	d, _ := options["delimiter"].(string)
	if d == "" {
		return 0
	}
	return []rune(d)[0]
}

func inferCell(s string) any {
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}

// JSONCodec reads and writes an array of objects. Column order is the
// sorted union of keys across rows; numbers decode as float64.
type JSONCodec struct{}

func (JSONCodec) Decode(r io.Reader, _ map[string]any) (*Frame, error) {
	var rows []Row
	if err := json.NewDecoder(r).Decode(&rows); err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	var cols []string
	for _, row := range rows {
		for col := range row {
			if _, ok := seen[col]; !ok {
				seen[col] = struct{}{}
				cols = append(cols, col)
			}
		}
	}
	sort.Strings(cols)
	frame := NewFrame(cols...)
	frame.Append(rows...)
	return frame, nil
}

func (JSONCodec) Encode(w io.Writer, frame *Frame, _ map[string]any) error {
	cols := frame.Columns()
	out := make([]Row, 0, frame.Len())
	for _, row := range frame.Rows() {
		projected := make(Row, len(cols))
		for _, col := range cols {
			if v, ok := row[col]; ok {
				projected[col] = v
			}
		}
		out = append(out, projected)
	}
	return json.NewEncoder(w).Encode(out)
}
