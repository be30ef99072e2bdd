// Package sqlfmt provides the "sql" dataset format: table or query reads
// and table writes over database/sql, with PostgreSQL via the pgx driver
// as the default backend. The spec path is the driver DSN; connections are
// opened per call and closed when the call returns.
package sqlfmt

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/millrace/flume/pkg/config"
	"github.com/millrace/flume/pkg/tabular"
)

// Handler reads and writes frames against a SQL database.
type Handler struct {
	driver string
}

// Option configures the handler.
type Option func(*Handler)

// WithDriver overrides the database/sql driver name.
func WithDriver(name string) Option {
	return func(h *Handler) {
		h.driver = name
	}
}

// New creates the sql handler, defaulting to the pgx driver.
func New(opts ...Option) *Handler {
	h := &Handler{driver: "pgx"}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register binds the handler to the "sql" format.
func Register(reg *tabular.Registry, opts ...Option) {
	reg.Register(config.FormatSQL, New(opts...))
}

// Read loads options.query, or all rows of options.table when no query is
// given. One of the two is required.
func (h *Handler) Read(ctx context.Context, spec config.IOSpec) (*tabular.Frame, error) {
	query, _ := spec.Options["query"].(string)
	table, _ := spec.Options["table"].(string)
	if query == "" && table == "" {
		return nil, &tabular.SpecError{
			Reason: "sql io requires options.query or options.table",
			Path:   spec.Path, Format: spec.Format,
		}
	}
	if query == "" {
		query = "SELECT * FROM " + quoteIdent(table)
	}

	db, err := sql.Open(h.driver, spec.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	frame := tabular.NewFrame(cols...)
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(tabular.Row, len(cols))
		for i, col := range cols {
			row[col] = normalize(values[i])
		}
		frame.Append(row)
	}
	return frame, rows.Err()
}

// Write stores the frame into options.table. options.if_exists picks the
// strategy: "replace" (default) drops and recreates the table, "append"
// creates it only when missing and adds the rows either way. The whole
// write runs in one transaction.
func (h *Handler) Write(ctx context.Context, frame *tabular.Frame, spec config.IOSpec) error {
	table, _ := spec.Options["table"].(string)
	if table == "" {
		return &tabular.SpecError{
			Reason: "sql io requires options.table",
			Path:   spec.Path, Format: spec.Format,
		}
	}
	ifExists := "replace"
	if v, ok := spec.Options["if_exists"].(string); ok && v != "" {
		ifExists = v
	}
	if ifExists != "replace" && ifExists != "append" {
		return &tabular.SpecError{
			Reason: fmt.Sprintf("options.if_exists must be replace or append, got %q", ifExists),
			Path:   spec.Path, Format: spec.Format,
		}
	}

	db, err := sql.Open(h.driver, spec.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if ifExists == "replace" {
		if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
			return err
		}
	}
	if _, err := tx.ExecContext(ctx, createStmt(table, frame)); err != nil {
		return err
	}

	cols := frame.Columns()
	insert := insertStmt(table, cols)
	args := make([]any, len(cols))
	for _, row := range frame.Rows() {
		for i, col := range cols {
			args[i] = row[col]
		}
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// createStmt builds CREATE TABLE IF NOT EXISTS with column types inferred
// from the first non-nil value per column; columns with no values fall back
// to TEXT.
func createStmt(table string, frame *tabular.Frame) string {
	cols := frame.Columns()
	defs := make([]string, len(cols))
	for i, col := range cols {
		defs[i] = quoteIdent(col) + " " + columnType(frame.Column(col))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", quoteIdent(table), strings.Join(defs, ", "))
}

func insertStmt(table string, cols []string) string {
	quoted := make([]string, len(cols))
	marks := make([]string, len(cols))
	for i, col := range cols {
		quoted[i] = quoteIdent(col)
		marks[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table), strings.Join(quoted, ", "), strings.Join(marks, ", "))
}

func columnType(values []any) string {
	for _, v := range values {
		switch v.(type) {
		case nil:
			continue
		case int64, int:
			return "BIGINT"
		case float64:
			return "DOUBLE PRECISION"
		case bool:
			return "BOOLEAN"
		default:
			return "TEXT"
		}
	}
	return "TEXT"
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// normalize folds driver-specific scan values onto frame cell types.
func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	default:
		return v
	}
}
