package dbquery

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type tableColumn struct {
	CID          int            `db:"cid"`
	Name         string         `db:"name"`
	Type         string         `db:"type"`
	NotNull      int            `db:"notnull"`
	DefaultValue sql.NullString `db:"dflt_value"`
	PK           int            `db:"pk"`
}

type pgColumn struct {
	Table    string `db:"table_name"`
	Column   string `db:"column_name"`
	DataType string `db:"data_type"`
}

// Table introspected table description
type Table struct {
	Name    string
	Columns []Column
	Sample  [][]any
}

type Column struct {
	Name string
	Type string
}

// Dialect returns the human name of the SQL dialect for the driver
func Dialect(driver string) string {
	switch driver {
	case DriverPostgres, "pgx":
		return "PostgreSQL"
	case DriverSQLite, "sqlite3":
		return "SQLite"
	}
	return "SQL"
}

// Introspect lists tables with their columns and a few sample rows
func Introspect(ctx context.Context, db *sqlx.DB, sampleRows int) ([]Table, error) {
	var (
		tables []Table
		err    error
	)
	switch db.DriverName() {
	case DriverPostgres, "pgx":
		tables, err = introspectPostgres(ctx, db)
	default:
		tables, err = introspectSQLite(ctx, db)
	}
	if err != nil {
		return nil, err
	}
	if sampleRows <= 0 {
		return tables, nil
	}
	for idx := range tables {
		q := fmt.Sprintf("SELECT * FROM %s LIMIT %d", quoteIdent(tables[idx].Name), sampleRows)
		_, rows, _, err := query(ctx, db, q, sampleRows)
		if err != nil {
			return nil, fmt.Errorf("sample %s: %w", tables[idx].Name, err)
		}
		tables[idx].Sample = rows
	}
	return tables, nil
}

func introspectSQLite(ctx context.Context, db *sqlx.DB) ([]Table, error) {
	var names []string
	if err := db.SelectContext(ctx, &names, "SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%' ORDER BY name"); err != nil {
		return nil, err
	}
	tables := make([]Table, 0, len(names))
	for _, name := range names {
		var cols []tableColumn
		if err := db.SelectContext(ctx, &cols, fmt.Sprintf("PRAGMA table_info(%s)", quoteIdent(name))); err != nil {
			return nil, fmt.Errorf("table_info %s: %w", name, err)
		}
		table := Table{Name: name, Columns: make([]Column, 0, len(cols))}
		for _, col := range cols {
			table.Columns = append(table.Columns, Column{Name: col.Name, Type: col.Type})
		}
		tables = append(tables, table)
	}
	return tables, nil
}

func introspectPostgres(ctx context.Context, db *sqlx.DB) ([]Table, error) {
	var cols []pgColumn
	if err := db.SelectContext(ctx, &cols, `SELECT table_name, column_name, data_type
FROM information_schema.columns
WHERE table_schema = current_schema()
ORDER BY table_name, ordinal_position`); err != nil {
		return nil, err
	}
	var tables []Table
	for _, col := range cols {
		if n := len(tables); n == 0 || tables[n-1].Name != col.Table {
			tables = append(tables, Table{Name: col.Table})
		}
		last := &tables[len(tables)-1]
		last.Columns = append(last.Columns, Column{Name: col.Column, Type: col.DataType})
	}
	return tables, nil
}

// DescribeSchema renders tables for the SQL generation prompt
func DescribeSchema(tables []Table) string {
	var sb strings.Builder
	for i, table := range tables {
		if i > 0 {
			sb.WriteByte('\n')
		}
		defs := make([]string, 0, len(table.Columns))
		names := make([]string, 0, len(table.Columns))
		for _, col := range table.Columns {
			defs = append(defs, fmt.Sprintf("%s (%s)", col.Name, col.Type))
			names = append(names, col.Name)
		}
		fmt.Fprintf(&sb, "Table '%s': columns = [%s]", table.Name, strings.Join(defs, ", "))
		if len(table.Sample) > 0 {
			sb.WriteString("\n  Sample rows: ")
			for j, row := range table.Sample {
				if j > 0 {
					sb.WriteString(", ")
				}
				sb.WriteString(formatRow(names, row))
			}
		}
	}
	return sb.String()
}

func formatRow(columns []string, row []any) string {
	parts := make([]string, 0, len(row))
	for i, v := range row {
		name := fmt.Sprintf("col%d", i)
		if i < len(columns) {
			name = columns[i]
		}
		parts = append(parts, fmt.Sprintf("%s: %v", name, v))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// query runs q and returns the columns, at most keep rows and the total row count
func query(ctx context.Context, db *sqlx.DB, q string, keep int) ([]string, [][]any, int, error) {
	rows, err := db.QueryxContext(ctx, q)
	if err != nil {
		return nil, nil, 0, err
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, 0, err
	}
	var (
		kept  [][]any
		total int
	)
	for rows.Next() {
		total++
		if total > keep {
			continue
		}
		values, err := rows.SliceScan()
		if err != nil {
			return nil, nil, 0, err
		}
		for i, v := range values {
			if bs, ok := v.([]byte); ok {
				values[i] = string(bs)
			}
		}
		kept = append(kept, values)
	}
	return columns, kept, total, rows.Err()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
