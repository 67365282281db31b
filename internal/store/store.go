package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"saleslens/domain/table"
	"saleslens/internal"
	"saleslens/internal/errors"
)

// Store wraps the embedded SQLite database holding the raw ingested tables.
// It is opened once per process and closed by the owner; there is no shared
// package-level handle.
type Store struct {
	db     *sqlx.DB
	logger *internal.Logger
}

// Open opens (or creates) the database at path
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, errors.StoreError("failed to open database", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.StoreError("failed to ping database", err)
	}
	return &Store{db: db, logger: internal.DefaultLogger}, nil
}

// Close releases the database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveTable persists a table, replacing any previous version
func (s *Store) SaveTable(ctx context.Context, name string, tbl *table.Table) error {
	cols := tbl.Columns()
	if len(cols) == 0 {
		return errors.InvalidArgument(fmt.Sprintf("table %s has no columns", name))
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.StoreError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %q`, name)); err != nil {
		return errors.StoreError(fmt.Sprintf("failed to drop table %s", name), err)
	}

	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = fmt.Sprintf("%q %s", c.Name, sqliteAffinity(c.Type))
	}
	createStmt := fmt.Sprintf(`CREATE TABLE %q (%s)`, name, strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, createStmt); err != nil {
		return errors.StoreError(fmt.Sprintf("failed to create table %s", name), err)
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(cols)), ",")
	insertStmt := fmt.Sprintf(`INSERT INTO %q VALUES (%s)`, name, placeholders)
	stmt, err := tx.PreparexContext(ctx, insertStmt)
	if err != nil {
		return errors.StoreError("failed to prepare insert", err)
	}
	defer stmt.Close()

	args := make([]interface{}, len(cols))
	for r := 0; r < tbl.NumRows(); r++ {
		for c := range cols {
			args[c] = driverValue(cols[c].Values[r])
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.StoreError(fmt.Sprintf("failed to insert into %s", name), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.StoreError("failed to commit", err)
	}
	s.logger.Debug("saved table %s (%d rows, %d columns)", name, tbl.NumRows(), tbl.NumCols())
	return nil
}

// ListTables returns the names of all user tables
func (s *Store) ListTables(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.SelectContext(ctx, &names,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, errors.StoreError("failed to list tables", err)
	}
	return names, nil
}

// ReadTable reads a stored table back into memory. limit <= 0 reads all rows.
func (s *Store) ReadTable(ctx context.Context, name string, limit int) (*table.Table, error) {
	query := fmt.Sprintf(`SELECT * FROM %q`, name)
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	return s.queryTable(ctx, query)
}

// queryTable runs an arbitrary SELECT and materializes the result as a Table.
// Column types follow what the driver hands back: any REAL cell makes the
// column float, any INTEGER cell makes it integer, otherwise text.
func (s *Store) queryTable(ctx context.Context, query string, args ...interface{}) (*table.Table, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.StoreError("query failed", err)
	}
	defer rows.Close()

	colNames, err := rows.Columns()
	if err != nil {
		return nil, errors.StoreError("failed to read result columns", err)
	}

	cells := make([][]table.Value, len(colNames))
	hasFloat := make([]bool, len(colNames))
	hasInt := make([]bool, len(colNames))

	scan := make([]interface{}, len(colNames))
	for i := range scan {
		scan[i] = new(interface{})
	}

	for rows.Next() {
		if err := rows.Scan(scan...); err != nil {
			return nil, errors.StoreError("failed to scan row", err)
		}
		for i := range colNames {
			raw := *(scan[i].(*interface{}))
			v := cellValue(raw)
			switch v.Type {
			case table.TypeFloat:
				hasFloat[i] = true
			case table.TypeInt:
				hasInt[i] = true
			}
			cells[i] = append(cells[i], v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError("row iteration failed", err)
	}

	tbl := table.New()
	for i, name := range colNames {
		colType := table.TypeString
		switch {
		case hasFloat[i]:
			colType = table.TypeFloat
			promoteNumeric(cells[i], table.TypeFloat)
		case hasInt[i]:
			colType = table.TypeInt
		}
		if err := tbl.AddColumn(table.Column{Name: name, Type: colType, Values: cells[i]}); err != nil {
			return nil, errors.StoreError("failed to build result table", err)
		}
	}
	return tbl, nil
}

// sqliteAffinity maps a value type to a column affinity
func sqliteAffinity(t table.ValueType) string {
	switch t {
	case table.TypeInt:
		return "INTEGER"
	case table.TypeFloat:
		return "REAL"
	default:
		return "TEXT"
	}
}

// driverValue converts a cell to a driver-compatible argument
func driverValue(v table.Value) interface{} {
	if v.Missing {
		return nil
	}
	switch v.Type {
	case table.TypeInt:
		return int64(v.Num)
	case table.TypeFloat:
		return v.Num
	case table.TypeBool:
		return v.Bool
	case table.TypeTime:
		return v.Time
	default:
		return v.Str
	}
}

// cellValue converts a scanned driver value to a cell
func cellValue(raw interface{}) table.Value {
	switch val := raw.(type) {
	case nil:
		return table.Null()
	case int64:
		return table.Int(val)
	case float64:
		return table.Float(val)
	case bool:
		return table.Bool(val)
	case time.Time:
		return table.Time(val)
	case []byte:
		return table.String(string(val))
	case string:
		return table.String(val)
	default:
		return table.String(fmt.Sprintf("%v", val))
	}
}

// promoteNumeric upgrades integer cells inside a float column so the column
// stays homogeneous (SQLite stores 1.0 as INTEGER 1)
func promoteNumeric(values []table.Value, t table.ValueType) {
	for i, v := range values {
		if !v.Missing && v.Type == table.TypeInt {
			values[i] = table.Value{Type: t, Num: v.Num}
		}
	}
}
