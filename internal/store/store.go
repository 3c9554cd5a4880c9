package store

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/jmoiron/sqlx"
)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Store is the sqlite-backed target of the load stage.
type Store struct {
	DB *sqlx.DB
}

func New(db *sql.DB) *Store {
	return &Store{DB: sqlx.NewDb(db, "sqlite3")}
}

func checkIdent(names ...string) error {
	for _, n := range names {
		if !identRe.MatchString(n) {
			return fmt.Errorf("invalid identifier %q", n)
		}
	}
	return nil
}

func (s *Store) DeleteAll(ctx context.Context, table string) (int64, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}
	res, err := s.DB.ExecContext(ctx, `DELETE FROM `+table)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", table, err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// BulkInsert writes rows with a single multi-row INSERT. rows must be a
// slice of structs with db tags for every column.
func (s *Store) BulkInsert(ctx context.Context, table string, columns []string, rows any) (int64, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}
	if err := checkIdent(columns...); err != nil {
		return 0, err
	}
	v := reflect.ValueOf(rows)
	if v.Kind() != reflect.Slice {
		return 0, fmt.Errorf("bulk insert %s: rows must be a slice, got %T", table, rows)
	}
	if v.Len() == 0 {
		return 0, nil
	}

	query := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (:%s)",
		table, strings.Join(columns, ", "), strings.Join(columns, ", :"),
	)
	res, err := s.DB.NamedExecContext(ctx, query, rows)
	if err != nil {
		return 0, fmt.Errorf("insert into %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("insert into %s rows: %w", table, err)
	}
	return n, nil
}

func (s *Store) Count(ctx context.Context, table string) (int64, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}
	var n int64
	if err := s.DB.GetContext(ctx, &n, `SELECT COUNT(*) FROM `+table); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func (s *Store) SelectAll(ctx context.Context, dest any, table string, columns []string) error {
	if err := checkIdent(table); err != nil {
		return err
	}
	if err := checkIdent(columns...); err != nil {
		return err
	}
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY id", strings.Join(columns, ", "), table)
	if err := s.DB.SelectContext(ctx, dest, query); err != nil {
		return fmt.Errorf("select from %s: %w", table, err)
	}
	return nil
}

// Counts returns the row count of each table, keyed by table name.
func (s *Store) Counts(ctx context.Context, tables []string) (map[string]int64, error) {
	out := make(map[string]int64, len(tables))
	for _, t := range tables {
		n, err := s.Count(ctx, t)
		if err != nil {
			return nil, err
		}
		out[t] = n
	}
	return out, nil
}
