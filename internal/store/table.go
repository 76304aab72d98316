package store

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Table describes how a record type maps onto a table. Columns lists every
// selected column in Scan order and must include "id" and "created_at".
type Table[T any] struct {
	Name    string
	Columns []string
	Scan    func(Scanner) (T, error)
}

func (t Table[T]) selectList() string {
	return strings.Join(t.Columns, ", ")
}

func (t Table[T]) hasColumn(c string) bool {
	return slices.Contains(t.Columns, c)
}

func (t Table[T]) checkColumns(fields map[string]any) error {
	for c := range fields {
		if c == "id" || c == "created_at" || !t.hasColumn(c) {
			return fmt.Errorf("store: column %q not writable on %s", c, t.Name)
		}
	}
	return nil
}

func newID() string { return uuid.NewString() }

// FindOne returns the single row where column equals value.
func FindOne[T any](ctx context.Context, g *Gateway, t Table[T], column string, value any) (T, error) {
	return findOne(ctx, g, g.db, t, column, value)
}

func findOne[T any](ctx context.Context, g *Gateway, q DBTX, t Table[T], column string, value any) (T, error) {
	var zero T
	if !t.hasColumn(column) {
		return zero, fmt.Errorf("store: unknown column %q on %s", column, t.Name)
	}

	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s", t.selectList(), t.Name, column, g.dialect.Placeholder(1))
	rec, err := t.Scan(q.QueryRowContext(ctx, query, value))
	if err != nil {
		return zero, g.translate(err)
	}
	return rec, nil
}

// Insert writes a new row and returns it as stored. The id and created_at
// columns are assigned here.
func Insert[T any](ctx context.Context, g *Gateway, t Table[T], fields map[string]any) (T, error) {
	var zero T
	if err := t.checkColumns(fields); err != nil {
		return zero, err
	}

	id := g.newID()
	row := make(map[string]any, len(fields)+2)
	for k, v := range fields {
		row[k] = v
	}
	row["id"] = id
	row["created_at"] = g.now()

	cols := sortedKeys(row)
	marks := make([]string, len(cols))
	args := make([]any, len(cols))
	for i, c := range cols {
		marks[i] = g.dialect.Placeholder(i + 1)
		args[i] = row[c]
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", t.Name, strings.Join(cols, ", "), strings.Join(marks, ", "))

	var rec T
	err := g.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return g.translate(err)
		}
		var err error
		rec, err = findOne(ctx, g, tx, t, "id", id)
		return err
	})
	if err != nil {
		return zero, err
	}
	return rec, nil
}

// Update applies the given columns to the row with id and returns the row
// afterwards. An empty field set only reads the row back.
func Update[T any](ctx context.Context, g *Gateway, t Table[T], id string, fields map[string]any) (T, error) {
	var zero T
	if len(fields) == 0 {
		return FindOne(ctx, g, t, "id", id)
	}
	if err := t.checkColumns(fields); err != nil {
		return zero, err
	}

	cols := sortedKeys(fields)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+1)
	for i, c := range cols {
		sets[i] = c + " = " + g.dialect.Placeholder(i+1)
		args = append(args, fields[c])
	}
	args = append(args, id)
	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = %s", t.Name, strings.Join(sets, ", "), g.dialect.Placeholder(len(cols)+1))

	// MySQL reports zero affected rows when values are unchanged, so
	// existence is decided by reading the row back.
	var rec T
	err := g.WithTx(ctx, func(ctx context.Context, tx DBTX) error {
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return g.translate(err)
		}
		var err error
		rec, err = findOne(ctx, g, tx, t, "id", id)
		return err
	})
	if err != nil {
		return zero, err
	}
	return rec, nil
}

// Delete removes the row with id.
func Delete[T any](ctx context.Context, g *Gateway, t Table[T], id string) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = %s", t.Name, g.dialect.Placeholder(1))
	res, err := g.db.ExecContext(ctx, query, id)
	if err != nil {
		return g.translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return g.translate(err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of rows, newest first, plus the total row count.
func List[T any](ctx context.Context, g *Gateway, t Table[T], limit, offset int) ([]T, int, error) {
	var total int
	if err := g.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+t.Name).Scan(&total); err != nil {
		return nil, 0, g.translate(err)
	}

	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY created_at DESC, id DESC LIMIT %s OFFSET %s",
		t.selectList(), t.Name, g.dialect.Placeholder(1), g.dialect.Placeholder(2))
	rows, err := g.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, g.translate(err)
	}
	defer rows.Close()

	items := make([]T, 0, limit)
	for rows.Next() {
		rec, err := t.Scan(rows)
		if err != nil {
			return nil, 0, g.translate(err)
		}
		items = append(items, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, g.translate(err)
	}
	return items, total, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
