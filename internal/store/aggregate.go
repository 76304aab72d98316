package store

import (
	"context"
	"fmt"
	"regexp"
	"time"
)

var identRe = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func checkIdent(names ...string) error {
	for _, n := range names {
		if !identRe.MatchString(n) {
			return fmt.Errorf("store: invalid identifier %q", n)
		}
	}
	return nil
}

// GroupCount is one row of a GROUP BY count.
type GroupCount struct {
	Key   string
	Count int64
}

// Count returns the number of rows in table.
func (g *Gateway) Count(ctx context.Context, table string) (int64, error) {
	if err := checkIdent(table); err != nil {
		return 0, err
	}
	var n int64
	if err := g.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, g.translate(err)
	}
	return n, nil
}

// Sum returns SUM(column) over table, zero for an empty table.
func (g *Gateway) Sum(ctx context.Context, table, column string) (float64, error) {
	if err := checkIdent(table, column); err != nil {
		return 0, err
	}
	var total float64
	query := fmt.Sprintf("SELECT COALESCE(SUM(%s), 0) FROM %s", column, table)
	if err := g.db.QueryRowContext(ctx, query).Scan(&total); err != nil {
		return 0, g.translate(err)
	}
	return total, nil
}

// CountBy groups table by column and counts each group, ordered by key.
func (g *Gateway) CountBy(ctx context.Context, table, column string) ([]GroupCount, error) {
	if err := checkIdent(table, column); err != nil {
		return nil, err
	}
	query := fmt.Sprintf("SELECT %[1]s, COUNT(*) FROM %[2]s GROUP BY %[1]s ORDER BY %[1]s", column, table)
	rows, err := g.db.QueryContext(ctx, query)
	if err != nil {
		return nil, g.translate(err)
	}
	defer rows.Close()

	var out []GroupCount
	for rows.Next() {
		var gc GroupCount
		if err := rows.Scan(&gc.Key, &gc.Count); err != nil {
			return nil, g.translate(err)
		}
		out = append(out, gc)
	}
	if err := rows.Err(); err != nil {
		return nil, g.translate(err)
	}
	return out, nil
}

// DailySums returns SUM(valueColumn) per day for from..to inclusive, keyed
// by YYYY-MM-DD. Days without rows are absent from the map.
func (g *Gateway) DailySums(ctx context.Context, table, dateColumn, valueColumn string, from, to time.Time) (map[string]float64, error) {
	if err := checkIdent(table, dateColumn, valueColumn); err != nil {
		return nil, err
	}
	query := fmt.Sprintf(
		"SELECT %[1]s, COALESCE(SUM(%[2]s), 0) FROM %[3]s WHERE %[1]s >= %[4]s AND %[1]s <= %[5]s GROUP BY %[1]s",
		dateColumn, valueColumn, table, g.dialect.Placeholder(1), g.dialect.Placeholder(2))

	rows, err := g.db.QueryContext(ctx, query, from.Format(time.DateOnly), to.Format(time.DateOnly))
	if err != nil {
		return nil, g.translate(err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var (
			day time.Time
			sum float64
		)
		if err := rows.Scan(&day, &sum); err != nil {
			return nil, g.translate(err)
		}
		out[day.Format(time.DateOnly)] += sum
	}
	if err := rows.Err(); err != nil {
		return nil, g.translate(err)
	}
	return out, nil
}
