package sqlstore

import (
	"context"
	"fmt"
	"strings"
)

// upsert describes a create-or-update keyed on a natural key.
//
//	INSERT INTO <table> (<columns>) VALUES (?, ...)
//	ON CONFLICT (<key>) DO UPDATE SET <set>     -- or DO NOTHING when set is empty
//
// The conflict target is the scope column plus the natural key, and it must
// match a UNIQUE constraint in the schema. The update branch never touches
// key columns or created_at, so scope and identity survive every update.
// The whole decision happens inside one statement, so two concurrent first
// writes resolve to one insert and one update rather than a duplicate.
type upsert struct {
	table   string
	key     []string
	columns []string
	set     []string
}

func (u upsert) statement() string {
	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) ",
		u.table,
		strings.Join(u.columns, ", "),
		placeholders(len(u.columns)),
		strings.Join(u.key, ", "),
	)
	if len(u.set) == 0 {
		b.WriteString("DO NOTHING")
	} else {
		b.WriteString("DO UPDATE SET ")
		b.WriteString(strings.Join(u.set, ", "))
	}
	return b.String()
}

// keyPredicate is the WHERE clause that selects the row by conflict key.
func (u upsert) keyPredicate() string {
	parts := make([]string, len(u.key))
	for i, k := range u.key {
		parts[i] = k + " = ?"
	}
	return strings.Join(parts, " AND ")
}

// run executes the upsert with args (in column order), then reads the row
// back by its key with load. keyArgs are the values of u.key in order.
func run[T any](ctx context.Context, x *queries, u upsert, args, keyArgs []any, load func(ctx context.Context, where string, args ...any) (T, error)) (T, error) {
	var zero T
	if len(args) != len(u.columns) {
		return zero, fmt.Errorf("sqlstore: upsert %s: %d args for %d columns", u.table, len(args), len(u.columns))
	}
	if _, err := x.exec(ctx, u.statement(), args...); err != nil {
		return zero, fmt.Errorf("sqlstore: upserting %s: %w", u.table, err)
	}
	return load(ctx, u.keyPredicate(), keyArgs...)
}

// overwrite builds "col = excluded.col" for each column.
func overwrite(cols ...string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c + " = excluded." + c
	}
	return out
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
