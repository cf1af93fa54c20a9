package sqlstore

import (
	"database/sql"
	"strconv"
	"strings"
)

// where accumulates AND-ed predicates with sequential $n placeholders.
// Placeholders are numbered in order of first use so the same SQL binds
// correctly on both PostgreSQL and SQLite.
type where struct {
	clauses []string
	args    []any
}

func (w *where) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *where) add(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *where) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

func (w *where) page(limit, offset int) string {
	if limit <= 0 {
		return ""
	}
	clause := " LIMIT " + w.arg(limit)
	if offset > 0 {
		clause += " OFFSET " + w.arg(offset)
	}
	return clause
}

func containsPattern(s string) string {
	return "%" + strings.TrimSpace(s) + "%"
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func intPtr(v sql.NullInt64) *int64 {
	if !v.Valid {
		return nil
	}
	n := v.Int64
	return &n
}

func stringPtr(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

type scanner interface {
	Scan(dest ...any) error
}
