package query

import (
	"sort"
	"strings"

	sq "github.com/Masterminds/squirrel"
)

// Compile maps filter clauses onto SQL conditions. Clauses on the same field
// combine conjunctively; unknown operators are ignored; a between clause with
// fewer than two bounds is dropped. Field names resolve through columnFor —
// the compiler never rejects an unknown field, the store does.
//
// Returns nil when no clause survives, so callers can skip the WHERE part.
func Compile(filter map[string][]Clause, columnFor func(string) string) sq.Sqlizer {
	if len(filter) == 0 {
		return nil
	}

	fields := make([]string, 0, len(filter))
	for f := range filter {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var conds sq.And
	for _, field := range fields {
		col := columnFor(field)
		if col == "" {
			continue
		}
		for _, clause := range filter[field] {
			if cond := compileClause(col, clause); cond != nil {
				conds = append(conds, cond)
			}
		}
	}
	if len(conds) == 0 {
		return nil
	}
	return conds
}

func compileClause(col string, c Clause) sq.Sqlizer {
	switch c.Op {
	case OpEq:
		return sq.Eq{col: c.Value}
	case OpGt:
		return sq.Gt{col: c.Value}
	case OpLt:
		return sq.Lt{col: c.Value}
	case OpLike:
		return sq.Expr("LOWER("+col+") LIKE ?", "%"+strings.ToLower(c.Value)+"%")
	case OpIn:
		return sq.Eq{col: splitList(c.Value)}
	case OpBetween:
		bounds := splitList(c.Value)
		if len(bounds) < 2 {
			return nil
		}
		return sq.Expr(col+" BETWEEN ? AND ?", bounds[0], bounds[1])
	default:
		return nil
	}
}

// OrderBy renders the sort sequence as ORDER BY terms, resolving field names
// through columnFor.
func OrderBy(sorts []Sort, columnFor func(string) string) []string {
	out := make([]string, 0, len(sorts))
	for _, s := range sorts {
		col := columnFor(s.Field)
		if col == "" {
			continue
		}
		out = append(out, col+" "+string(s.Direction))
	}
	return out
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
