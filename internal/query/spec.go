// Package query turns untyped request query strings into a structured
// pagination/sort/filter specification and compiles that specification into
// SQL predicates.
package query

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

type Op string

const (
	OpEq      Op = "eq"
	OpGt      Op = "gt"
	OpLt      Op = "lt"
	OpLike    Op = "like"
	OpIn      Op = "in"
	OpBetween Op = "between"
)

// Clause is one filter predicate. Values stay opaque strings; the storage
// collaborator coerces them to the column's type.
type Clause struct {
	Op    Op
	Value string
}

type Sort struct {
	Field     string
	Direction Direction
}

// Spec is the structured result of parsing a list request's query string.
type Spec struct {
	Page   int
	Limit  int
	Sort   []Sort
	Filter map[string][]Clause
}

// Skip is the row offset for the requested page.
func (s Spec) Skip() int {
	return (s.Page - 1) * s.Limit
}

// WithFilter returns a copy of the spec where field carries exactly the given
// clause, replacing any client-supplied clauses on that field. The receiver
// is not mutated.
func (s Spec) WithFilter(field string, c Clause) Spec {
	filter := make(map[string][]Clause, len(s.Filter)+1)
	for k, v := range s.Filter {
		filter[k] = v
	}
	filter[field] = []Clause{c}
	s.Filter = filter
	return s
}
