package query

import (
	"net/url"
	"strconv"
	"strings"
)

// Parse builds a Spec from raw query parameters. It is deliberately lenient:
// malformed page/limit values fall back to defaults, unparseable sort tokens
// and empty filter values are skipped, and no input ever produces an error.
// List endpoints must not 400 on a garbled query string.
func Parse(values url.Values) Spec {
	spec := Spec{
		Page:  positiveInt(values.Get("page"), DefaultPage),
		Limit: positiveInt(values.Get("limit"), DefaultLimit),
		Sort:  parseSort(values.Get("sort")),
	}

	filter := map[string][]Clause{}
	for key, vals := range values {
		field, op, ok := parseFilterKey(key)
		if !ok {
			continue
		}
		value := firstNonEmpty(vals)
		if value == "" {
			continue
		}
		if hasOp(filter[field], op) {
			continue
		}
		filter[field] = append(filter[field], Clause{Op: op, Value: value})
	}
	if len(filter) > 0 {
		spec.Filter = filter
	}

	return spec
}

func positiveInt(raw string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func parseSort(raw string) []Sort {
	var out []Sort
	for _, token := range strings.Split(raw, ",") {
		parts := strings.SplitN(strings.TrimSpace(token), ":", 2)
		if len(parts) != 2 || parts[0] == "" {
			continue
		}
		switch Direction(strings.ToUpper(strings.TrimSpace(parts[1]))) {
		case Asc:
			out = append(out, Sort{Field: parts[0], Direction: Asc})
		case Desc:
			out = append(out, Sort{Field: parts[0], Direction: Desc})
		}
	}
	if len(out) == 0 {
		return []Sort{{Field: "createdAt", Direction: Desc}}
	}
	return out
}

// parseFilterKey decodes the filter[<field>] and filter[<field>][<op>]
// conventions. A bare field key is an implicit equality clause. Keys that do
// not match the convention are ignored.
func parseFilterKey(key string) (field string, op Op, ok bool) {
	rest, found := strings.CutPrefix(key, "filter[")
	if !found {
		return "", "", false
	}
	end := strings.IndexByte(rest, ']')
	if end <= 0 {
		return "", "", false
	}
	field = rest[:end]
	rest = rest[end+1:]

	if rest == "" {
		return field, OpEq, true
	}
	if !strings.HasPrefix(rest, "[") || !strings.HasSuffix(rest, "]") {
		return "", "", false
	}
	opName := rest[1 : len(rest)-1]
	if opName == "" || strings.ContainsAny(opName, "[]") {
		return "", "", false
	}
	// Unknown operators are carried through; the compiler ignores them.
	return field, Op(opName), true
}

func firstNonEmpty(vals []string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

func hasOp(clauses []Clause, op Op) bool {
	for _, c := range clauses {
		if c.Op == op {
			return true
		}
	}
	return false
}
