package query

import (
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustParseQuery(t *testing.T, raw string) url.Values {
	t.Helper()
	values, err := url.ParseQuery(raw)
	if err != nil {
		t.Fatalf("bad query %q: %v", raw, err)
	}
	return values
}

func TestParsePageLimitDefaults(t *testing.T) {
	cases := []struct {
		name  string
		raw   string
		page  int
		limit int
	}{
		{"missing", "", 1, 10},
		{"valid", "page=3&limit=25", 3, 25},
		{"zero", "page=0&limit=0", 1, 10},
		{"negative", "page=-2&limit=-5", 1, 10},
		{"non numeric", "page=abc&limit=xyz", 1, 10},
		{"float", "page=1.5&limit=2.5", 1, 10},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := Parse(mustParseQuery(t, tc.raw))
			if spec.Page != tc.page || spec.Limit != tc.limit {
				t.Fatalf("got page=%d limit=%d, want page=%d limit=%d", spec.Page, spec.Limit, tc.page, tc.limit)
			}
		})
	}
}

func TestParseSort(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want []Sort
	}{
		{
			"default when absent",
			"",
			[]Sort{{Field: "createdAt", Direction: Desc}},
		},
		{
			"multiple fields",
			"sort=title:ASC,createdAt:DESC",
			[]Sort{{Field: "title", Direction: Asc}, {Field: "createdAt", Direction: Desc}},
		},
		{
			"lowercase direction accepted",
			"sort=title:asc",
			[]Sort{{Field: "title", Direction: Asc}},
		},
		{
			"unknown direction skipped",
			"sort=title:UP,name:ASC",
			[]Sort{{Field: "name", Direction: Asc}},
		},
		{
			"missing direction skipped",
			"sort=title",
			[]Sort{{Field: "createdAt", Direction: Desc}},
		},
		{
			"all tokens invalid falls back to default",
			"sort=title:sideways,:ASC",
			[]Sort{{Field: "createdAt", Direction: Desc}},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := Parse(mustParseQuery(t, tc.raw))
			if diff := cmp.Diff(tc.want, spec.Sort); diff != "" {
				t.Fatalf("sort mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseFilter(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want map[string][]Clause
	}{
		{
			"implicit equality",
			"filter[title]=Test",
			map[string][]Clause{"title": {{Op: OpEq, Value: "Test"}}},
		},
		{
			"explicit operator",
			"filter[title][eq]=Test",
			map[string][]Clause{"title": {{Op: OpEq, Value: "Test"}}},
		},
		{
			"between",
			"filter[age][between]=18,65",
			map[string][]Clause{"age": {{Op: OpBetween, Value: "18,65"}}},
		},
		{
			"empty value dropped",
			"filter[title]=&filter[name][like]=",
			nil,
		},
		{
			"unknown operator carried through",
			"filter[title][regex]=x",
			map[string][]Clause{"title": {{Op: Op("regex"), Value: "x"}}},
		},
		{
			"malformed keys ignored",
			"filter=x&filter[]=y&filter[a][b][c]=z",
			nil,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := Parse(mustParseQuery(t, tc.raw))
			if diff := cmp.Diff(tc.want, spec.Filter); diff != "" {
				t.Fatalf("filter mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseMultipleOperatorsOnOneField(t *testing.T) {
	spec := Parse(mustParseQuery(t, "filter[age][gt]=18&filter[age][lt]=65"))
	clauses := spec.Filter["age"]
	if len(clauses) != 2 {
		t.Fatalf("expected 2 clauses on age, got %d", len(clauses))
	}
	if !hasOp(clauses, OpGt) || !hasOp(clauses, OpLt) {
		t.Fatalf("expected gt and lt clauses, got %+v", clauses)
	}
}

func TestSpecSkip(t *testing.T) {
	spec := Spec{Page: 3, Limit: 10}
	if got := spec.Skip(); got != 20 {
		t.Fatalf("skip = %d, want 20", got)
	}
}

func TestWithFilterReplacesClientClause(t *testing.T) {
	spec := Parse(mustParseQuery(t, "filter[tenantId]=other"))
	scoped := spec.WithFilter("tenantId", Clause{Op: OpEq, Value: "mine"})

	if got := scoped.Filter["tenantId"]; len(got) != 1 || got[0].Value != "mine" {
		t.Fatalf("tenant clause not replaced: %+v", got)
	}
	// original spec untouched
	if got := spec.Filter["tenantId"]; got[0].Value != "other" {
		t.Fatalf("original spec mutated: %+v", got)
	}
}
