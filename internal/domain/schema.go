package domain

import (
	"fmt"
	"strings"
)

// Field describes one declared column of an entity. The engine never
// introspects structs at runtime; each entity ships this static description
// alongside its type.
type Field struct {
	Name       string // JSON property name, e.g. "categoryId"
	Column     string // storage column, e.g. "category_id"
	Nullable   bool
	HasDefault bool
	Generated  bool
}

// Schema is the static descriptor for one entity: its table and its declared
// fields, in the same order the repository scans them.
type Schema struct {
	Resource string // singular resource name for error messages
	Table    string
	Fields   []Field
}

// baseFields are the shared Entity columns. They are exempt from required
// validation and never writable through a payload.
var baseFields = map[string]string{
	"id":        "id",
	"tenantId":  "tenant_id",
	"createdAt": "created_at",
	"createdBy": "created_by",
	"updatedAt": "updated_at",
	"updatedBy": "updated_by",
	"deletedAt": "deleted_at",
	"deletedBy": "deleted_by",
	"version":   "version",
}

// ColumnFor resolves a filter/sort field name to a storage column. Unknown
// names are passed through as a sanitized snake_case guess; the store rejects
// them with its own unknown-column error.
func (s Schema) ColumnFor(name string) string {
	for _, f := range s.Fields {
		if f.Name == name {
			return f.Column
		}
	}
	if col, ok := baseFields[name]; ok {
		return col
	}
	return toSnake(name)
}

// FieldByName returns the declared field for a JSON property name.
func (s Schema) FieldByName(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ValidateRequired applies the required-field rule to a decoded payload.
// A field is exempt when it is generated, nullable or carries a default; the
// shared audit/version columns are not declared here and are exempt by
// construction. With partial=true (updates) only keys present in the payload
// are checked. All violations are collected, never just the first.
func (s Schema) ValidateRequired(payload map[string]any, partial bool) []FieldViolation {
	var violations []FieldViolation
	for _, f := range s.Fields {
		if f.Generated || f.Nullable || f.HasDefault {
			continue
		}
		v, present := payload[f.Name]
		if partial && !present {
			continue
		}
		if isEmptyValue(v) {
			violations = append(violations, FieldViolation{
				Field:   f.Name,
				Message: fmt.Sprintf("field '%s' is required", f.Name),
				Rule:    "required",
			})
		}
	}
	return violations
}

func isEmptyValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	default:
		return false
	}
}

// toSnake converts camelCase to snake_case, dropping anything that is not a
// word character so resolved names are safe to splice into SQL.
func toSnake(name string) string {
	var b strings.Builder
	for i, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}
