package models

import "taskhub/internal/domain"

type Category struct {
	domain.Entity
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func CategorySchema() domain.Schema {
	return domain.Schema{
		Resource: "category",
		Table:    "categories",
		Fields: []domain.Field{
			{Name: "name", Column: "name"},
			{Name: "description", Column: "description", Nullable: true},
		},
	}
}
