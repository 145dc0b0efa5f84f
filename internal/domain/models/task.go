package models

import "taskhub/internal/domain"

type Task struct {
	domain.Entity
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
	CategoryID  *string `json:"categoryId"`
}

func TaskSchema() domain.Schema {
	return domain.Schema{
		Resource: "task",
		Table:    "tasks",
		Fields: []domain.Field{
			{Name: "title", Column: "title"},
			{Name: "description", Column: "description", Nullable: true},
			{Name: "completed", Column: "completed", HasDefault: true},
			{Name: "categoryId", Column: "category_id", Nullable: true},
		},
	}
}
