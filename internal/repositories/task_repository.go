package repositories

import (
	"database/sql"

	"taskhub/internal/domain/models"
)

func NewTaskRepository(db *sql.DB) SQLResource[*models.Task] {
	return SQLResource[*models.Task]{
		DB:     db,
		Schema: models.TaskSchema(),
		New:    func() *models.Task { return &models.Task{} },
		Fields: func(t *models.Task) []any {
			return []any{&t.Title, &t.Description, &t.Completed, &t.CategoryID}
		},
		Values: func(t *models.Task) map[string]any {
			return map[string]any{
				"title":       t.Title,
				"description": t.Description,
				"completed":   t.Completed,
				"category_id": t.CategoryID,
			}
		},
	}
}
