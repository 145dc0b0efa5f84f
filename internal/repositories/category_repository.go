package repositories

import (
	"database/sql"

	"taskhub/internal/domain/models"
)

func NewCategoryRepository(db *sql.DB) SQLResource[*models.Category] {
	return SQLResource[*models.Category]{
		DB:     db,
		Schema: models.CategorySchema(),
		New:    func() *models.Category { return &models.Category{} },
		Fields: func(c *models.Category) []any {
			return []any{&c.Name, &c.Description}
		},
		Values: func(c *models.Category) map[string]any {
			return map[string]any{
				"name":        c.Name,
				"description": c.Description,
			}
		},
	}
}
