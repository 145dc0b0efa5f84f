package models

import "taskhub/internal/domain"

type User struct {
	domain.Entity
	Username string `json:"username"`
	Password string `json:"-"`
	Role     string `json:"role"`
}

func UserSchema() domain.Schema {
	return domain.Schema{
		Resource: "user",
		Table:    "users",
		Fields: []domain.Field{
			{Name: "username", Column: "username"},
			{Name: "password", Column: "password"},
			{Name: "role", Column: "role", HasDefault: true},
		},
	}
}
