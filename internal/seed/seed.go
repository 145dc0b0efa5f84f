// Package seed bootstraps the records the application needs before the first
// authenticated request can happen.
package seed

import (
	"context"
	"database/sql"

	"golang.org/x/crypto/bcrypt"

	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
	"taskhub/internal/repositories"
	"taskhub/internal/services"
	"taskhub/internal/utils"
)

const (
	adminUsername = "admin"
	adminPassword = "admin123"
	adminTenant   = "admin_tenant"
	seedActor     = "system_seed"
)

// EnsureAdmin creates the admin user when it does not exist yet. Safe to run
// repeatedly.
func EnsureAdmin(ctx context.Context, db *sql.DB) error {
	users := repositories.NewUserRepository(db)

	if _, err := users.FindByUsername(ctx, adminUsername); err == nil {
		utils.LogEvent("", "seed", "ensure_admin", "admin user already exists")
		return nil
	} else if !domain.IsNotFound(err) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return domain.InternalError{Msg: "hash admin password", Err: err}
	}

	svc := services.Resource[*models.User]{Repo: users, Schema: users.Schema}
	rc := domain.RequestContext{UserID: seedActor, TenantID: adminTenant}

	created, err := svc.Create(ctx, rc, &models.User{
		Username: adminUsername,
		Password: string(hash),
		Role:     "admin",
	})
	if err != nil {
		return err
	}
	utils.LogEvent("", "seed", "ensure_admin", "admin user created id="+created.ID)
	return nil
}
