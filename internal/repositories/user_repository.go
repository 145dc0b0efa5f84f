package repositories

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"

	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
)

// UserRepository extends the generic resource repository with the by-username
// lookup the auth flow needs.
type UserRepository struct {
	SQLResource[*models.User]
}

func NewUserRepository(db *sql.DB) UserRepository {
	return UserRepository{SQLResource[*models.User]{
		DB:     db,
		Schema: models.UserSchema(),
		New:    func() *models.User { return &models.User{} },
		Fields: func(u *models.User) []any {
			return []any{&u.Username, &u.Password, &u.Role}
		},
		Values: func(u *models.User) map[string]any {
			values := map[string]any{
				"username": u.Username,
				"password": u.Password,
			}
			// leave role to the store default when unset
			if u.Role != "" {
				values["role"] = u.Role
			}
			return values
		},
	}}
}

func (r UserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	qb := sq.Select(r.selectColumns()...).
		From(r.Schema.Table).
		Where(sq.Eq{"username": username}).
		Where(notDeleted)
	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return nil, domain.InternalError{Msg: "build user query", Err: err}
	}

	user, err := r.scanRow(r.DB.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError{Resource: "user"}
		}
		return nil, r.mapError(err)
	}
	return user, nil
}
