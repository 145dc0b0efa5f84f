// Package repositories implements the storage side of the generic resource
// engine on MySQL. One SQL implementation serves every entity; the per-entity
// files only bind a schema, a scanner and a value map.
package repositories

import (
	"context"
	"database/sql"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/go-sql-driver/mysql"

	"taskhub/internal/domain"
)

// RowScanner is satisfied by both *sql.Row and *sql.Rows.
type RowScanner interface {
	Scan(dest ...any) error
}

// ResourceRepository is the contract the generic resource service requires
// from storage. Every read excludes soft-deleted rows; UpdatePartial performs
// the version check-and-increment atomically.
type ResourceRepository[T domain.Record] interface {
	FindAndCount(ctx context.Context, pred sq.Sqlizer, orderBy []string, skip, take uint64) ([]T, int64, error)
	FindByID(ctx context.Context, id string) (T, error)
	Insert(ctx context.Context, rec T) error
	UpdatePartial(ctx context.Context, id string, changes map[string]any, expectedVersion int64) error
	MarkDeleted(ctx context.Context, id, who string) error
}

// baseColumns is the scan order of the shared Entity columns; entity-specific
// columns follow in schema declaration order.
var baseColumns = []string{
	"id", "tenant_id", "created_at", "created_by",
	"updated_at", "updated_by", "version",
}

// SQLResource is the generic MySQL repository. Fields must return pointers in
// the same order as the schema declares its columns; Values maps columns to
// insert values and may omit columns so store defaults apply.
type SQLResource[T domain.Record] struct {
	DB     *sql.DB
	Schema domain.Schema
	New    func() T
	Fields func(T) []any
	Values func(T) map[string]any
}

func (r SQLResource[T]) selectColumns() []string {
	cols := make([]string, 0, len(baseColumns)+len(r.Schema.Fields))
	cols = append(cols, baseColumns...)
	for _, f := range r.Schema.Fields {
		cols = append(cols, f.Column)
	}
	return cols
}

func (r SQLResource[T]) scanRow(s RowScanner) (T, error) {
	rec := r.New()
	m := rec.Meta()

	var tenantID, createdBy, updatedBy sql.NullString
	dest := []any{&m.ID, &tenantID, &m.CreatedAt, &createdBy, &m.UpdatedAt, &updatedBy, &m.Version}
	dest = append(dest, r.Fields(rec)...)

	if err := s.Scan(dest...); err != nil {
		return rec, err
	}
	m.TenantID = tenantID.String
	m.CreatedBy = createdBy.String
	m.UpdatedBy = updatedBy.String
	return rec, nil
}

func (r SQLResource[T]) FindAndCount(ctx context.Context, pred sq.Sqlizer, orderBy []string, skip, take uint64) ([]T, int64, error) {
	qb := sq.Select(r.selectColumns()...).
		From(r.Schema.Table).
		Where(notDeleted)
	if pred != nil {
		qb = qb.Where(pred)
	}
	for _, o := range orderBy {
		qb = qb.OrderBy(o)
	}
	qb = qb.Limit(take).Offset(skip)

	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, domain.InternalError{Msg: "build list query", Err: err}
	}

	rows, err := r.DB.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, 0, r.mapError(err)
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		rec, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, r.mapError(err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, r.mapError(err)
	}

	cb := sq.Select("COUNT(*)").From(r.Schema.Table).Where(notDeleted)
	if pred != nil {
		cb = cb.Where(pred)
	}
	countStr, countArgs, err := cb.ToSql()
	if err != nil {
		return nil, 0, domain.InternalError{Msg: "build count query", Err: err}
	}
	var total int64
	if err := r.DB.QueryRowContext(ctx, countStr, countArgs...).Scan(&total); err != nil {
		return nil, 0, r.mapError(err)
	}

	return out, total, nil
}

func (r SQLResource[T]) FindByID(ctx context.Context, id string) (T, error) {
	var zero T
	qb := sq.Select(r.selectColumns()...).
		From(r.Schema.Table).
		Where(sq.Eq{"id": id}).
		Where(notDeleted)
	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return zero, domain.InternalError{Msg: "build fetch query", Err: err}
	}

	rec, err := r.scanRow(r.DB.QueryRowContext(ctx, sqlStr, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return zero, domain.NotFoundError{Resource: r.Schema.Resource, ID: id}
		}
		return zero, r.mapError(err)
	}
	return rec, nil
}

func (r SQLResource[T]) Insert(ctx context.Context, rec T) error {
	m := rec.Meta()
	values := map[string]any{
		"id":         m.ID,
		"tenant_id":  nullIfEmpty(m.TenantID),
		"created_by": nullIfEmpty(m.CreatedBy),
		"updated_by": nullIfEmpty(m.UpdatedBy),
		"version":    m.Version,
	}
	for col, v := range r.Values(rec) {
		values[col] = v
	}

	sqlStr, args, err := sq.Insert(r.Schema.Table).SetMap(values).ToSql()
	if err != nil {
		return domain.InternalError{Msg: "build insert query", Err: err}
	}
	if _, err := r.DB.ExecContext(ctx, sqlStr, args...); err != nil {
		return r.mapError(err)
	}
	return nil
}

// UpdatePartial applies changes to a live row, stamping the version bump in
// the same statement. With expectedVersion > 0 the write only lands when the
// stored version still matches; zero rows affected then means a concurrent
// writer won.
func (r SQLResource[T]) UpdatePartial(ctx context.Context, id string, changes map[string]any, expectedVersion int64) error {
	qb := sq.Update(r.Schema.Table).
		SetMap(changes).
		Set("version", sq.Expr("version + 1")).
		Where(sq.Eq{"id": id}).
		Where(notDeleted)
	if expectedVersion > 0 {
		qb = qb.Where(sq.Eq{"version": expectedVersion})
	}

	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return domain.InternalError{Msg: "build update query", Err: err}
	}
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return r.mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "read update result", Err: err}
	}
	if affected == 0 {
		if expectedVersion > 0 {
			return domain.ConflictError{Resource: r.Schema.Resource, Msg: "stale version"}
		}
		return domain.NotFoundError{Resource: r.Schema.Resource, ID: id}
	}
	return nil
}

func (r SQLResource[T]) MarkDeleted(ctx context.Context, id, who string) error {
	qb := sq.Update(r.Schema.Table).
		Set("deleted_at", sq.Expr("CURRENT_TIMESTAMP")).
		Set("deleted_by", nullIfEmpty(who)).
		Where(sq.Eq{"id": id}).
		Where(notDeleted)

	sqlStr, args, err := qb.ToSql()
	if err != nil {
		return domain.InternalError{Msg: "build delete query", Err: err}
	}
	res, err := r.DB.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return r.mapError(err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return domain.InternalError{Msg: "read delete result", Err: err}
	}
	if affected == 0 {
		return domain.NotFoundError{Resource: r.Schema.Resource, ID: id}
	}
	return nil
}

var notDeleted = sq.Expr("deleted_at IS NULL")

// MySQL error numbers the engine maps to client errors.
const (
	mysqlErrDuplicateEntry = 1062
	mysqlErrUnknownColumn  = 1054
	mysqlErrRowIsReferred  = 1451
)

// mapError translates driver errors into the domain taxonomy: unknown column
// (a filter/sort on a field the table does not have) is the client's fault,
// duplicates and blocked deletes are conflicts, everything else is internal.
func (r SQLResource[T]) mapError(err error) error {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		switch myErr.Number {
		case mysqlErrUnknownColumn:
			return domain.ValidationError{Msg: "unknown field in query", Err: err}
		case mysqlErrDuplicateEntry:
			return domain.ConflictError{Resource: r.Schema.Resource, Msg: "duplicate value", Err: err}
		case mysqlErrRowIsReferred:
			return domain.ConflictError{Resource: r.Schema.Resource, Msg: "record is referenced by other data", Err: err}
		}
	}
	return domain.InternalError{Msg: r.Schema.Resource + " storage error", Err: err}
}

// nullIfEmpty keeps optional strings out of the row instead of writing "".
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
