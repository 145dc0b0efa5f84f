// Package services holds the entity-agnostic orchestration between the HTTP
// layer and the repositories.
package services

import (
	"context"

	"github.com/google/uuid"

	"taskhub/internal/domain"
	"taskhub/internal/query"
	"taskhub/internal/repositories"
)

type Meta struct {
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	LastPage int   `json:"lastPage"`
	Limit    int   `json:"limit"`
}

type PaginatedResult[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

// Resource is the generic CRUD service. It owns pagination math, tenant
// scoping, the ownership compare and audit stamping; the repository owns SQL.
// Every operation takes the request context explicitly — nothing here is
// shared between requests.
type Resource[T domain.Record] struct {
	Repo   repositories.ResourceRepository[T]
	Schema domain.Schema
}

// List runs the spec against live rows. A tenant-scoped caller gets the
// tenant merged into the filter before compilation, replacing any
// client-supplied tenant clause, so counts never leak across tenants.
func (s Resource[T]) List(ctx context.Context, rc domain.RequestContext, spec query.Spec) (PaginatedResult[T], error) {
	if rc.TenantID != "" {
		spec = spec.WithFilter("tenantId", query.Clause{Op: query.OpEq, Value: rc.TenantID})
	}

	pred := query.Compile(spec.Filter, s.Schema.ColumnFor)
	orderBy := query.OrderBy(spec.Sort, s.Schema.ColumnFor)

	rows, total, err := s.Repo.FindAndCount(ctx, pred, orderBy, uint64(spec.Skip()), uint64(spec.Limit))
	if err != nil {
		return PaginatedResult[T]{}, err
	}

	return PaginatedResult[T]{
		Data: rows,
		Meta: Meta{
			Total:    total,
			Page:     spec.Page,
			LastPage: lastPage(total, spec.Limit),
			Limit:    spec.Limit,
		},
	}, nil
}

// GetByID fetches one live record and verifies tenant ownership. Absent ids
// report NotFound before any ownership question, so an id outside the
// caller's tenant is only ever Forbidden when the record really exists.
func (s Resource[T]) GetByID(ctx context.Context, rc domain.RequestContext, id string) (T, error) {
	var zero T
	rec, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return zero, err
	}
	if err := s.checkOwnership(rc, rec); err != nil {
		return zero, err
	}
	return rec, nil
}

// Create stamps identity, tenant and audit columns — the only place they are
// ever set — persists, and re-fetches so store-assigned defaults land in the
// response.
func (s Resource[T]) Create(ctx context.Context, rc domain.RequestContext, rec T) (T, error) {
	var zero T
	m := rec.Meta()
	m.ID = uuid.NewString()
	m.TenantID = rc.TenantID
	m.CreatedBy = rc.Actor()
	m.UpdatedBy = rc.Actor()
	m.Version = 1

	if err := s.Repo.Insert(ctx, rec); err != nil {
		return zero, err
	}
	return s.Repo.FindByID(ctx, m.ID)
}

// Update requires an existing owned record, applies the column changes with
// the updatedBy stamp and version bump, and returns the re-fetched row rather
// than an in-memory patch.
func (s Resource[T]) Update(ctx context.Context, rc domain.RequestContext, id string, changes map[string]any) (T, error) {
	var zero T
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return zero, err
	}
	if err := s.checkOwnership(rc, existing); err != nil {
		return zero, err
	}

	stamped := make(map[string]any, len(changes)+1)
	for col, v := range changes {
		stamped[col] = v
	}
	stamped["updated_by"] = rc.Actor()

	if err := s.Repo.UpdatePartial(ctx, id, stamped, existing.Meta().Version); err != nil {
		return zero, err
	}
	return s.Repo.FindByID(ctx, id)
}

// Remove soft-deletes an existing owned record. A second call finds no live
// row and reports NotFound.
func (s Resource[T]) Remove(ctx context.Context, rc domain.RequestContext, id string) error {
	existing, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.checkOwnership(rc, existing); err != nil {
		return err
	}
	return s.Repo.MarkDeleted(ctx, id, rc.Actor())
}

func (s Resource[T]) checkOwnership(rc domain.RequestContext, rec T) error {
	if rc.TenantID != "" && rec.Meta().TenantID != rc.TenantID {
		return domain.ForbiddenError{Msg: "access denied"}
	}
	return nil
}

func lastPage(total int64, limit int) int {
	if limit < 1 {
		limit = 1
	}
	pages := int((total + int64(limit) - 1) / int64(limit))
	if pages < 1 {
		return 1
	}
	return pages
}
