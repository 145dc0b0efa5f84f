package domain

import "time"

// Entity holds the columns shared by every managed record: identity, tenant
// scope, audit stamps, soft-delete marker and the optimistic-concurrency
// version. Tenant and soft-delete columns stay out of JSON projections.
type Entity struct {
	ID        string     `json:"id"`
	TenantID  string     `json:"-"`
	CreatedAt time.Time  `json:"createdAt"`
	CreatedBy string     `json:"createdBy,omitempty"`
	UpdatedAt time.Time  `json:"updatedAt"`
	UpdatedBy string     `json:"updatedBy,omitempty"`
	DeletedAt *time.Time `json:"-"`
	DeletedBy string     `json:"-"`
	Version   int64      `json:"version"`
}

func (e *Entity) Meta() *Entity { return e }

// Record is the constraint for types managed by the generic engine: any
// struct embedding Entity satisfies it through the pointer receiver.
type Record interface {
	Meta() *Entity
}
