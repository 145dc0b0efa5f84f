// Package crud builds the five REST handlers for any entity from its schema,
// service and role map: one pipeline, no per-resource handler code.
package crud

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskhub/internal/domain"
	"taskhub/internal/http/handlers"
	"taskhub/internal/http/middleware"
	"taskhub/internal/query"
	"taskhub/internal/services"
)

// Roles is the per-action allow-list. An empty list means any authenticated
// caller may perform the action.
type Roles struct {
	Create []string
	Read   []string
	Update []string
	Delete []string
}

// Controller wires the fixed request pipeline — role check, required-field
// validation, delegation — onto a generic resource service. BeforeCreate and
// BeforeUpdate are optional per-entity hooks running after validation and
// before delegation (e.g. password hashing on users).
type Controller[T domain.Record] struct {
	Service      services.Resource[T]
	Roles        Roles
	New          func() T
	BeforeCreate func(rc domain.RequestContext, rec T, payload map[string]any) error
	BeforeUpdate func(rc domain.RequestContext, changes map[string]any) error
}

// Register mounts the five CRUD verbs on the group. PUT stays as an alias of
// PATCH for older clients.
func (ct Controller[T]) Register(g *gin.RouterGroup) {
	g.GET("", ct.List)
	g.GET("/:id", ct.Get)
	g.POST("", ct.Create)
	g.PATCH("/:id", ct.Update)
	g.PUT("/:id", ct.Update)
	g.DELETE("/:id", ct.Remove)
}

func (ct Controller[T]) List(c *gin.Context) {
	rc := middleware.RequestContext(c)
	if !ct.checkRoles(c, rc, ct.Roles.Read) {
		return
	}

	spec := query.Parse(c.Request.URL.Query())
	result, err := ct.Service.List(c.Request.Context(), rc, spec)
	if err != nil {
		handlers.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (ct Controller[T]) Get(c *gin.Context) {
	rc := middleware.RequestContext(c)
	if !ct.checkRoles(c, rc, ct.Roles.Read) {
		return
	}

	rec, err := ct.Service.GetByID(c.Request.Context(), rc, c.Param("id"))
	if err != nil {
		handlers.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (ct Controller[T]) Create(c *gin.Context) {
	rc := middleware.RequestContext(c)
	if !ct.checkRoles(c, rc, ct.Roles.Create) {
		return
	}

	body, payload, ok := ct.readPayload(c)
	if !ok {
		return
	}
	if violations := ct.Service.Schema.ValidateRequired(payload, false); len(violations) > 0 {
		handlers.RespondDomainError(c, domain.ValidationError{Fields: violations})
		return
	}

	rec := ct.New()
	if err := json.Unmarshal(body, rec); err != nil {
		handlers.RespondDomainError(c, domain.ValidationError{Msg: "malformed payload shape", Err: err})
		return
	}
	if ct.BeforeCreate != nil {
		if err := ct.BeforeCreate(rc, rec, payload); err != nil {
			handlers.RespondDomainError(c, err)
			return
		}
	}

	// identity, tenant and audit stamping happen in the service; any
	// client-supplied values for those columns are overridden there.
	created, err := ct.Service.Create(c.Request.Context(), rc, rec)
	if err != nil {
		handlers.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (ct Controller[T]) Update(c *gin.Context) {
	rc := middleware.RequestContext(c)
	if !ct.checkRoles(c, rc, ct.Roles.Update) {
		return
	}

	_, payload, ok := ct.readPayload(c)
	if !ok {
		return
	}
	if violations := ct.Service.Schema.ValidateRequired(payload, true); len(violations) > 0 {
		handlers.RespondDomainError(c, domain.ValidationError{Fields: violations})
		return
	}

	changes := ct.buildChanges(payload)
	if ct.BeforeUpdate != nil {
		if err := ct.BeforeUpdate(rc, changes); err != nil {
			handlers.RespondDomainError(c, err)
			return
		}
	}

	updated, err := ct.Service.Update(c.Request.Context(), rc, c.Param("id"), changes)
	if err != nil {
		handlers.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (ct Controller[T]) Remove(c *gin.Context) {
	rc := middleware.RequestContext(c)
	if !ct.checkRoles(c, rc, ct.Roles.Delete) {
		return
	}

	id := c.Param("id")
	if err := ct.Service.Remove(c.Request.Context(), rc, id); err != nil {
		handlers.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted", "id": id})
}

// readPayload decodes the body once into a key-presence map. A body that is
// not a JSON object is a validation failure, not a parser concern.
func (ct Controller[T]) readPayload(c *gin.Context) ([]byte, map[string]any, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		handlers.RespondDomainError(c, domain.InternalError{Msg: "read request body", Err: err})
		return nil, nil, false
	}
	payload := map[string]any{}
	if err := json.Unmarshal(body, &payload); err != nil {
		handlers.RespondDomainError(c, domain.ValidationError{Msg: "malformed payload shape", Err: err})
		return nil, nil, false
	}
	return body, payload, true
}

// buildChanges keeps only declared, non-generated fields that are present in
// the payload; everything else — unknown keys, audit columns, tenant — never
// reaches the store. Empty strings on nullable id fields become NULL.
func (ct Controller[T]) buildChanges(payload map[string]any) map[string]any {
	changes := map[string]any{}
	for _, f := range ct.Service.Schema.Fields {
		if f.Generated {
			continue
		}
		v, present := payload[f.Name]
		if !present {
			continue
		}
		if s, ok := v.(string); ok && s == "" && f.Nullable && strings.HasSuffix(f.Name, "Id") {
			v = nil
		}
		changes[f.Column] = v
	}
	return changes
}

func (ct Controller[T]) checkRoles(c *gin.Context, rc domain.RequestContext, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, role := range allowed {
		if strings.EqualFold(strings.TrimSpace(role), strings.TrimSpace(rc.Role)) {
			return true
		}
	}
	handlers.RespondDomainError(c, domain.ForbiddenError{
		Msg: "role is not allowed to perform this action",
	})
	return false
}
