package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
	"taskhub/internal/http/middleware"
	"taskhub/internal/query"
	"taskhub/internal/services"
)

// ReportHandler serves the tenant-scoped task report PDF. The list goes
// through the same parser and service as GET /tasks, so the filter query
// convention works here too.
type ReportHandler struct {
	Tasks services.Resource[*models.Task]
}

// GET /api/reports/tasks
func (h ReportHandler) TaskReport(c *gin.Context) {
	rc := middleware.RequestContext(c)
	spec := query.Parse(c.Request.URL.Query())

	svc := services.ReportService{
		RequestID: middleware.GetRequestID(c),
		Loader: func(ctx context.Context, rc domain.RequestContext, spec query.Spec) (services.PaginatedResult[*models.Task], error) {
			return h.Tasks.List(ctx, rc, spec)
		},
	}

	pdf, filename, err := svc.GenerateTaskReport(c.Request.Context(), rc, spec)
	if err != nil {
		RespondDomainError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdf)
}
