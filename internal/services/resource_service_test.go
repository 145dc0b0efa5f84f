package services

import (
	"context"
	"fmt"
	"sort"
	"testing"

	sq "github.com/Masterminds/squirrel"

	"taskhub/internal/domain"
	"taskhub/internal/domain/models"
	"taskhub/internal/query"
)

// fakeTaskRepo is an in-memory stand-in for the SQL repository. It records
// the compiled predicate so tests can assert what the service asked for.
type fakeTaskRepo struct {
	rows    map[string]*models.Task
	deleted map[string]bool

	lastPredSQL  string
	lastPredArgs []any
	lastOrderBy  []string
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{rows: map[string]*models.Task{}, deleted: map[string]bool{}}
}

func (f *fakeTaskRepo) live() []*models.Task {
	out := []*models.Task{}
	for id, rec := range f.rows {
		if !f.deleted[id] {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeTaskRepo) FindAndCount(_ context.Context, pred sq.Sqlizer, orderBy []string, skip, take uint64) ([]*models.Task, int64, error) {
	f.lastPredSQL, f.lastPredArgs = "", nil
	if pred != nil {
		sqlStr, args, err := pred.ToSql()
		if err != nil {
			return nil, 0, err
		}
		f.lastPredSQL, f.lastPredArgs = sqlStr, args
	}
	f.lastOrderBy = orderBy

	all := f.live()
	total := int64(len(all))
	if skip >= uint64(len(all)) {
		return []*models.Task{}, total, nil
	}
	all = all[skip:]
	if take < uint64(len(all)) {
		all = all[:take]
	}
	return all, total, nil
}

func (f *fakeTaskRepo) FindByID(_ context.Context, id string) (*models.Task, error) {
	rec, ok := f.rows[id]
	if !ok || f.deleted[id] {
		return nil, domain.NotFoundError{Resource: "task", ID: id}
	}
	return rec, nil
}

func (f *fakeTaskRepo) Insert(_ context.Context, rec *models.Task) error {
	f.rows[rec.ID] = rec
	return nil
}

func (f *fakeTaskRepo) UpdatePartial(_ context.Context, id string, changes map[string]any, expectedVersion int64) error {
	rec, ok := f.rows[id]
	if !ok || f.deleted[id] {
		return domain.NotFoundError{Resource: "task", ID: id}
	}
	if expectedVersion > 0 && rec.Version != expectedVersion {
		return domain.ConflictError{Resource: "task", Msg: "stale version"}
	}
	for col, v := range changes {
		switch col {
		case "title":
			rec.Title, _ = v.(string)
		case "updated_by":
			rec.UpdatedBy, _ = v.(string)
		}
	}
	rec.Version++
	return nil
}

func (f *fakeTaskRepo) MarkDeleted(_ context.Context, id, who string) error {
	if _, ok := f.rows[id]; !ok || f.deleted[id] {
		return domain.NotFoundError{Resource: "task", ID: id}
	}
	f.deleted[id] = true
	f.rows[id].DeletedBy = who
	return nil
}

func newTaskService(repo *fakeTaskRepo) Resource[*models.Task] {
	return Resource[*models.Task]{Repo: repo, Schema: models.TaskSchema()}
}

var rcAcme = domain.RequestContext{UserID: "u1", TenantID: "t1", Role: "user"}

func TestCreateStampsEngineColumns(t *testing.T) {
	svc := newTaskService(newFakeTaskRepo())

	created, err := svc.Create(context.Background(), rcAcme, &models.Task{Title: "Buy milk"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.TenantID != "t1" {
		t.Fatalf("tenant = %q, want t1", created.TenantID)
	}
	if created.CreatedBy != "u1" || created.UpdatedBy != "u1" {
		t.Fatalf("audit stamps = %q/%q, want u1/u1", created.CreatedBy, created.UpdatedBy)
	}
	if created.Version != 1 {
		t.Fatalf("version = %d, want 1", created.Version)
	}
}

func TestCreateWithoutActorFallsBackToSystem(t *testing.T) {
	svc := newTaskService(newFakeTaskRepo())

	created, err := svc.Create(context.Background(), domain.RequestContext{}, &models.Task{Title: "x"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.CreatedBy != "system" {
		t.Fatalf("createdBy = %q, want system", created.CreatedBy)
	}
}

func TestListMergesTenantOverClientFilter(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTaskService(repo)

	spec := query.Spec{
		Page:  1,
		Limit: 10,
		Sort:  []query.Sort{{Field: "createdAt", Direction: query.Desc}},
		Filter: map[string][]query.Clause{
			"tenantId": {{Op: query.OpEq, Value: "someone-else"}},
		},
	}
	if _, err := svc.List(context.Background(), rcAcme, spec); err != nil {
		t.Fatalf("List: %v", err)
	}

	if repo.lastPredSQL != "(tenant_id = ?)" {
		t.Fatalf("predicate = %q, want tenant equality", repo.lastPredSQL)
	}
	if len(repo.lastPredArgs) != 1 || repo.lastPredArgs[0] != "t1" {
		t.Fatalf("predicate args = %v, want caller tenant only", repo.lastPredArgs)
	}
	if len(repo.lastOrderBy) != 1 || repo.lastOrderBy[0] != "created_at DESC" {
		t.Fatalf("order by = %v", repo.lastOrderBy)
	}
}

func TestListPaginationMeta(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTaskService(repo)
	for i := 0; i < 25; i++ {
		task := &models.Task{Title: fmt.Sprintf("task %02d", i)}
		if _, err := svc.Create(context.Background(), rcAcme, task); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	res, err := svc.List(context.Background(), rcAcme, query.Spec{Page: 3, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(res.Data) != 5 {
		t.Fatalf("page 3 rows = %d, want 5", len(res.Data))
	}
	if res.Meta.Total != 25 || res.Meta.Page != 3 || res.Meta.LastPage != 3 || res.Meta.Limit != 10 {
		t.Fatalf("unexpected meta %+v", res.Meta)
	}

	// asking past the end is not an error, just an empty page
	res, err = svc.List(context.Background(), rcAcme, query.Spec{Page: 4, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(res.Data) != 0 || res.Meta.Page != 4 || res.Meta.LastPage != 3 {
		t.Fatalf("unexpected out-of-range page %+v", res.Meta)
	}
}

func TestListEmptyTableHasLastPageOne(t *testing.T) {
	svc := newTaskService(newFakeTaskRepo())

	res, err := svc.List(context.Background(), rcAcme, query.Spec{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if res.Meta.Total != 0 || res.Meta.LastPage != 1 {
		t.Fatalf("unexpected meta %+v", res.Meta)
	}
	if res.Data == nil {
		t.Fatal("data must be an empty slice, not nil")
	}
}

func TestGetByIDAbsent(t *testing.T) {
	svc := newTaskService(newFakeTaskRepo())

	_, err := svc.GetByID(context.Background(), rcAcme, "nope")
	if !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestGetByIDForeignTenantForbidden(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTaskService(repo)

	other := domain.RequestContext{UserID: "u9", TenantID: "t9"}
	created, err := svc.Create(context.Background(), other, &models.Task{Title: "theirs"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err = svc.GetByID(context.Background(), rcAcme, created.ID)
	if !domain.IsForbidden(err) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
}

func TestUpdateAppliesChangesAndBumpsVersion(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTaskService(repo)

	created, err := svc.Create(context.Background(), rcAcme, &models.Task{Title: "before"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	updated, err := svc.Update(context.Background(), rcAcme, created.ID, map[string]any{"title": "after"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Title != "after" {
		t.Fatalf("title = %q, want after", updated.Title)
	}
	if updated.Version != 2 {
		t.Fatalf("version = %d, want 2", updated.Version)
	}
	if updated.UpdatedBy != "u1" {
		t.Fatalf("updatedBy = %q, want u1", updated.UpdatedBy)
	}
}

func TestUpdateForeignTenantForbidden(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTaskService(repo)

	created, err := svc.Create(context.Background(), domain.RequestContext{TenantID: "t9"}, &models.Task{Title: "x"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	_, err = svc.Update(context.Background(), rcAcme, created.ID, map[string]any{"title": "y"})
	if !domain.IsForbidden(err) {
		t.Fatalf("expected ForbiddenError, got %v", err)
	}
}

func TestRemoveThenGetNotFound(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := newTaskService(repo)

	created, err := svc.Create(context.Background(), rcAcme, &models.Task{Title: "x"})
	if err != nil {
		t.Fatalf("seed: %v", err)
	}

	if err := svc.Remove(context.Background(), rcAcme, created.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := svc.GetByID(context.Background(), rcAcme, created.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError after delete, got %v", err)
	}
	if err := svc.Remove(context.Background(), rcAcme, created.ID); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError on second delete, got %v", err)
	}
}

func TestLastPage(t *testing.T) {
	cases := []struct {
		total int64
		limit int
		want  int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{25, 10, 3},
		{5, 0, 5},
	}
	for _, tc := range cases {
		if got := lastPage(tc.total, tc.limit); got != tc.want {
			t.Fatalf("lastPage(%d, %d) = %d, want %d", tc.total, tc.limit, got, tc.want)
		}
	}
}
