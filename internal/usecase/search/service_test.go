package search

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	gormsqlite "github.com/glebarez/sqlite"
	"github.com/google/go-cmp/cmp"
	"gorm.io/gorm"

	"github.com/secureworks/taegis-magic/internal/infrastructure/cache"
	"github.com/secureworks/taegis-magic/internal/infrastructure/persistence/sqlite/model"
	"github.com/secureworks/taegis-magic/internal/infrastructure/persistence/sqlite/repository"
	"github.com/secureworks/taegis-magic/internal/infrastructure/persistence/sqlite/uow"
	"github.com/secureworks/taegis-magic/internal/ports"
	evidenceuc "github.com/secureworks/taegis-magic/internal/usecase/evidence"
)

type fakeAlertsClient struct {
	first       ports.AlertsPage
	parts       map[int]ports.AlertsPage
	pollErrs    map[int]error
	searchCalls int
	lastRequest ports.SearchRequest
	pollCalls   []int
}

func (f *fakeAlertsClient) Search(_ context.Context, req ports.SearchRequest) (ports.AlertsPage, error) {
	f.searchCalls++
	f.lastRequest = req
	return f.first, nil
}

func (f *fakeAlertsClient) Poll(_ context.Context, _ string, partID int) (ports.AlertsPage, error) {
	f.pollCalls = append(f.pollCalls, partID)
	if err, ok := f.pollErrs[partID]; ok {
		return ports.AlertsPage{}, err
	}
	return f.parts[partID], nil
}

type fakeEventsClient struct {
	pages       map[string]ports.EventsPage
	first       ports.EventsPage
	lastRequest ports.SearchRequest
}

func (f *fakeEventsClient) Query(_ context.Context, req ports.SearchRequest) (ports.EventsPage, error) {
	f.lastRequest = req
	return f.first, nil
}

func (f *fakeEventsClient) Page(_ context.Context, next string) (ports.EventsPage, error) {
	page, ok := f.pages[next]
	if !ok {
		return ports.EventsPage{}, fmt.Errorf("unknown page token %q", next)
	}
	return page, nil
}

func setupSearch(t *testing.T, alerts ports.AlertsClient, events ports.EventsClient) (*Service, *evidenceuc.Service) {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "evidence.sqlite")
	db, err := gorm.Open(gormsqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})
	if err := db.AutoMigrate(&model.Evidence{}, &model.SearchQuery{}, &model.ResultKV{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	store := evidenceuc.NewService(
		repository.NewEvidenceRepository(db),
		repository.NewSearchQueryRepository(db),
		uow.NewUnitOfWork(db),
	)
	return NewService(store, cache.NewSQLiteCache(db), alerts, events), store
}

func alertRows(ids ...string) []map[string]any {
	rows := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, map[string]any{"id": id, "tenant_id": "t1"})
	}
	return rows
}

func TestAlertsPaginatesAllParts(t *testing.T) {
	client := &fakeAlertsClient{
		first: ports.AlertsPage{
			SearchID:     "s1",
			TotalParts:   3,
			TotalResults: 5,
			QueryID:      "q1",
			Rows:         alertRows("a-1", "a-2"),
		},
		parts: map[int]ports.AlertsPage{
			2: {Rows: alertRows("a-3", "a-4")},
			3: {Rows: alertRows("a-5")},
		},
	}
	svc, _ := setupSearch(t, client, nil)

	result, err := svc.Alerts(context.Background(), Input{TenantID: "t1", Query: "FROM alert", Limit: 100, CallerName: "Taegis Magic"})
	if err != nil {
		t.Fatalf("Alerts() error = %v", err)
	}

	if diff := cmp.Diff([]string{"a-1", "a-2", "a-3", "a-4", "a-5"}, result.Frame.Column("id")); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	want := ports.SearchRequest{TenantID: "t1", Query: "FROM alert", Limit: 100, CallerName: "Taegis Magic"}
	if diff := cmp.Diff(want, client.lastRequest); diff != "" {
		t.Fatalf("search request mismatch (-want +got):\n%s", diff)
	}
	if result.QueryID != "q1" || result.TotalResults != 5 || result.ResultsReturned != 5 {
		t.Fatalf("result = %+v", result)
	}
	if diff := cmp.Diff([]int{2, 3}, client.pollCalls); diff != "" {
		t.Fatalf("poll calls mismatch (-want +got):\n%s", diff)
	}
}

func TestAlertsStopsAtLimit(t *testing.T) {
	client := &fakeAlertsClient{
		first: ports.AlertsPage{
			SearchID:   "s1",
			TotalParts: 4,
			Rows:       alertRows("a-1"),
		},
		parts: map[int]ports.AlertsPage{
			2: {Rows: alertRows("a-2")},
			3: {Rows: alertRows("a-3")},
			4: {Rows: alertRows("a-4")},
		},
	}
	svc, _ := setupSearch(t, client, nil)

	result, err := svc.Alerts(context.Background(), Input{TenantID: "t1", Query: "FROM alert", Limit: 2})
	if err != nil {
		t.Fatalf("Alerts() error = %v", err)
	}
	if result.ResultsReturned != 2 {
		t.Fatalf("ResultsReturned = %d, want 2", result.ResultsReturned)
	}
	if diff := cmp.Diff([]int{2}, client.pollCalls); diff != "" {
		t.Fatalf("poll calls mismatch (-want +got):\n%s", diff)
	}
}

func TestAlertsPollFailures(t *testing.T) {
	client := &fakeAlertsClient{
		first: ports.AlertsPage{
			SearchID:   "s1",
			TotalParts: 4,
			Rows:       alertRows("a-1"),
		},
		parts: map[int]ports.AlertsPage{
			3: {Rows: alertRows("a-3")},
		},
		pollErrs: map[int]error{
			2: errors.New("temporarily unavailable"),
			4: errors.New("search s1 not found"),
		},
	}
	svc, _ := setupSearch(t, client, nil)

	result, err := svc.Alerts(context.Background(), Input{TenantID: "t1", Query: "FROM alert", Limit: 100})
	if err != nil {
		t.Fatalf("Alerts() error = %v", err)
	}

	// Part 2 fails transiently and is skipped; part 4 reports an expired
	// search and ends the loop.
	if diff := cmp.Diff([]string{"a-1", "a-3"}, result.Frame.Column("id")); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{2, 3, 4}, client.pollCalls); diff != "" {
		t.Fatalf("poll calls mismatch (-want +got):\n%s", diff)
	}
}

func TestAlertsTracksQuery(t *testing.T) {
	client := &fakeAlertsClient{
		first: ports.AlertsPage{
			QueryID:      "q1",
			TotalResults: 1,
			Rows:         alertRows("a-1"),
		},
	}
	svc, store := setupSearch(t, client, nil)

	if _, err := svc.Alerts(context.Background(), Input{TenantID: "t1", Query: "FROM alert", Limit: 10, Track: true}); err != nil {
		t.Fatalf("Alerts() error = %v", err)
	}

	queries, err := store.ListSearchQueries(context.Background())
	if err != nil {
		t.Fatalf("ListSearchQueries() error = %v", err)
	}
	if len(queries) != 1 {
		t.Fatalf("search query log has %d rows, want 1", len(queries))
	}
	logged := queries[0]
	if logged.ID != "q1" || logged.TenantID != "t1" || logged.Query != "FROM alert" || logged.ResultsReturned != 1 {
		t.Fatalf("logged query = %+v", logged)
	}
}

func TestAlertsTrackGeneratesIDWhenMissing(t *testing.T) {
	client := &fakeAlertsClient{
		first: ports.AlertsPage{Rows: alertRows("a-1")},
	}
	svc, store := setupSearch(t, client, nil)
	svc.newID = func() string { return "generated-id" }

	if _, err := svc.Alerts(context.Background(), Input{TenantID: "t1", Query: "FROM alert", Track: true}); err != nil {
		t.Fatalf("Alerts() error = %v", err)
	}

	queries, err := store.ListSearchQueries(context.Background())
	if err != nil {
		t.Fatalf("ListSearchQueries() error = %v", err)
	}
	if len(queries) != 1 || queries[0].ID != "generated-id" {
		t.Fatalf("logged queries = %+v", queries)
	}
}

func TestAlertsCacheRoundTrip(t *testing.T) {
	client := &fakeAlertsClient{
		first: ports.AlertsPage{
			QueryID:      "q1",
			TotalResults: 1,
			Rows:         alertRows("a-1"),
		},
	}
	svc, _ := setupSearch(t, client, nil)
	in := Input{TenantID: "t1", Query: "FROM alert", Limit: 10, UseCache: true}

	first, err := svc.Alerts(context.Background(), in)
	if err != nil {
		t.Fatalf("Alerts() error = %v", err)
	}
	if first.FromCache {
		t.Fatalf("first call should not be served from cache")
	}

	second, err := svc.Alerts(context.Background(), in)
	if err != nil {
		t.Fatalf("Alerts(cached) error = %v", err)
	}
	if !second.FromCache {
		t.Fatalf("second call should be served from cache")
	}
	if client.searchCalls != 1 {
		t.Fatalf("Search called %d times, want 1", client.searchCalls)
	}
	if diff := cmp.Diff(first.Frame.Column("id"), second.Frame.Column("id")); diff != "" {
		t.Fatalf("cached ids mismatch (-first +second):\n%s", diff)
	}
	if second.QueryID != "q1" || second.TotalResults != 1 || second.ResultsReturned != 1 {
		t.Fatalf("cached result = %+v", second)
	}
}

func TestEventsFollowsContinuationTokens(t *testing.T) {
	client := &fakeEventsClient{
		first: ports.EventsPage{
			QueryID:      "eq1",
			Next:         "p2",
			TotalResults: 3,
			Rows:         []map[string]any{{"resource_id": "e-1"}},
		},
		pages: map[string]ports.EventsPage{
			"p2": {Next: "p3", Rows: []map[string]any{{"resource_id": "e-2"}}},
			"p3": {Rows: []map[string]any{{"resource_id": "e-3"}}},
		},
	}
	svc, _ := setupSearch(t, nil, client)

	result, err := svc.Events(context.Background(), Input{TenantID: "t1", Query: "FROM process", Limit: 100, CallerName: "Taegis Magic"})
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if diff := cmp.Diff([]string{"e-1", "e-2", "e-3"}, result.Frame.Column("resource_id")); diff != "" {
		t.Fatalf("ids mismatch (-want +got):\n%s", diff)
	}
	if result.QueryID != "eq1" || result.TotalResults != 3 {
		t.Fatalf("result = %+v", result)
	}
	if client.lastRequest.CallerName != "Taegis Magic" {
		t.Fatalf("caller name not forwarded, request = %+v", client.lastRequest)
	}
}

func TestEventsStopsAtLimit(t *testing.T) {
	client := &fakeEventsClient{
		first: ports.EventsPage{
			Next: "p2",
			Rows: []map[string]any{{"resource_id": "e-1"}, {"resource_id": "e-2"}},
		},
		pages: map[string]ports.EventsPage{
			"p2": {Next: "p3", Rows: []map[string]any{{"resource_id": "e-3"}}},
		},
	}
	svc, _ := setupSearch(t, nil, client)

	result, err := svc.Events(context.Background(), Input{TenantID: "t1", Query: "FROM process", Limit: 2})
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if result.ResultsReturned != 2 {
		t.Fatalf("ResultsReturned = %d, want 2", result.ResultsReturned)
	}
}

func TestClientNotConfigured(t *testing.T) {
	svc, _ := setupSearch(t, nil, nil)

	if _, err := svc.Alerts(context.Background(), Input{Query: "FROM alert"}); err == nil {
		t.Fatalf("Alerts() without client should fail")
	}
	if _, err := svc.Events(context.Background(), Input{Query: "FROM process"}); err == nil {
		t.Fatalf("Events() without client should fail")
	}
}
