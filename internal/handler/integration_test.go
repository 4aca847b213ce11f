package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/tontinehub/tontine-admin-bfa/internal/domain"
	"github.com/tontinehub/tontine-admin-bfa/internal/handler"
	"github.com/tontinehub/tontine-admin-bfa/internal/infra/cache"
	"github.com/tontinehub/tontine-admin-bfa/internal/infra/client"
	"github.com/tontinehub/tontine-admin-bfa/internal/infra/memstore"
	"github.com/tontinehub/tontine-admin-bfa/internal/infra/observability"
	"github.com/tontinehub/tontine-admin-bfa/internal/infra/resilience"
	"github.com/tontinehub/tontine-admin-bfa/internal/service"

	"go.uber.org/zap"
)

// fakeDataAPI serves a memstore over the JSON contract DataClient speaks.
func fakeDataAPI(store *memstore.Store) http.Handler {
	reply := func(w http.ResponseWriter, status int, v any, err error) {
		var (
			nf       *domain.ErrNotFound
			conflict *domain.ErrConflict
			invalid  *domain.ErrValidation
		)
		switch {
		case errors.As(err, &nf):
			w.WriteHeader(http.StatusNotFound)
			return
		case errors.As(err, &conflict):
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(map[string]string{"message": conflict.Message})
			return
		case errors.As(err, &invalid):
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]string{"message": invalid.Message})
			return
		case err != nil:
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if v != nil {
			json.NewEncoder(w).Encode(v)
		}
	}

	r := chi.NewRouter()
	r.Get("/users", func(w http.ResponseWriter, r *http.Request) {
		users, err := store.ListUsers(r.Context())
		reply(w, http.StatusOK, users, err)
	})
	r.Get("/groups", func(w http.ResponseWriter, r *http.Request) {
		groups, err := store.ListGroups(r.Context())
		reply(w, http.StatusOK, groups, err)
	})
	r.Get("/transactions", func(w http.ResponseWriter, r *http.Request) {
		txns, err := store.ListTransactions(r.Context())
		reply(w, http.StatusOK, txns, err)
	})
	r.Post("/groups", func(w http.ResponseWriter, r *http.Request) {
		var g domain.Group
		json.NewDecoder(r.Body).Decode(&g)
		out, err := store.AddGroup(r.Context(), &g)
		reply(w, http.StatusCreated, out, err)
	})
	r.Post("/groups/{groupId}/members", func(w http.ResponseWriter, r *http.Request) {
		var req domain.MemberRequest
		json.NewDecoder(r.Body).Decode(&req)
		out, err := store.AddMemberToGroup(r.Context(), chi.URLParam(r, "groupId"), req.UserID)
		reply(w, http.StatusOK, out, err)
	})
	r.Post("/deposits", func(w http.ResponseWriter, r *http.Request) {
		var req domain.DepositRequest
		json.NewDecoder(r.Body).Decode(&req)
		out, err := store.MakeDeposit(r.Context(), req.UserID, req.Amount)
		reply(w, http.StatusCreated, out, err)
	})
	r.Post("/users/{userId}/beneficiary/toggle", func(w http.ResponseWriter, r *http.Request) {
		out, err := store.ToggleTontineBeneficiaryStatus(r.Context(), chi.URLParam(r, "userId"))
		reply(w, http.StatusOK, out, err)
	})
	return r
}

func newRemoteRouter(t *testing.T) http.Handler {
	t.Helper()

	clock := func() time.Time { return fixedNow }
	users, groups, txns := memstore.DemoData(fixedNow)
	store := memstore.New(memstore.WithClock(clock), memstore.WithData(users, groups, txns))

	api := httptest.NewServer(fakeDataAPI(store))
	t.Cleanup(api.Close)

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	cb := resilience.NewCircuitBreaker(t.Name(), logger)
	cfg := resilience.Config{MaxRetries: 1, InitialBackoff: 10 * time.Millisecond, MaxConcurrency: 10}
	httpClient := &http.Client{Timeout: 5 * time.Second}

	svc := service.NewAdminService(
		client.NewDataClient(httpClient, api.URL, cb, cfg, logger),
		cache.New[any](time.Minute),
		metrics,
		logger,
		service.WithClock(clock),
	)
	return handler.NewRouter(svc, nil, metrics, logger)
}

// TestIntegration_RemoteStoreFlow drives the admin API against a remote data
// API: read the dashboard, record a deposit for a member who missed today,
// and check the dashboard reflects it.
func TestIntegration_RemoteStoreFlow(t *testing.T) {
	router := newRemoteRouter(t)

	rec := do(t, router, http.MethodGet, "/v1/admin/contributions/missed", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d. Body: %s", rec.Code, rec.Body.String())
	}
	var before domain.MissedView
	decode(t, rec, &before)
	if before.Count == 0 {
		t.Fatal("expected demo data to have members who missed today")
	}
	target := before.Users[0]

	rec = do(t, router, http.MethodGet, "/v1/admin/overview", "")
	var ov domain.Overview
	decode(t, rec, &ov)
	todayBefore := ov.Stats.TodayTotal

	rec = do(t, router, http.MethodPost, "/v1/admin/deposits", `{"userId":"`+target.ID+`","amount":5000}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d. Body: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodGet, "/v1/admin/contributions/missed", "")
	var after domain.MissedView
	decode(t, rec, &after)
	if after.Count != before.Count-1 {
		t.Errorf("expected missed count to drop from %d to %d, got %d", before.Count, before.Count-1, after.Count)
	}
	for _, u := range after.Users {
		if u.ID == target.ID {
			t.Errorf("expected %s to be cleared after deposit", target.FullName)
		}
	}

	rec = do(t, router, http.MethodGet, "/v1/admin/overview", "")
	decode(t, rec, &ov)
	if ov.Stats.TodayTotal != todayBefore+5000 {
		t.Errorf("expected today total %d, got %d", todayBefore+5000, ov.Stats.TodayTotal)
	}
}

// TestIntegration_RemoteErrors checks collaborator errors surface with the
// right status codes through the client.
func TestIntegration_RemoteErrors(t *testing.T) {
	router := newRemoteRouter(t)

	rec := do(t, router, http.MethodPost, "/v1/admin/users/nobody/beneficiary", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/v1/admin/groups/g-001/members", `{"userId":"u-001"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for existing member, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/v1/admin/groups", `{"name":"Tontine du Marché","targetAmount":1000}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("expected 409 for duplicate group, got %d", rec.Code)
	}
}
