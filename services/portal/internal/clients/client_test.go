package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"fieldbook/services/portal/internal/models"
)

func TestEndpointsResolveFallsBackToBase(t *testing.T) {
	resolved := Endpoints{BaseURL: "http://gw", RolesURL: "http://roles"}.Resolve()
	if resolved.AuthURL != "http://gw" || resolved.DashboardURL != "http://gw" {
		t.Fatalf("expected base fallback, got %+v", resolved)
	}
	if resolved.RolesURL != "http://roles" {
		t.Fatalf("explicit url lost: %+v", resolved)
	}
}

func TestClientRoutesServicesToTheirURLs(t *testing.T) {
	var authHits, fieldsHits int32
	auth := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&authHits, 1)
		_ = json.NewEncoder(w).Encode(models.User{ID: 1, Email: "a@b.com"})
	})
	fields := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&fieldsHits, 1)
		_ = json.NewEncoder(w).Encode(models.FieldsPage{Total: 0})
	})

	c := New(Endpoints{BaseURL: "http://unused.invalid", AuthURL: auth.URL, FieldsURL: fields.URL}, nil, nil)
	if _, err := c.Auth.CurrentUser(context.Background(), "tok"); err != nil {
		t.Fatalf("current user: %v", err)
	}
	if _, err := c.Fields.List(context.Background(), "tok"); err != nil {
		t.Fatalf("list fields: %v", err)
	}
	if authHits != 1 || fieldsHits != 1 {
		t.Fatalf("unexpected hits auth=%d fields=%d", authHits, fieldsHits)
	}
}

func TestHealthFallsBackWhenUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := New(Endpoints{BaseURL: url}, nil, nil)
	if got := c.Health(context.Background()); got.Status != BackendUnavailable {
		t.Fatalf("unexpected health %q", got.Status)
	}
}

func TestReservationQueries(t *testing.T) {
	var mu sync.Mutex
	var queries []string
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		queries = append(queries, r.URL.Path+"?"+r.URL.RawQuery)
		mu.Unlock()
		_, _ = w.Write([]byte(`{"reservations":[],"total":0,"page":1,"size":10}`))
	})
	c := New(Endpoints{BaseURL: srv.URL}, nil, nil)
	ctx := context.Background()

	if _, err := c.Reservations.List(ctx, ReservationFilter{Page: 3, Limit: 5, Status: "cancelada", FieldID: 7}, "tok"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := c.Reservations.List(ctx, ReservationFilter{Status: "all"}, "tok"); err != nil {
		t.Fatalf("list all: %v", err)
	}
	if _, err := c.Reservations.Mine(ctx, ReservationFilter{Status: "confirmada", UserID: 9}, "tok"); err != nil {
		t.Fatalf("mine: %v", err)
	}

	want := []string{
		"/reservations/?field_id=7&limit=5&skip=10&status=cancelada",
		"/reservations/?limit=10&skip=0",
		"/reservations/my?limit=10&skip=0&status=confirmada",
	}
	for i, q := range want {
		if queries[i] != q {
			t.Fatalf("query %d: got %s want %s", i, queries[i], q)
		}
	}
}

func TestRegisterAdminForcesAdminFlag(t *testing.T) {
	var got models.UserCreateAdmin
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&got)
		_ = json.NewEncoder(w).Encode(models.User{ID: 4, Email: got.Email, IsAdmin: got.IsAdmin})
	})
	c := New(Endpoints{BaseURL: srv.URL}, nil, nil)
	user, err := c.Auth.RegisterAdmin(context.Background(), models.UserCreateAdmin{Username: "root", Email: "r@x.io", Password: "pw"}, "tok")
	if err != nil {
		t.Fatalf("register admin: %v", err)
	}
	if !got.IsAdmin || !user.IsAdmin {
		t.Fatalf("is_admin must be forced to true")
	}
}

func TestOverviewAppliesAllResultsRegardlessOfOrder(t *testing.T) {
	delays := map[string]time.Duration{
		"/dashboard/stats":        60 * time.Millisecond,
		"/dashboard/fields/stats": 0,
		"/dashboard/health-check": 30 * time.Millisecond,
	}
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(delays[r.URL.Path])
		switch r.URL.Path {
		case "/dashboard/stats":
			_, _ = w.Write([]byte(`{"general_stats":{"total_users":3},"recent_activity":{}}`))
		case "/dashboard/fields/stats":
			_, _ = w.Write([]byte(`{"fields_statistics":[{"field_id":1}],"summary":{"total_fields":1}}`))
		case "/dashboard/health-check":
			_, _ = w.Write([]byte(`{"overall_status":"healthy","services":{}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	c := New(Endpoints{BaseURL: srv.URL}, nil, nil)
	overview, err := c.Dashboard.Overview(context.Background(), "tok")
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if overview.Stats.GeneralStats.TotalUsers != 3 {
		t.Fatalf("stats not applied: %+v", overview.Stats)
	}
	if overview.FieldsStats.Summary.TotalFields != 1 {
		t.Fatalf("field stats not applied: %+v", overview.FieldsStats)
	}
	if overview.Health.OverallStatus != models.HealthHealthy {
		t.Fatalf("health not applied: %+v", overview.Health)
	}
}

func TestOverviewReturnsServerDetail(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"detail":"Not enough permissions"}`))
	})
	c := New(Endpoints{BaseURL: srv.URL}, nil, nil)
	_, err := c.Dashboard.Overview(context.Background(), "user-token")
	if Message(err) != "Not enough permissions" {
		t.Fatalf("unexpected message %q", Message(err))
	}
}
