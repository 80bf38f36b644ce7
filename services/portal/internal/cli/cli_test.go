package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"fieldbook/services/mock-gateway/mockapi"
	"fieldbook/services/portal/internal/clients"
	"fieldbook/services/portal/internal/models"
)

func startGateway(t *testing.T) *httptest.Server {
	t.Helper()
	gateway, err := mockapi.New(mockapi.Options{
		Secret:        "cli-test-secret",
		BcryptCost:    bcrypt.MinCost,
		AdminEmail:    "admin@fieldbook.test",
		AdminPassword: "admin-pass",
		SeedFields:    true,
		Now:           func() time.Time { return time.Date(2030, time.March, 10, 9, 0, 0, 0, time.UTC) },
	})
	if err != nil {
		t.Fatalf("mock gateway: %v", err)
	}
	srv := httptest.NewServer(gateway.Handler())
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	testChdir(t, dir)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("DOTENV_FILE", "")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("FIELDBOOK_API_URL", srv.URL)
	t.Setenv("FIELDBOOK_SESSION_DRIVER", "file")
	t.Setenv("FIELDBOOK_SESSION_FILE", filepath.Join(dir, "session.yaml"))
	t.Setenv("FIELDBOOK_RESTORE_POLICY", "optimistic")
	return srv
}

func runCLI(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := Run(context.Background(), args, strings.NewReader(stdin), &out)
	return out.String(), err
}

func mustRun(t *testing.T, stdin string, args ...string) string {
	t.Helper()
	out, err := runCLI(t, stdin, args...)
	if err != nil {
		t.Fatalf("fieldbook %s: %s", strings.Join(args, " "), clients.Message(err))
	}
	return out
}

func decodeOutput(t *testing.T, out string, v interface{}) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("decode output %q: %v", out, err)
	}
}

func TestSignupLoginWhoamiLogout(t *testing.T) {
	startGateway(t)

	var registered models.User
	decodeOutput(t, mustRun(t, "", "signup", "--email", "a@b.com", "--username", "ana", "--password", "secret"), &registered)
	if registered.Email != "a@b.com" || registered.Username != "ana" {
		t.Fatalf("unexpected registered user %+v", registered)
	}

	// Signup does not log in.
	if _, err := runCLI(t, "", "whoami"); !errors.Is(err, errNotLoggedIn) {
		t.Fatalf("expected errNotLoggedIn after signup, got %v", err)
	}

	var user models.User
	decodeOutput(t, mustRun(t, "secret\n", "login", "--email", "a@b.com"), &user)
	if user.Email != "a@b.com" {
		t.Fatalf("login returned %+v", user)
	}

	decodeOutput(t, mustRun(t, "", "whoami"), &user)
	if user.Email != "a@b.com" {
		t.Fatalf("persisted session returned %+v", user)
	}
	decodeOutput(t, mustRun(t, "", "whoami", "--remote"), &user)
	if user.Email != "a@b.com" {
		t.Fatalf("remote whoami returned %+v", user)
	}

	out := mustRun(t, "", "-o", "yaml", "whoami")
	if !strings.Contains(out, "email: a@b.com") {
		t.Fatalf("yaml output missing email: %q", out)
	}

	mustRun(t, "", "logout")
	if _, err := runCLI(t, "", "whoami"); !errors.Is(err, errNotLoggedIn) {
		t.Fatalf("expected errNotLoggedIn after logout, got %v", err)
	}
}

func TestLoginFailureReportsServerDetail(t *testing.T) {
	startGateway(t)
	mustRun(t, "", "signup", "--email", "a@b.com", "--username", "ana", "--password", "secret")

	_, err := runCLI(t, "", "login", "--email", "a@b.com", "--password", "wrong")
	if err == nil {
		t.Fatalf("expected login failure")
	}
	if got := clients.Message(err); got != "Incorrect email or password" {
		t.Fatalf("message = %q", got)
	}
	if _, err := runCLI(t, "", "whoami"); !errors.Is(err, errNotLoggedIn) {
		t.Fatalf("failed login must not create a session, got %v", err)
	}
}

func TestNonAdminSeesPermissionDetail(t *testing.T) {
	startGateway(t)
	mustRun(t, "", "signup", "--email", "a@b.com", "--username", "ana", "--password", "secret")
	mustRun(t, "", "login", "--email", "a@b.com", "--password", "secret")

	for _, args := range [][]string{
		{"admin", "stats"},
		{"admin", "overview"},
		{"roles", "create", "--name", "staff"},
	} {
		_, err := runCLI(t, "", args...)
		if got := clients.Message(err); got != "Not enough permissions" {
			t.Fatalf("%v: message = %q", args, got)
		}
	}
}

func TestCommandsRequireSession(t *testing.T) {
	startGateway(t)
	for _, args := range [][]string{
		{"fields", "list"},
		{"reservations", "mine"},
		{"admin", "users"},
	} {
		if _, err := runCLI(t, "", args...); !errors.Is(err, errNotLoggedIn) {
			t.Fatalf("%v: expected errNotLoggedIn, got %v", args, err)
		}
	}
}

func TestReservationCommands(t *testing.T) {
	startGateway(t)
	mustRun(t, "", "signup", "--email", "a@b.com", "--username", "ana", "--password", "secret")
	mustRun(t, "", "login", "--email", "a@b.com", "--password", "secret")

	var fields models.FieldsPage
	decodeOutput(t, mustRun(t, "", "fields", "list"), &fields)
	if len(fields.Fields) == 0 {
		t.Fatalf("expected seeded fields")
	}
	fieldID := strconv.FormatInt(fields.Fields[0].ID, 10)

	var free models.Availability
	decodeOutput(t, mustRun(t, "", "reservations", "check", "--field", fieldID, "--date", "2030-03-11", "--start", "10:00", "--hours", "2"), &free)
	if !free.Available {
		t.Fatalf("slot should be free")
	}

	var created models.Reservation
	decodeOutput(t, mustRun(t, "", "reservations", "create", "--field", fieldID, "--start", "2030-03-11T10:00", "--hours", "2", "--notes", "amistoso"), &created)
	if created.Status != models.StatusConfirmed || created.DurationHours != 2 || created.TotalPrice != 2*fields.Fields[0].PricePerHour {
		t.Fatalf("unexpected reservation %+v", created)
	}
	if created.EndTime.String() != "2030-03-11T12:00:00" {
		t.Fatalf("end time = %s", created.EndTime)
	}
	id := strconv.FormatInt(created.ID, 10)

	_, err := runCLI(t, "", "reservations", "create", "--field", fieldID, "--start", "2030-03-11T11:00")
	if got := clients.Message(err); got != "The field is already booked for the requested time" {
		t.Fatalf("overlap message = %q", got)
	}

	var mine models.ReservationsPage
	decodeOutput(t, mustRun(t, "", "reservations", "mine", "--status", "all"), &mine)
	if mine.Total != 1 || mine.Reservations[0].ID != created.ID {
		t.Fatalf("unexpected mine page %+v", mine)
	}

	var day []models.Reservation
	decodeOutput(t, mustRun(t, "", "reservations", "by-field", fieldID, "--date", "2030-03-11"), &day)
	if len(day) != 1 {
		t.Fatalf("expected one reservation on the day, got %d", len(day))
	}

	var cancelled models.Reservation
	decodeOutput(t, mustRun(t, "", "reservations", "cancel", id, "--reason", "lluvia"), &cancelled)
	if cancelled.Status != models.StatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("unexpected cancelled reservation %+v", cancelled)
	}

	out := mustRun(t, "", "--output", "yaml", "reservations", "get", id)
	if !strings.Contains(out, "status: cancelada") {
		t.Fatalf("yaml output missing status: %q", out)
	}

	var avail models.FieldAvailability
	decodeOutput(t, mustRun(t, "", "fields", "availability", fieldID, "--date", "2030-03-11"), &avail)
	found := false
	for _, h := range avail.AvailableHours {
		if h == "10:00" {
			found = true
		}
	}
	if !found {
		t.Fatalf("cancelled slot not released: %v", avail.AvailableHours)
	}
}

func TestAdminCommands(t *testing.T) {
	startGateway(t)
	mustRun(t, "admin-pass\n", "login", "--email", "admin@fieldbook.test")

	var field models.Field
	decodeOutput(t, mustRun(t, "", "fields", "create", "--name", "Cancha 9", "--location", "Centro", "--price", "30000"), &field)
	if field.ID == 0 || !field.IsActive || field.OpeningTime != "08:00" {
		t.Fatalf("unexpected field %+v", field)
	}
	fieldID := strconv.FormatInt(field.ID, 10)

	decodeOutput(t, mustRun(t, "", "fields", "update", fieldID, "--price", "32000"), &field)
	if field.PricePerHour != 32000 || field.Name != "Cancha 9" {
		t.Fatalf("partial update changed more than the price: %+v", field)
	}

	var overview clients.Overview
	decodeOutput(t, mustRun(t, "", "admin", "overview"), &overview)
	if overview.Stats == nil || overview.FieldsStats == nil || overview.Health == nil {
		t.Fatalf("overview incomplete %+v", overview)
	}
	if overview.Stats.GeneralStats.TotalFields != 3 || overview.Health.OverallStatus != models.HealthHealthy {
		t.Fatalf("unexpected overview %+v %+v", overview.Stats.GeneralStats, overview.Health)
	}

	var admin models.User
	decodeOutput(t, mustRun(t, "other-pass\n", "admin", "register", "--username", "boss", "--email", "boss@fieldbook.test"), &admin)
	if !admin.IsAdmin {
		t.Fatalf("registered administrator lacks admin flag: %+v", admin)
	}

	var users models.AdminUsersPage
	decodeOutput(t, mustRun(t, "", "admin", "users", "--role", "admin"), &users)
	if users.Total != 2 {
		t.Fatalf("expected two administrators, got %+v", users)
	}

	var revenue models.DailyRevenue
	decodeOutput(t, mustRun(t, "", "admin", "revenue", "--days", "7"), &revenue)
	if revenue.PeriodDays != 7 {
		t.Fatalf("unexpected revenue %+v", revenue)
	}

	var msg models.Message
	decodeOutput(t, mustRun(t, "", "fields", "delete", fieldID), &msg)
	if msg.Message == "" {
		t.Fatalf("delete returned no message")
	}
}

func TestHealthFallsBackWhenBackendIsDown(t *testing.T) {
	srv := startGateway(t)

	var health models.Health
	decodeOutput(t, mustRun(t, "", "health"), &health)
	if health.Status != "healthy" {
		t.Fatalf("status = %q", health.Status)
	}

	url := srv.URL
	srv.Close()
	decodeOutput(t, mustRun(t, "", "--api-url", url, "health"), &health)
	if health.Status != clients.BackendUnavailable {
		t.Fatalf("status = %q", health.Status)
	}
}

func TestRejectsUnknownOutputFormat(t *testing.T) {
	startGateway(t)
	if _, err := runCLI(t, "", "-o", "xml", "health"); err == nil {
		t.Fatalf("expected error for unknown output format")
	}
}
