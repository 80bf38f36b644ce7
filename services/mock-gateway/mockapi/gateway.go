// Package mockapi serves an in-memory rendition of the reservation platform's auth, fields,
// reservations, roles and dashboard services behind one address.
package mockapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"fieldbook/services/mock-gateway/password"
)

// Options configure a Gateway.
type Options struct {
	Secret         string
	TokenTTL       time.Duration
	BcryptCost     int
	AdminEmail     string
	AdminPassword  string
	SeedFields     bool
	AllowedOrigins []string
	Logger         *zap.Logger
	Now            func() time.Time
}

// Gateway owns the store and serves the HTTP API.
type Gateway struct {
	store   *Store
	hasher  password.Hasher
	tokens  *TokenService
	logger  *zap.Logger
	now     func() time.Time
	origins []string
}

// New builds a gateway and seeds the optional administrator and demo fields.
func New(opts Options) (*Gateway, error) {
	if strings.TrimSpace(opts.Secret) == "" {
		return nil, errors.New("mockapi: jwt secret required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	g := &Gateway{
		store:   NewStore(),
		hasher:  password.NewBcryptHasher(opts.BcryptCost),
		tokens:  NewTokenService(opts.Secret, opts.TokenTTL, now),
		logger:  logger,
		now:     now,
		origins: opts.AllowedOrigins,
	}

	if opts.AdminEmail != "" {
		if _, err := g.register("admin", opts.AdminEmail, opts.AdminPassword, true); err != nil {
			return nil, err
		}
		logger.Info("seeded administrator", zap.String("email", opts.AdminEmail))
	}
	if opts.SeedFields {
		g.seedFields()
	}
	return g, nil
}

// Store exposes the backing store.
func (g *Gateway) Store() *Store {
	return g.store
}

func (g *Gateway) register(username, email, plain string, admin bool) (User, error) {
	hash, err := g.hasher.Hash(plain)
	if err != nil {
		return User{}, err
	}
	return g.store.CreateUser(User{
		Username:     username,
		Email:        email,
		IsActive:     true,
		IsAdmin:      admin,
		PasswordHash: hash,
		CreatedAt:    Stamp{g.now()},
	})
}

func (g *Gateway) seedFields() {
	now := Stamp{g.now()}
	for _, f := range []Field{
		{Name: "Cancha Central", Location: "Sede Norte", Capacity: 22, PricePerHour: 50000, OpeningTime: "08:00", ClosingTime: "22:00"},
		{Name: "Cancha Sintética 5", Location: "Sede Sur", Capacity: 10, PricePerHour: 35000, OpeningTime: "06:00", ClosingTime: "23:00"},
	} {
		f.IsActive = true
		f.CreatedAt, f.UpdatedAt = now, now
		g.store.CreateField(f)
	}
}

// Handler returns the routed API wrapped with CORS, logging and panic recovery.
func (g *Gateway) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(g.identify)

	r.HandleFunc("/health", g.health).Methods(http.MethodGet)

	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register", g.signup).Methods(http.MethodPost)
	auth.HandleFunc("/login", g.login).Methods(http.MethodPost)
	auth.HandleFunc("/password-recovery", g.recoverPassword).Methods(http.MethodPost)
	auth.HandleFunc("/me", requireUser(g.me)).Methods(http.MethodGet)
	auth.HandleFunc("/profile", requireUser(g.updateProfile)).Methods(http.MethodPatch)
	auth.HandleFunc("/register-admin", requireAdmin(g.registerAdmin)).Methods(http.MethodPost)
	auth.HandleFunc("/users", requireAdmin(g.listUsers)).Methods(http.MethodGet)

	fields := r.PathPrefix("/fields").Subrouter()
	fields.HandleFunc("/", g.listFields).Methods(http.MethodGet)
	fields.HandleFunc("/", requireAdmin(g.createField)).Methods(http.MethodPost)
	fields.HandleFunc("/{id:[0-9]+}", g.getField).Methods(http.MethodGet)
	fields.HandleFunc("/{id:[0-9]+}", requireAdmin(g.updateField)).Methods(http.MethodPut)
	fields.HandleFunc("/{id:[0-9]+}", requireAdmin(g.deleteField)).Methods(http.MethodDelete)
	fields.HandleFunc("/{id:[0-9]+}/availability", g.fieldAvailability).Methods(http.MethodGet)

	res := r.PathPrefix("/reservations").Subrouter()
	res.HandleFunc("/", requireUser(g.listReservations)).Methods(http.MethodGet)
	res.HandleFunc("/", requireUser(g.createReservation)).Methods(http.MethodPost)
	res.HandleFunc("/my", requireUser(g.myReservations)).Methods(http.MethodGet)
	res.HandleFunc("/availability", requireUser(g.checkAvailability)).Methods(http.MethodGet)
	res.HandleFunc("/field/{id:[0-9]+}/date/{date}", g.reservationsForFieldOnDate).Methods(http.MethodGet)
	res.HandleFunc("/{id:[0-9]+}", requireUser(g.getReservation)).Methods(http.MethodGet)
	res.HandleFunc("/{id:[0-9]+}", requireUser(g.updateReservation)).Methods(http.MethodPut)
	res.HandleFunc("/{id:[0-9]+}/cancel", requireUser(g.cancelReservation)).Methods(http.MethodPost)

	roles := r.PathPrefix("/roles").Subrouter()
	roles.HandleFunc("/roles", requireAdmin(g.createRole)).Methods(http.MethodPost)
	roles.HandleFunc("/permissions", requireAdmin(g.createPermission)).Methods(http.MethodPost)
	roles.HandleFunc("/users/{id:[0-9]+}/assign-role", requireAdmin(g.assignRole)).Methods(http.MethodPost)
	roles.HandleFunc("/roles/{id:[0-9]+}/permissions", requireAdmin(g.assignPermission)).Methods(http.MethodPost)
	roles.HandleFunc("/validate-permission", requireUser(g.validatePermission)).Methods(http.MethodPost)

	dash := r.PathPrefix("/dashboard").Subrouter()
	dash.HandleFunc("/stats", requireAdmin(g.dashboardStats)).Methods(http.MethodGet)
	dash.HandleFunc("/users", requireAdmin(g.dashboardUsers)).Methods(http.MethodGet)
	dash.HandleFunc("/reservations", requireAdmin(g.dashboardReservations)).Methods(http.MethodGet)
	dash.HandleFunc("/fields/stats", requireAdmin(g.dashboardFieldStats)).Methods(http.MethodGet)
	dash.HandleFunc("/revenue/daily", requireAdmin(g.dashboardDailyRevenue)).Methods(http.MethodGet)
	dash.HandleFunc("/health-check", requireAdmin(g.dashboardHealth)).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeDetail(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})

	origins := g.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
	})

	return Chain(c.Handler(r), RecoveryMiddleware(g.logger), LoggingMiddleware(g.logger))
}

func (g *Gateway) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
