package clients

import (
	"context"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"fieldbook/services/portal/internal/models"
)

// Logical backend services.
const (
	ServiceAuth         = "auth"
	ServiceFields       = "fields"
	ServiceReservations = "reservations"
	ServiceRoles        = "roles"
	ServiceDashboard    = "dashboard"
	ServiceGateway      = "gateway"
)

// BackendUnavailable is the status Health reports when the gateway cannot be reached.
const BackendUnavailable = "Backend not available"

// Endpoints holds the base URL of every service. Empty service URLs fall back to BaseURL.
type Endpoints struct {
	BaseURL         string
	AuthURL         string
	FieldsURL       string
	ReservationsURL string
	RolesURL        string
	DashboardURL    string
}

// Resolve fills empty service URLs with BaseURL.
func (e Endpoints) Resolve() Endpoints {
	pick := func(v string) string {
		if strings.TrimSpace(v) == "" {
			return e.BaseURL
		}
		return v
	}
	return Endpoints{
		BaseURL:         e.BaseURL,
		AuthURL:         pick(e.AuthURL),
		FieldsURL:       pick(e.FieldsURL),
		ReservationsURL: pick(e.ReservationsURL),
		RolesURL:        pick(e.RolesURL),
		DashboardURL:    pick(e.DashboardURL),
	}
}

// Client groups the typed service clients.
type Client struct {
	Auth         *AuthClient
	Fields       *FieldsClient
	Reservations *ReservationsClient
	Roles        *RolesClient
	Dashboard    *DashboardClient

	gateway *BaseClient
	logger  *zap.Logger
}

// New builds every service client over a shared HTTP client.
func New(endpoints Endpoints, httpClient HTTPDoer, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	resolved := endpoints.Resolve()
	return &Client{
		Auth:         NewAuthClient(resolved.AuthURL, httpClient, logger),
		Fields:       NewFieldsClient(resolved.FieldsURL, httpClient, logger),
		Reservations: NewReservationsClient(resolved.ReservationsURL, httpClient, logger),
		Roles:        NewRolesClient(resolved.RolesURL, httpClient, logger),
		Dashboard:    NewDashboardClient(resolved.DashboardURL, httpClient, logger),
		gateway:      NewBaseClient(ServiceGateway, resolved.BaseURL, httpClient, logger),
		logger:       logger,
	}
}

// Health probes the gateway. It never fails: an unreachable or unhealthy gateway is reported
// through the returned status.
func (c *Client) Health(ctx context.Context) models.Health {
	var health models.Health
	if err := c.gateway.DoJSON(ctx, http.MethodGet, "/health", "", nil, &health); err != nil {
		c.logger.Warn("health check failed", zap.Error(err))
		return models.Health{Status: BackendUnavailable}
	}
	return health
}
