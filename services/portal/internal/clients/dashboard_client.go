package clients

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"fieldbook/services/portal/internal/models"
)

// AdminUserFilter narrows /dashboard/users. Page is 1-based; Limit defaults to 20.
type AdminUserFilter struct {
	Page     int
	Limit    int
	Role     string
	IsActive *bool
}

// AdminReservationFilter narrows /dashboard/reservations. Dates are YYYY-MM-DD.
type AdminReservationFilter struct {
	Page     int
	Limit    int
	Status   string
	FieldID  int64
	DateFrom string
	DateTo   string
}

// Overview is the admin landing page data, fetched concurrently.
type Overview struct {
	Stats       *models.DashboardStats      `json:"stats" yaml:"stats"`
	FieldsStats *models.FieldStatsResponse  `json:"fields_stats" yaml:"fields_stats"`
	Health      *models.HealthCheckResponse `json:"health" yaml:"health"`
}

// DashboardClient talks to the dashboard service (admin only).
type DashboardClient struct {
	base *BaseClient
}

// NewDashboardClient returns client.
func NewDashboardClient(baseURL string, httpClient HTTPDoer, logger *zap.Logger) *DashboardClient {
	return &DashboardClient{base: NewBaseClient(ServiceDashboard, baseURL, httpClient, logger)}
}

// Stats returns headline counters and recent activity.
func (c *DashboardClient) Stats(ctx context.Context, token string) (*models.DashboardStats, error) {
	var stats models.DashboardStats
	if err := c.base.DoJSON(ctx, http.MethodGet, "/dashboard/stats", token, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Users returns accounts enriched with reservation totals.
func (c *DashboardClient) Users(ctx context.Context, filter AdminUserFilter, token string) (*models.AdminUsersPage, error) {
	page, limit := normalizePage(filter.Page, filter.Limit, 20)
	query := url.Values{
		"skip":  {strconv.Itoa((page - 1) * limit)},
		"limit": {strconv.Itoa(limit)},
	}
	if filter.Role != "" {
		query.Set("role", filter.Role)
	}
	if filter.IsActive != nil {
		query.Set("is_active", strconv.FormatBool(*filter.IsActive))
	}
	var result models.AdminUsersPage
	if err := c.base.DoJSON(ctx, http.MethodGet, "/dashboard/users?"+query.Encode(), token, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Reservations returns reservations enriched with user data.
func (c *DashboardClient) Reservations(ctx context.Context, filter AdminReservationFilter, token string) (*models.AdminReservationsPage, error) {
	page, limit := normalizePage(filter.Page, filter.Limit, 20)
	query := url.Values{
		"skip":  {strconv.Itoa((page - 1) * limit)},
		"limit": {strconv.Itoa(limit)},
	}
	if filter.Status != "" && filter.Status != "all" {
		query.Set("status", filter.Status)
	}
	if filter.FieldID > 0 {
		query.Set("field_id", strconv.FormatInt(filter.FieldID, 10))
	}
	if filter.DateFrom != "" {
		query.Set("date_from", filter.DateFrom)
	}
	if filter.DateTo != "" {
		query.Set("date_to", filter.DateTo)
	}
	var result models.AdminReservationsPage
	if err := c.base.DoJSON(ctx, http.MethodGet, "/dashboard/reservations?"+query.Encode(), token, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// FieldsStats returns per-field aggregates.
func (c *DashboardClient) FieldsStats(ctx context.Context, token string) (*models.FieldStatsResponse, error) {
	var stats models.FieldStatsResponse
	if err := c.base.DoJSON(ctx, http.MethodGet, "/dashboard/fields/stats", token, nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// DailyRevenue returns revenue per day over the last days days (default 30).
func (c *DashboardClient) DailyRevenue(ctx context.Context, days int, token string) (*models.DailyRevenue, error) {
	if days <= 0 {
		days = 30
	}
	query := url.Values{"days": {strconv.Itoa(days)}}
	var revenue models.DailyRevenue
	if err := c.base.DoJSON(ctx, http.MethodGet, "/dashboard/revenue/daily?"+query.Encode(), token, nil, &revenue); err != nil {
		return nil, err
	}
	return &revenue, nil
}

// HealthCheck returns the health of every backend service as seen by the dashboard.
func (c *DashboardClient) HealthCheck(ctx context.Context, token string) (*models.HealthCheckResponse, error) {
	var health models.HealthCheckResponse
	if err := c.base.DoJSON(ctx, http.MethodGet, "/dashboard/health-check", token, nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Overview fetches stats, field stats and health concurrently. The three calls are
// independent; the first failure is returned once all of them have finished.
func (c *DashboardClient) Overview(ctx context.Context, token string) (*Overview, error) {
	var overview Overview
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := c.Stats(gctx, token)
		overview.Stats = stats
		return err
	})
	g.Go(func() error {
		stats, err := c.FieldsStats(gctx, token)
		overview.FieldsStats = stats
		return err
	})
	g.Go(func() error {
		health, err := c.HealthCheck(gctx, token)
		overview.Health = health
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &overview, nil
}
