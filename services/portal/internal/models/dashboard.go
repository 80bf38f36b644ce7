package models

// GeneralStats headline counters of the admin dashboard.
type GeneralStats struct {
	TotalUsers            int     `json:"total_users" yaml:"total_users"`
	TotalFields           int     `json:"total_fields" yaml:"total_fields"`
	ActiveFields          int     `json:"active_fields" yaml:"active_fields"`
	TotalReservations     int     `json:"total_reservations" yaml:"total_reservations"`
	ActiveReservations    int     `json:"active_reservations" yaml:"active_reservations"`
	CancelledReservations int     `json:"cancelled_reservations" yaml:"cancelled_reservations"`
	ReservationsToday     int     `json:"reservations_today" yaml:"reservations_today"`
	TotalRevenue          float64 `json:"total_revenue" yaml:"total_revenue"`
}

// RecentActivity latest reservations and cancellations.
type RecentActivity struct {
	LatestReservations []Reservation `json:"latest_reservations" yaml:"latest_reservations"`
	LatestCancelled    []Reservation `json:"latest_cancelled" yaml:"latest_cancelled"`
}

// DashboardStats is GET /dashboard/stats.
type DashboardStats struct {
	GeneralStats   GeneralStats   `json:"general_stats" yaml:"general_stats"`
	RecentActivity RecentActivity `json:"recent_activity" yaml:"recent_activity"`
	LastUpdated    Timestamp      `json:"last_updated" yaml:"last_updated"`
}

// FieldStats per-field aggregates.
type FieldStats struct {
	FieldID               int64   `json:"field_id" yaml:"field_id"`
	FieldName             string  `json:"field_name" yaml:"field_name"`
	FieldLocation         string  `json:"field_location" yaml:"field_location"`
	IsActive              bool    `json:"is_active" yaml:"is_active"`
	TotalReservations     int     `json:"total_reservations" yaml:"total_reservations"`
	ConfirmedReservations int     `json:"confirmed_reservations" yaml:"confirmed_reservations"`
	CancelledReservations int     `json:"cancelled_reservations" yaml:"cancelled_reservations"`
	WeeklyReservations    int     `json:"weekly_reservations" yaml:"weekly_reservations"`
	TotalRevenue          float64 `json:"total_revenue" yaml:"total_revenue"`
	AveragePrice          float64 `json:"average_price" yaml:"average_price"`
	Capacity              int     `json:"capacity" yaml:"capacity"`
}

// FieldStatsSummary totals across fields.
type FieldStatsSummary struct {
	TotalFields      int         `json:"total_fields" yaml:"total_fields"`
	ActiveFields     int         `json:"active_fields" yaml:"active_fields"`
	TotalRevenue     float64     `json:"total_revenue" yaml:"total_revenue"`
	MostPopularField *FieldStats `json:"most_popular_field,omitempty" yaml:"most_popular_field,omitempty"`
}

// FieldStatsResponse is GET /dashboard/fields/stats.
type FieldStatsResponse struct {
	FieldsStatistics []FieldStats      `json:"fields_statistics" yaml:"fields_statistics"`
	Summary          FieldStatsSummary `json:"summary" yaml:"summary"`
}

// DailyRevenue is GET /dashboard/revenue/daily; keys of DailyRevenue are YYYY-MM-DD.
type DailyRevenue struct {
	DailyRevenue       map[string]float64 `json:"daily_revenue" yaml:"daily_revenue"`
	PeriodDays         int                `json:"period_days" yaml:"period_days"`
	TotalPeriodRevenue float64            `json:"total_period_revenue" yaml:"total_period_revenue"`
}

// Health states reported by the dashboard health check.
const (
	HealthHealthy   = "healthy"
	HealthUnhealthy = "unhealthy"
	HealthDegraded  = "degraded"
)

// ServiceHealth result for one upstream service.
type ServiceHealth struct {
	Status       string  `json:"status" yaml:"status"`
	ResponseTime float64 `json:"response_time" yaml:"response_time"`
	StatusCode   int     `json:"status_code" yaml:"status_code"`
}

// HealthCheckResponse is GET /dashboard/health-check.
type HealthCheckResponse struct {
	OverallStatus string                   `json:"overall_status" yaml:"overall_status"`
	Services      map[string]ServiceHealth `json:"services" yaml:"services"`
	CheckedAt     Timestamp                `json:"checked_at" yaml:"checked_at"`
}

// Health is GET /health of the gateway.
type Health struct {
	Status string `json:"status" yaml:"status"`
}
