package mockapi

import (
	"net/http"
	"strconv"
	"time"
)

const recentActivityLimit = 5

func (g *Gateway) dashboardStats(w http.ResponseWriter, _ *http.Request) {
	fields := g.store.Fields()
	reservations := g.store.Reservations(nil)
	today := g.wallNow()

	activeFields := 0
	for _, f := range fields {
		if f.IsActive {
			activeFields++
		}
	}

	var active, cancelled, todayCount int
	var revenue float64
	latest := make([]Reservation, 0, recentActivityLimit)
	latestCancelled := make([]Reservation, 0, recentActivityLimit)
	for _, r := range reservations {
		if r.active() {
			active++
			revenue += r.TotalPrice
			if len(latest) < recentActivityLimit {
				latest = append(latest, r)
			}
		} else {
			cancelled++
			if len(latestCancelled) < recentActivityLimit {
				latestCancelled = append(latestCancelled, r)
			}
		}
		if sameDay(r.StartTime.Time, today) {
			todayCount++
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"general_stats": map[string]interface{}{
			"total_users":            len(g.store.Users()),
			"total_fields":           len(fields),
			"active_fields":          activeFields,
			"total_reservations":     len(reservations),
			"active_reservations":    active,
			"cancelled_reservations": cancelled,
			"reservations_today":     todayCount,
			"total_revenue":          revenue,
		},
		"recent_activity": map[string]interface{}{
			"latest_reservations": latest,
			"latest_cancelled":    latestCancelled,
		},
		"last_updated": Stamp{g.now()},
	})
}

type adminUser struct {
	User
	Role              string  `json:"role"`
	CreatedAt         Stamp   `json:"created_at"`
	LastLogin         Stamp   `json:"last_login"`
	TotalReservations int     `json:"total_reservations"`
	TotalSpent        float64 `json:"total_spent"`
}

func (g *Gateway) roleOf(u User) string {
	if name := g.store.RoleName(u.ID); name != "" {
		return name
	}
	if u.IsAdmin {
		return "admin"
	}
	return "user"
}

func (g *Gateway) dashboardUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	role := q.Get("role")
	var activeFilter *bool
	if raw := q.Get("is_active"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			activeFilter = &v
		}
	}

	rows := make([]adminUser, 0)
	for _, u := range g.store.Users() {
		row := adminUser{User: u, Role: g.roleOf(u), CreatedAt: u.CreatedAt, LastLogin: u.LastLogin}
		if role != "" && row.Role != role {
			continue
		}
		if activeFilter != nil && u.IsActive != *activeFilter {
			continue
		}
		for _, res := range g.store.Reservations(func(res *Reservation) bool { return res.UserID == u.ID }) {
			row.TotalReservations++
			if res.active() {
				row.TotalSpent += res.TotalPrice
			}
		}
		rows = append(rows, row)
	}

	items, page := window(rows, queryInt(r, "skip", 0), queryInt(r, "limit", 20))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users": items,
		"total": len(rows),
		"page":  page,
		"size":  len(items),
	})
}

type adminReservation struct {
	Reservation
	Username  string `json:"username"`
	UserEmail string `json:"user_email"`
}

func (g *Gateway) dashboardReservations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, errFrom := time.Parse("2006-01-02", q.Get("date_from"))
	to, errTo := time.Parse("2006-01-02", q.Get("date_to"))
	keep := reservationFilter(r, 0)

	rows := make([]adminReservation, 0)
	for _, res := range g.store.Reservations(func(res *Reservation) bool {
		if !keep(res) {
			return false
		}
		if errFrom == nil && res.StartTime.Before(from) {
			return false
		}
		if errTo == nil && !res.StartTime.Before(to.AddDate(0, 0, 1)) {
			return false
		}
		return true
	}) {
		row := adminReservation{Reservation: res}
		if u, err := g.store.UserByID(res.UserID); err == nil {
			row.Username, row.UserEmail = u.Username, u.Email
		}
		rows = append(rows, row)
	}

	items, page := window(rows, queryInt(r, "skip", 0), queryInt(r, "limit", 20))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"reservations": items,
		"total":        len(rows),
		"page":         page,
		"size":         len(items),
	})
}

type fieldStats struct {
	FieldID               int64   `json:"field_id"`
	FieldName             string  `json:"field_name"`
	FieldLocation         string  `json:"field_location"`
	IsActive              bool    `json:"is_active"`
	TotalReservations     int     `json:"total_reservations"`
	ConfirmedReservations int     `json:"confirmed_reservations"`
	CancelledReservations int     `json:"cancelled_reservations"`
	WeeklyReservations    int     `json:"weekly_reservations"`
	TotalRevenue          float64 `json:"total_revenue"`
	AveragePrice          float64 `json:"average_price"`
	Capacity              int     `json:"capacity"`
}

func (g *Gateway) dashboardFieldStats(w http.ResponseWriter, _ *http.Request) {
	weekAgo := g.wallNow().AddDate(0, 0, -7)
	stats := make([]fieldStats, 0)
	var popular *fieldStats
	var activeFields int
	var revenue float64

	for _, f := range g.store.Fields() {
		s := fieldStats{
			FieldID:       f.ID,
			FieldName:     f.Name,
			FieldLocation: f.Location,
			IsActive:      f.IsActive,
			Capacity:      f.Capacity,
			AveragePrice:  f.PricePerHour,
		}
		for _, res := range g.store.Reservations(func(res *Reservation) bool { return res.FieldID == f.ID }) {
			s.TotalReservations++
			if !res.active() {
				s.CancelledReservations++
				continue
			}
			s.ConfirmedReservations++
			s.TotalRevenue += res.TotalPrice
			if !res.CreatedAt.Before(weekAgo) {
				s.WeeklyReservations++
			}
		}
		if f.IsActive {
			activeFields++
		}
		revenue += s.TotalRevenue
		stats = append(stats, s)
	}
	for i := range stats {
		if stats[i].TotalReservations > 0 && (popular == nil || stats[i].TotalReservations > popular.TotalReservations) {
			popular = &stats[i]
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fields_statistics": stats,
		"summary": map[string]interface{}{
			"total_fields":       len(stats),
			"active_fields":      activeFields,
			"total_revenue":      revenue,
			"most_popular_field": popular,
		},
	})
}

func (g *Gateway) dashboardDailyRevenue(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)
	if days <= 0 {
		days = 30
	}
	today := g.wallNow()
	since := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -(days - 1))

	daily := make(map[string]float64, days)
	for i := 0; i < days; i++ {
		daily[since.AddDate(0, 0, i).Format("2006-01-02")] = 0
	}
	var total float64
	for _, res := range g.store.Reservations(func(res *Reservation) bool {
		return res.active() && !res.StartTime.Before(since)
	}) {
		key := res.StartTime.Format("2006-01-02")
		if _, ok := daily[key]; !ok {
			continue
		}
		daily[key] += res.TotalPrice
		total += res.TotalPrice
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"daily_revenue":        daily,
		"period_days":          days,
		"total_period_revenue": total,
	})
}

func (g *Gateway) dashboardHealth(w http.ResponseWriter, _ *http.Request) {
	services := make(map[string]interface{})
	for _, name := range []string{"auth", "fields", "reservations", "roles"} {
		services[name] = map[string]interface{}{
			"status":        "healthy",
			"response_time": 0.0,
			"status_code":   http.StatusOK,
		}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"overall_status": "healthy",
		"services":       services,
		"checked_at":     Stamp{g.now()},
	})
}
