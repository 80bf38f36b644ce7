package mockapi

import (
	"strings"
	"time"
)

// TimeLayout is the zone-less timestamp layout of the reservation API.
const TimeLayout = "2006-01-02T15:04:05"

// Reservation states.
const (
	StatusConfirmed = "confirmada"
	StatusCancelled = "cancelada"
	StatusPending   = "pendiente"
	StatusCompleted = "completada"
)

// Stamp is a time rendered in TimeLayout; the zero value is null.
type Stamp struct {
	time.Time
}

// MarshalJSON implements json.Marshaler.
func (s Stamp) MarshalJSON() ([]byte, error) {
	if s.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + s.Format(TimeLayout) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Stamp) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(data), `"`)
	if raw == "null" || raw == "" {
		s.Time = time.Time{}
		return nil
	}
	t, err := parseStamp(raw)
	if err != nil {
		return err
	}
	s.Time = t
	return nil
}

// parseStamp accepts TimeLayout, its minute precision form and RFC 3339.
func parseStamp(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range []string{TimeLayout, "2006-01-02T15:04", time.RFC3339Nano} {
		if t, err := time.Parse(layout, raw); err == nil {
			if layout == time.RFC3339Nano {
				t = t.UTC()
			}
			return t, nil
		}
	}
	return time.Parse(TimeLayout, raw)
}

// User account record.
type User struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	IsActive     bool   `json:"is_active"`
	IsAdmin      bool   `json:"is_admin"`
	PasswordHash string `json:"-"`
	CreatedAt    Stamp  `json:"-"`
	LastLogin    Stamp  `json:"-"`
}

// Field record.
type Field struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Location     string  `json:"location"`
	Capacity     int     `json:"capacity"`
	PricePerHour float64 `json:"price_per_hour"`
	Description  string  `json:"description,omitempty"`
	OpeningTime  string  `json:"opening_time"`
	ClosingTime  string  `json:"closing_time"`
	IsActive     bool    `json:"is_active"`
	CreatedAt    Stamp   `json:"created_at"`
	UpdatedAt    Stamp   `json:"updated_at"`
}

// Reservation record.
type Reservation struct {
	ID            int64   `json:"id"`
	FieldID       int64   `json:"field_id"`
	UserID        int64   `json:"user_id"`
	StartTime     Stamp   `json:"start_time"`
	EndTime       Stamp   `json:"end_time"`
	DurationHours int     `json:"duration_hours"`
	Notes         string  `json:"notes,omitempty"`
	FieldName     string  `json:"field_name"`
	FieldLocation string  `json:"field_location"`
	TotalPrice    float64 `json:"total_price"`
	Status        string  `json:"status"`
	CreatedAt     Stamp   `json:"created_at"`
	UpdatedAt     Stamp   `json:"updated_at"`
	CancelledAt   *Stamp  `json:"cancelled_at,omitempty"`
	CancelledBy   *int64  `json:"cancelled_by,omitempty"`
	CancelReason  string  `json:"-"`
}

// active reports whether the reservation still holds its slot.
func (r *Reservation) active() bool {
	return r.Status != StatusCancelled
}

func (r *Reservation) overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && start.Before(r.EndTime.Time)
}

// Role record.
type Role struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

// Permission record.
type Permission struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	IsActive    bool   `json:"is_active"`
}
