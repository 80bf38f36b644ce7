package models

// ReservationStatus is owned by the server; the client only displays and filters on it.
type ReservationStatus string

const (
	StatusConfirmed ReservationStatus = "confirmada"
	StatusCancelled ReservationStatus = "cancelada"
	StatusPending   ReservationStatus = "pendiente"
	StatusCompleted ReservationStatus = "completada"
)

// Valid reports whether s is one of the known statuses.
func (s ReservationStatus) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusPending, StatusCompleted:
		return true
	}
	return false
}

// UserRef is the embedded user summary some reservation payloads carry.
type UserRef struct {
	ID       int64  `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email" yaml:"email"`
}

// Reservation of a field by a user.
type Reservation struct {
	ID            int64             `json:"id" yaml:"id"`
	FieldID       int64             `json:"field_id" yaml:"field_id"`
	UserID        int64             `json:"user_id" yaml:"user_id"`
	StartTime     Timestamp         `json:"start_time" yaml:"start_time"`
	EndTime       Timestamp         `json:"end_time" yaml:"end_time"`
	DurationHours int               `json:"duration_hours" yaml:"duration_hours"`
	Notes         string            `json:"notes,omitempty" yaml:"notes,omitempty"`
	FieldName     string            `json:"field_name" yaml:"field_name"`
	FieldLocation string            `json:"field_location" yaml:"field_location"`
	TotalPrice    float64           `json:"total_price" yaml:"total_price"`
	Status        ReservationStatus `json:"status" yaml:"status"`
	CreatedAt     Timestamp         `json:"created_at" yaml:"created_at"`
	UpdatedAt     Timestamp         `json:"updated_at" yaml:"updated_at"`
	CancelledAt   *Timestamp        `json:"cancelled_at,omitempty" yaml:"cancelled_at,omitempty"`
	CancelledBy   *int64            `json:"cancelled_by,omitempty" yaml:"cancelled_by,omitempty"`
	Field         *Field            `json:"field,omitempty" yaml:"field,omitempty"`
	User          *UserRef          `json:"user,omitempty" yaml:"user,omitempty"`
}

// ReservationCreateRequest body of POST /reservations/.
type ReservationCreateRequest struct {
	FieldID       int64     `json:"field_id"`
	StartTime     Timestamp `json:"start_time"`
	DurationHours int       `json:"duration_hours"`
	Notes         string    `json:"notes,omitempty"`
}

// ReservationUpdateRequest body of PUT /reservations/{id}.
type ReservationUpdateRequest struct {
	FieldID       *int64     `json:"field_id,omitempty"`
	StartTime     *Timestamp `json:"start_time,omitempty"`
	DurationHours *int       `json:"duration_hours,omitempty"`
	Notes         *string    `json:"notes,omitempty"`
}

// CancelRequest body of POST /reservations/{id}/cancel.
type CancelRequest struct {
	Reason string `json:"reason"`
}

// ReservationsPage is the paginated reservations listing.
type ReservationsPage struct {
	Reservations []Reservation `json:"reservations" yaml:"reservations"`
	Total        int           `json:"total" yaml:"total"`
	Page         int           `json:"page" yaml:"page"`
	Size         int           `json:"size" yaml:"size"`
}

// Availability answers /reservations/availability.
type Availability struct {
	Available bool `json:"available" yaml:"available"`
}

// AdminReservation is a reservation row enriched with user data for the admin dashboard.
type AdminReservation struct {
	ID            int64             `json:"id" yaml:"id"`
	FieldID       int64             `json:"field_id" yaml:"field_id"`
	FieldName     string            `json:"field_name" yaml:"field_name"`
	FieldLocation string            `json:"field_location" yaml:"field_location"`
	UserID        int64             `json:"user_id" yaml:"user_id"`
	Username      string            `json:"username" yaml:"username"`
	UserEmail     string            `json:"user_email" yaml:"user_email"`
	StartTime     Timestamp         `json:"start_time" yaml:"start_time"`
	EndTime       Timestamp         `json:"end_time" yaml:"end_time"`
	DurationHours int               `json:"duration_hours" yaml:"duration_hours"`
	Status        ReservationStatus `json:"status" yaml:"status"`
	TotalPrice    float64           `json:"total_price" yaml:"total_price"`
	Notes         string            `json:"notes,omitempty" yaml:"notes,omitempty"`
	CreatedAt     Timestamp         `json:"created_at" yaml:"created_at"`
	UpdatedAt     Timestamp         `json:"updated_at" yaml:"updated_at"`
	CancelledAt   *Timestamp        `json:"cancelled_at,omitempty" yaml:"cancelled_at,omitempty"`
}

// AdminReservationsPage is the paginated /dashboard/reservations listing.
type AdminReservationsPage struct {
	Reservations []AdminReservation `json:"reservations" yaml:"reservations"`
	Total        int                `json:"total" yaml:"total"`
	Page         int                `json:"page" yaml:"page"`
	Size         int                `json:"size" yaml:"size"`
}
