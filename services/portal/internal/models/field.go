package models

// Field is a bookable sports field.
type Field struct {
	ID           int64     `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Location     string    `json:"location" yaml:"location"`
	Capacity     int       `json:"capacity" yaml:"capacity"`
	PricePerHour float64   `json:"price_per_hour" yaml:"price_per_hour"`
	IsActive     bool      `json:"is_active" yaml:"is_active"`
	Description  string    `json:"description,omitempty" yaml:"description,omitempty"`
	OpeningTime  string    `json:"opening_time" yaml:"opening_time"`
	ClosingTime  string    `json:"closing_time" yaml:"closing_time"`
	CreatedAt    Timestamp `json:"created_at" yaml:"created_at"`
	UpdatedAt    Timestamp `json:"updated_at" yaml:"updated_at"`
}

// FieldCreateRequest body of POST /fields/.
type FieldCreateRequest struct {
	Name         string  `json:"name"`
	Location     string  `json:"location"`
	Capacity     int     `json:"capacity"`
	PricePerHour float64 `json:"price_per_hour"`
	Description  string  `json:"description,omitempty"`
	OpeningTime  string  `json:"opening_time"`
	ClosingTime  string  `json:"closing_time"`
	IsActive     *bool   `json:"is_active,omitempty"`
}

// FieldUpdateRequest body of PUT /fields/{id}; only non-nil fields are sent.
type FieldUpdateRequest struct {
	Name         *string  `json:"name,omitempty"`
	Location     *string  `json:"location,omitempty"`
	Capacity     *int     `json:"capacity,omitempty"`
	PricePerHour *float64 `json:"price_per_hour,omitempty"`
	Description  *string  `json:"description,omitempty"`
	OpeningTime  *string  `json:"opening_time,omitempty"`
	ClosingTime  *string  `json:"closing_time,omitempty"`
	IsActive     *bool    `json:"is_active,omitempty"`
}

// FieldsPage is the paginated /fields/ listing.
type FieldsPage struct {
	Fields []Field `json:"fields" yaml:"fields"`
	Total  int     `json:"total" yaml:"total"`
	Page   int     `json:"page" yaml:"page"`
	Size   int     `json:"size" yaml:"size"`
}

// FieldAvailability lists free start hours ("HH:MM") of a field on a date.
type FieldAvailability struct {
	FieldID        int64    `json:"field_id" yaml:"field_id"`
	Date           string   `json:"date" yaml:"date"`
	AvailableHours []string `json:"available_hours" yaml:"available_hours"`
}
