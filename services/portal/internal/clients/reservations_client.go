package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"fieldbook/services/portal/internal/models"
)

// ReservationFilter narrows reservation listings. Page is 1-based; Limit defaults to 10.
type ReservationFilter struct {
	Page    int
	Limit   int
	Status  string
	FieldID int64
	UserID  int64
}

func (f ReservationFilter) query() url.Values {
	page, limit := normalizePage(f.Page, f.Limit, 10)
	values := url.Values{
		"skip":  {strconv.Itoa((page - 1) * limit)},
		"limit": {strconv.Itoa(limit)},
	}
	if f.Status != "" && f.Status != "all" {
		values.Set("status", f.Status)
	}
	if f.FieldID > 0 {
		values.Set("field_id", strconv.FormatInt(f.FieldID, 10))
	}
	if f.UserID > 0 {
		values.Set("user_id", strconv.FormatInt(f.UserID, 10))
	}
	return values
}

// ReservationsClient talks to the reservations service.
type ReservationsClient struct {
	base *BaseClient
}

// NewReservationsClient returns client.
func NewReservationsClient(baseURL string, httpClient HTTPDoer, logger *zap.Logger) *ReservationsClient {
	return &ReservationsClient{base: NewBaseClient(ServiceReservations, baseURL, httpClient, logger)}
}

// List returns reservations matching filter (all users for admins).
func (c *ReservationsClient) List(ctx context.Context, filter ReservationFilter, token string) (*models.ReservationsPage, error) {
	var page models.ReservationsPage
	if err := c.base.DoJSON(ctx, http.MethodGet, "/reservations/?"+filter.query().Encode(), token, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Mine returns the caller's reservations. Only Page, Limit and Status of filter apply.
func (c *ReservationsClient) Mine(ctx context.Context, filter ReservationFilter, token string) (*models.ReservationsPage, error) {
	query := filter.query()
	query.Del("field_id")
	query.Del("user_id")
	var page models.ReservationsPage
	if err := c.base.DoJSON(ctx, http.MethodGet, "/reservations/my?"+query.Encode(), token, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Get returns one reservation.
func (c *ReservationsClient) Get(ctx context.Context, id int64, token string) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := c.base.DoJSON(ctx, http.MethodGet, fmt.Sprintf("/reservations/%d", id), token, nil, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Create books a field.
func (c *ReservationsClient) Create(ctx context.Context, req models.ReservationCreateRequest, token string) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := c.base.DoJSON(ctx, http.MethodPost, "/reservations/", token, req, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Update changes a reservation.
func (c *ReservationsClient) Update(ctx context.Context, id int64, req models.ReservationUpdateRequest, token string) (*models.Reservation, error) {
	var reservation models.Reservation
	if err := c.base.DoJSON(ctx, http.MethodPut, fmt.Sprintf("/reservations/%d", id), token, req, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// Cancel cancels a reservation; the status transition happens server-side.
func (c *ReservationsClient) Cancel(ctx context.Context, id int64, reason, token string) (*models.Reservation, error) {
	var reservation models.Reservation
	path := fmt.Sprintf("/reservations/%d/cancel", id)
	if err := c.base.DoJSON(ctx, http.MethodPost, path, token, models.CancelRequest{Reason: reason}, &reservation); err != nil {
		return nil, err
	}
	return &reservation, nil
}

// CheckAvailability asks whether a slot is free. date is YYYY-MM-DD, startTime HH:MM.
func (c *ReservationsClient) CheckAvailability(ctx context.Context, fieldID int64, date, startTime string, durationHours int, token string) (*models.Availability, error) {
	query := url.Values{
		"field_id":   {strconv.FormatInt(fieldID, 10)},
		"date":       {date},
		"start_time": {startTime},
		"duration":   {strconv.Itoa(durationHours)},
	}
	var availability models.Availability
	if err := c.base.DoJSON(ctx, http.MethodGet, "/reservations/availability?"+query.Encode(), token, nil, &availability); err != nil {
		return nil, err
	}
	return &availability, nil
}

// ForFieldOnDate lists reservations of a field on a date. Public endpoint.
func (c *ReservationsClient) ForFieldOnDate(ctx context.Context, fieldID int64, date string) ([]models.Reservation, error) {
	var reservations []models.Reservation
	path := fmt.Sprintf("/reservations/field/%d/date/%s", fieldID, url.PathEscape(date))
	if err := c.base.DoJSON(ctx, http.MethodGet, path, "", nil, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func normalizePage(page, limit, defaultLimit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	return page, limit
}
