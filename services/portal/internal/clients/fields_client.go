package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"fieldbook/services/portal/internal/models"
)

// FieldsClient talks to the fields service.
type FieldsClient struct {
	base *BaseClient
}

// NewFieldsClient returns client.
func NewFieldsClient(baseURL string, httpClient HTTPDoer, logger *zap.Logger) *FieldsClient {
	return &FieldsClient{base: NewBaseClient(ServiceFields, baseURL, httpClient, logger)}
}

// List returns the fields visible to the caller.
func (c *FieldsClient) List(ctx context.Context, token string) (*models.FieldsPage, error) {
	var page models.FieldsPage
	if err := c.base.DoJSON(ctx, http.MethodGet, "/fields/", token, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// Create adds a field (admin only).
func (c *FieldsClient) Create(ctx context.Context, req models.FieldCreateRequest, token string) (*models.Field, error) {
	var field models.Field
	if err := c.base.DoJSON(ctx, http.MethodPost, "/fields/", token, req, &field); err != nil {
		return nil, err
	}
	return &field, nil
}

// Update modifies a field (admin only).
func (c *FieldsClient) Update(ctx context.Context, id int64, req models.FieldUpdateRequest, token string) (*models.Field, error) {
	var field models.Field
	if err := c.base.DoJSON(ctx, http.MethodPut, fmt.Sprintf("/fields/%d", id), token, req, &field); err != nil {
		return nil, err
	}
	return &field, nil
}

// Delete removes a field (admin only).
func (c *FieldsClient) Delete(ctx context.Context, id int64, token string) (*models.Message, error) {
	var msg models.Message
	if err := c.base.DoJSON(ctx, http.MethodDelete, fmt.Sprintf("/fields/%d", id), token, nil, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// Availability lists free hours of a field on date (YYYY-MM-DD). Public endpoint.
func (c *FieldsClient) Availability(ctx context.Context, id int64, date string) (*models.FieldAvailability, error) {
	path := fmt.Sprintf("/fields/%d/availability?%s", id, url.Values{"date": {date}}.Encode())
	var availability models.FieldAvailability
	if err := c.base.DoJSON(ctx, http.MethodGet, path, "", nil, &availability); err != nil {
		return nil, err
	}
	return &availability, nil
}
