package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HTTPDoer defines http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// BaseClient issues requests against one logical service.
type BaseClient struct {
	service string
	baseURL string
	client  HTTPDoer
	logger  *zap.Logger
}

// NewBaseClient builds client with base URL.
func NewBaseClient(service, baseURL string, client HTTPDoer, logger *zap.Logger) *BaseClient {
	if client == nil {
		client = NewDefaultHTTPClient(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BaseClient{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger.With(zap.String("service", service)),
	}
}

// Service returns the logical service name.
func (c *BaseClient) Service() string {
	return c.service
}

// BaseURL returns the resolved base URL without trailing slash.
func (c *BaseClient) BaseURL() string {
	return c.baseURL
}

func (c *BaseClient) buildURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Do executes HTTP request and returns status/body.
func (c *BaseClient) Do(ctx context.Context, method, path string, body []byte, headers map[string]string) (int, []byte, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.buildURL(path), reader)
	if err != nil {
		return 0, nil, err
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// DoJSON sends in (when non-nil) as JSON, attaches the bearer token when set and decodes a
// 2xx body into out (when non-nil). Non-2xx responses come back as *APIError.
func (c *BaseClient) DoJSON(ctx context.Context, method, path, token string, in, out interface{}) error {
	var body []byte
	if in != nil {
		encoded, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s service: encode request: %w", c.service, err)
		}
		body = encoded
	}

	requestID := uuid.NewString()
	headers := map[string]string{
		"Accept":       "application/json",
		"X-Request-ID": requestID,
	}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	started := time.Now()
	status, respBody, err := c.Do(ctx, method, path, body, headers)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return &TransportError{Service: c.service, Err: err}
	}

	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", status),
		zap.Duration("elapsed", time.Since(started)),
	)

	if status < 200 || status >= 300 {
		apiErr := newAPIError(c.service, status, respBody)
		c.logger.Debug("service error", zap.Int("status", status), zap.String("detail", apiErr.Detail))
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &DecodeError{Service: c.service, StatusCode: status, Err: err}
	}
	return nil
}

// NewDefaultHTTPClient returns *http.Client; a zero timeout means requests are bounded only by
// their context.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}
