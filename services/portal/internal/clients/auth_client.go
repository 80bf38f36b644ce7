package clients

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"fieldbook/services/portal/internal/models"
)

// AuthClient talks to the auth service.
type AuthClient struct {
	base *BaseClient
}

// NewAuthClient returns client.
func NewAuthClient(baseURL string, httpClient HTTPDoer, logger *zap.Logger) *AuthClient {
	return &AuthClient{base: NewBaseClient(ServiceAuth, baseURL, httpClient, logger)}
}

// Login exchanges credentials for a bearer token.
func (c *AuthClient) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	var resp models.LoginResponse
	if err := c.base.DoJSON(ctx, http.MethodPost, "/auth/login", "", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account. No token is issued.
func (c *AuthClient) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	var user models.User
	if err := c.base.DoJSON(ctx, http.MethodPost, "/auth/register", "", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// CurrentUser resolves the account behind token.
func (c *AuthClient) CurrentUser(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := c.base.DoJSON(ctx, http.MethodGet, "/auth/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile patches username and/or password of the caller.
func (c *AuthClient) UpdateProfile(ctx context.Context, req models.UserUpdateRequest, token string) (*models.User, error) {
	var user models.User
	if err := c.base.DoJSON(ctx, http.MethodPatch, "/auth/profile", token, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RecoverPassword asks the server to send a recovery e-mail.
func (c *AuthClient) RecoverPassword(ctx context.Context, email string) (*models.Message, error) {
	var msg models.Message
	if err := c.base.DoJSON(ctx, http.MethodPost, "/auth/password-recovery", "", models.PasswordRecoveryRequest{Email: email}, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// RegisterAdmin creates an administrator account; is_admin is always sent as true.
func (c *AuthClient) RegisterAdmin(ctx context.Context, req models.UserCreateAdmin, token string) (*models.User, error) {
	req.IsAdmin = true
	var user models.User
	if err := c.base.DoJSON(ctx, http.MethodPost, "/auth/register-admin", token, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListUsers returns every account (admin only).
func (c *AuthClient) ListUsers(ctx context.Context, token string) (*models.UsersPage, error) {
	var page models.UsersPage
	if err := c.base.DoJSON(ctx, http.MethodGet, "/auth/users", token, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
