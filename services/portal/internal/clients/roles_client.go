package clients

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"fieldbook/services/portal/internal/models"
)

// RolesClient talks to the roles service.
type RolesClient struct {
	base *BaseClient
}

// NewRolesClient returns client.
func NewRolesClient(baseURL string, httpClient HTTPDoer, logger *zap.Logger) *RolesClient {
	return &RolesClient{base: NewBaseClient(ServiceRoles, baseURL, httpClient, logger)}
}

// CreateRole adds a role.
func (c *RolesClient) CreateRole(ctx context.Context, req models.RoleCreateRequest, token string) (*models.Role, error) {
	var role models.Role
	if err := c.base.DoJSON(ctx, http.MethodPost, "/roles/roles", token, req, &role); err != nil {
		return nil, err
	}
	return &role, nil
}

// CreatePermission adds a permission.
func (c *RolesClient) CreatePermission(ctx context.Context, req models.PermissionCreateRequest, token string) (*models.Permission, error) {
	var permission models.Permission
	if err := c.base.DoJSON(ctx, http.MethodPost, "/roles/permissions", token, req, &permission); err != nil {
		return nil, err
	}
	return &permission, nil
}

// AssignRole gives roleID to userID.
func (c *RolesClient) AssignRole(ctx context.Context, userID, roleID int64, token string) (models.RoleResult, error) {
	body := map[string]int64{"role_id": roleID}
	var result models.RoleResult
	if err := c.base.DoJSON(ctx, http.MethodPost, fmt.Sprintf("/roles/users/%d/assign-role", userID), token, body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssignPermission attaches permissionID to roleID.
func (c *RolesClient) AssignPermission(ctx context.Context, roleID, permissionID int64, token string) (models.RoleResult, error) {
	body := map[string]int64{"permission_id": permissionID}
	var result models.RoleResult
	if err := c.base.DoJSON(ctx, http.MethodPost, fmt.Sprintf("/roles/roles/%d/permissions", roleID), token, body, &result); err != nil {
		return nil, err
	}
	return result, nil
}

// ValidatePermission asks whether a user may perform action on resource.
func (c *RolesClient) ValidatePermission(ctx context.Context, check models.PermissionCheck, token string) (models.RoleResult, error) {
	var result models.RoleResult
	if err := c.base.DoJSON(ctx, http.MethodPost, "/roles/validate-permission", token, check, &result); err != nil {
		return nil, err
	}
	return result, nil
}
