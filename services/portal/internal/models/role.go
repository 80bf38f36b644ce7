package models

// RoleCreateRequest body of POST /roles/roles.
type RoleCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

// Role as returned by the roles service.
type Role struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	IsActive    bool   `json:"is_active" yaml:"is_active"`
}

// PermissionCreateRequest body of POST /roles/permissions.
type PermissionCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Resource    string `json:"resource"`
	Action      string `json:"action"`
	IsActive    bool   `json:"is_active"`
}

// Permission as returned by the roles service.
type Permission struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Resource    string `json:"resource" yaml:"resource"`
	Action      string `json:"action" yaml:"action"`
	IsActive    bool   `json:"is_active" yaml:"is_active"`
}

// PermissionCheck body of POST /roles/validate-permission.
type PermissionCheck struct {
	UserID   int64  `json:"user_id"`
	Resource string `json:"resource"`
	Action   string `json:"action"`
}

// RoleResult is the loosely typed acknowledgement of role assignment and permission checks.
type RoleResult map[string]interface{}
