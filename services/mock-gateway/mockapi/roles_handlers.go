package mockapi

import (
	"errors"
	"net/http"
	"strings"
)

func (g *Gateway) createRole(w http.ResponseWriter, r *http.Request) {
	req := Role{IsActive: true}
	if !decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeIssues(w, []Issue{missing("name")})
		return
	}
	role, err := g.store.CreateRole(req)
	if errors.Is(err, ErrNameInUse) {
		writeDetail(w, http.StatusBadRequest, "Role already exists")
		return
	}
	writeJSON(w, http.StatusCreated, role)
}

func (g *Gateway) createPermission(w http.ResponseWriter, r *http.Request) {
	req := Permission{IsActive: true}
	if !decode(w, r, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	var issues []Issue
	if req.Name == "" {
		issues = append(issues, missing("name"))
	}
	if req.Resource == "" {
		issues = append(issues, missing("resource"))
	}
	if req.Action == "" {
		issues = append(issues, missing("action"))
	}
	if len(issues) > 0 {
		writeIssues(w, issues)
		return
	}
	perm, err := g.store.CreatePermission(req)
	if errors.Is(err, ErrNameInUse) {
		writeDetail(w, http.StatusBadRequest, "Permission already exists")
		return
	}
	writeJSON(w, http.StatusCreated, perm)
}

func (g *Gateway) assignRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		RoleID int64 `json:"role_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := g.store.AssignRole(userID, req.RoleID); err != nil {
		writeDetail(w, http.StatusNotFound, "User or role not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Role assigned successfully",
		"user_id": userID,
		"role_id": req.RoleID,
	})
}

func (g *Gateway) assignPermission(w http.ResponseWriter, r *http.Request) {
	roleID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req struct {
		PermissionID int64 `json:"permission_id"`
	}
	if !decode(w, r, &req) {
		return
	}
	if err := g.store.AssignPermission(roleID, req.PermissionID); err != nil {
		writeDetail(w, http.StatusNotFound, "Role or permission not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":       "Permission assigned successfully",
		"role_id":       roleID,
		"permission_id": req.PermissionID,
	})
}

func (g *Gateway) validatePermission(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID   int64  `json:"user_id"`
		Resource string `json:"resource"`
		Action   string `json:"action"`
	}
	if !decode(w, r, &req) {
		return
	}
	caller, _ := userFromContext(r.Context())
	if req.UserID != caller.ID && !caller.IsAdmin {
		writeDetail(w, http.StatusForbidden, "Not enough permissions")
		return
	}
	target, err := g.store.UserByID(req.UserID)
	if err != nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	allowed := target.IsAdmin || g.store.HasPermission(target.ID, req.Resource, req.Action)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user_id":        target.ID,
		"resource":       req.Resource,
		"action":         req.Action,
		"has_permission": allowed,
	})
}
