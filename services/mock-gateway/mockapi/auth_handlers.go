package mockapi

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

func (c credentials) issues(needUsername bool) []Issue {
	var issues []Issue
	if needUsername && strings.TrimSpace(c.Username) == "" {
		issues = append(issues, missing("username"))
	}
	email := strings.TrimSpace(c.Email)
	switch {
	case email == "":
		issues = append(issues, missing("email"))
	case !strings.Contains(email, "@"):
		issues = append(issues, invalid("email", "value is not a valid email address"))
	}
	if c.Password == "" {
		issues = append(issues, missing("password"))
	}
	return issues
}

func (g *Gateway) signup(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decode(w, r, &req) {
		return
	}
	g.createAccount(w, req, false)
}

func (g *Gateway) registerAdmin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decode(w, r, &req) {
		return
	}
	g.createAccount(w, req, req.IsAdmin)
}

func (g *Gateway) createAccount(w http.ResponseWriter, req credentials, admin bool) {
	if issues := req.issues(true); len(issues) > 0 {
		writeIssues(w, issues)
		return
	}
	user, err := g.register(strings.TrimSpace(req.Username), req.Email, req.Password, admin)
	if err != nil {
		if errors.Is(err, ErrEmailInUse) {
			writeDetail(w, http.StatusBadRequest, "Email already registered")
			return
		}
		g.logger.Error("failed to register user", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "Failed to register user")
		return
	}
	g.logger.Info("user signed up", zap.Int64("user_id", user.ID), zap.Bool("admin", admin))
	writeJSON(w, http.StatusCreated, user)
}

func (g *Gateway) login(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if !decode(w, r, &req) {
		return
	}
	if issues := req.issues(false); len(issues) > 0 {
		writeIssues(w, issues)
		return
	}

	user, err := g.store.UserByEmail(req.Email)
	if err != nil || g.hasher.Compare(user.PasswordHash, req.Password) != nil {
		writeDetail(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	if !user.IsActive {
		writeDetail(w, http.StatusBadRequest, "Inactive user")
		return
	}

	token, err := g.tokens.GenerateToken(user)
	if err != nil {
		g.logger.Error("failed to issue token", zap.Error(err))
		writeDetail(w, http.StatusInternalServerError, "Failed to login")
		return
	}
	_, _ = g.store.UpdateUser(user.ID, func(u *User) { u.LastLogin = Stamp{g.now()} })

	writeJSON(w, http.StatusOK, map[string]string{
		"access_token": token,
		"token_type":   "bearer",
	})
}

func (g *Gateway) me(w http.ResponseWriter, r *http.Request) {
	user, _ := userFromContext(r.Context())
	writeJSON(w, http.StatusOK, user)
}

func (g *Gateway) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username *string `json:"username"`
		Password *string `json:"password"`
	}
	if !decode(w, r, &req) {
		return
	}

	var issues []Issue
	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		issues = append(issues, invalid("username", "username must not be empty"))
	}
	if req.Password != nil && *req.Password == "" {
		issues = append(issues, invalid("password", "password must not be empty"))
	}
	if len(issues) > 0 {
		writeIssues(w, issues)
		return
	}

	var hash string
	if req.Password != nil {
		var err error
		if hash, err = g.hasher.Hash(*req.Password); err != nil {
			writeDetail(w, http.StatusInternalServerError, "Failed to update profile")
			return
		}
	}

	current, _ := userFromContext(r.Context())
	user, err := g.store.UpdateUser(current.ID, func(u *User) {
		if req.Username != nil {
			u.Username = strings.TrimSpace(*req.Username)
		}
		if hash != "" {
			u.PasswordHash = hash
		}
	})
	if err != nil {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (g *Gateway) recoverPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decode(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Email) == "" {
		writeIssues(w, []Issue{missing("email")})
		return
	}
	if _, err := g.store.UserByEmail(req.Email); err == nil {
		g.logger.Info("password recovery requested", zap.String("email", normalizeEmail(req.Email)))
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "If the email is registered, a recovery link has been sent",
	})
}

func (g *Gateway) listUsers(w http.ResponseWriter, r *http.Request) {
	users := g.store.Users()
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)
	items, page := window(users, skip, limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"users": items,
		"total": len(users),
		"page":  page,
		"size":  len(items),
	})
}
