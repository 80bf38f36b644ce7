package models

// User is the session's view of an account, as returned by /auth/me and /auth/register.
type User struct {
	ID       int64  `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
	Email    string `json:"email" yaml:"email"`
	IsActive bool   `json:"is_active" yaml:"is_active"`
	IsAdmin  bool   `json:"is_admin" yaml:"is_admin"`
}

// LoginRequest body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the bearer token.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// RegisterRequest body of POST /auth/register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserUpdateRequest body of PATCH /auth/profile. Nil fields are left untouched.
type UserUpdateRequest struct {
	Username *string `json:"username,omitempty"`
	Password *string `json:"password,omitempty"`
}

// UserCreateAdmin body of POST /auth/register-admin.
type UserCreateAdmin struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"is_admin"`
}

// PasswordRecoveryRequest body of POST /auth/password-recovery.
type PasswordRecoveryRequest struct {
	Email string `json:"email"`
}

// UsersPage is the paginated /auth/users listing.
type UsersPage struct {
	Users []User `json:"users" yaml:"users"`
	Total int    `json:"total" yaml:"total"`
	Page  int    `json:"page" yaml:"page"`
	Size  int    `json:"size" yaml:"size"`
}

// AdminUser is a user row enriched with reservation totals by the dashboard service.
type AdminUser struct {
	User              `yaml:",inline"`
	Role              string    `json:"role" yaml:"role"`
	CreatedAt         Timestamp `json:"created_at" yaml:"created_at"`
	LastLogin         Timestamp `json:"last_login,omitempty" yaml:"last_login,omitempty"`
	TotalReservations int       `json:"total_reservations" yaml:"total_reservations"`
	TotalSpent        float64   `json:"total_spent" yaml:"total_spent"`
}

// AdminUsersPage is the paginated /dashboard/users listing.
type AdminUsersPage struct {
	Users []AdminUser `json:"users" yaml:"users"`
	Total int         `json:"total" yaml:"total"`
	Page  int         `json:"page" yaml:"page"`
	Size  int         `json:"size" yaml:"size"`
}

// Message is the generic {"message": "..."} acknowledgement.
type Message struct {
	Message string `json:"message" yaml:"message"`
}
