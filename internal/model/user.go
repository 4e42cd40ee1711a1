package model

import "time"

// User represents an account that can log in and act as an asset custodian.
type User struct {
	ID           int64      `json:"id"`
	Username     string     `json:"username"`
	DisplayName  string     `json:"display_name"`
	PasswordHash string     `json:"-"`
	Role         string     `json:"role"`
	Email        string     `json:"email,omitempty"`
	OrgUnit      string     `json:"org_unit,omitempty"`
	Building     string     `json:"building,omitempty"`
	Room         string     `json:"room,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
}

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// BootstrapUsername is the account created on an empty store. It can never be
// deleted or demoted.
const BootstrapUsername = "admin"

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}

// Identity is the authenticated caller of an operation.
type Identity struct {
	UserID      int64  `json:"user_id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

// IsZero reports whether the identity is unset.
func (id Identity) IsZero() bool {
	return id.Username == ""
}

// Identity returns the identity of the user.
func (u *User) Identity() Identity {
	return Identity{
		UserID:      u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		Role:        u.Role,
	}
}

// NewUser holds the fields for creating a user.
type NewUser struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	Role        string `json:"role"`
	Email       string `json:"email"`
	OrgUnit     string `json:"org_unit"`
	Building    string `json:"building"`
	Room        string `json:"room"`
}

// UserUpdate holds the editable profile fields of a user.
type UserUpdate struct {
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	Email       string `json:"email"`
	OrgUnit     string `json:"org_unit"`
	Building    string `json:"building"`
	Room        string `json:"room"`
}
