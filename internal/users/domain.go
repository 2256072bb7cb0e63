package users

import "github.com/invoiceflow/invoiceflow/internal/store"

// Role enumerates user roles.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
	RoleViewer Role = "viewer"
)

// Settings holds per-user preferences.
type Settings struct {
	Theme         string `json:"theme"`
	Currency      string `json:"currency"`
	Language      string `json:"language"`
	Notifications bool   `json:"notifications"`
}

// User represents a user account. Password holds the bcrypt hash and is
// blanked before a user leaves the auth package.
type User struct {
	store.Meta
	Email     string   `json:"email"`
	Password  string   `json:"password"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Role      Role     `json:"role"`
	Company   string   `json:"company"`
	Phone     string   `json:"phone"`
	Avatar    string   `json:"avatar"`
	LastLogin *string  `json:"lastLogin"`
	IsActive  bool     `json:"isActive"`
	Settings  Settings `json:"settings"`
}

// Input carries the caller-supplied fields for a new user.
type Input struct {
	ID        string
	Email     string
	Password  string
	FirstName string
	LastName  string
	Role      Role
	Company   string
	Phone     string
	Avatar    string
	IsActive  *bool
	Settings  *Settings
}

// New builds a fully defaulted user record. Email uniqueness is enforced
// by the auth layer, not here.
func New(input Input) *User {
	user := &User{
		Email:     input.Email,
		Password:  input.Password,
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Role:      RoleUser,
		Company:   input.Company,
		Phone:     input.Phone,
		Avatar:    input.Avatar,
		IsActive:  true,
		Settings: Settings{
			Theme:         "light",
			Currency:      "USD",
			Language:      "en",
			Notifications: true,
		},
	}
	user.ID = input.ID
	if input.Role != "" {
		user.Role = input.Role
	}
	if input.IsActive != nil {
		user.IsActive = *input.IsActive
	}
	if input.Settings != nil {
		user.Settings = *input.Settings
	}
	return user
}
