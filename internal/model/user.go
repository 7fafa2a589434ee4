package model

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// User is a stored identity. PasswordHash never leaves the service layer;
// handlers only ever serialize PublicUser.
type User struct {
	ID           string
	Email        string
	Handle       string
	PasswordHash string
	FirstName    string
	LastName     string
	Bio          string
	Avatar       string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Handle    string    `json:"handle"`
	FirstName string    `json:"firstName,omitempty"`
	LastName  string    `json:"lastName,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Avatar    string    `json:"avatar,omitempty"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		Handle:    u.Handle,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Bio:       u.Bio,
		Avatar:    u.Avatar,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// Claims is the decoded payload of a session token.
type Claims struct {
	Subject   string
	Email     string
	Role      Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type AuthResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

// UserPatch carries the optional fields of an update; nil means unchanged.
type UserPatch struct {
	Email     *string
	Handle    *string
	Password  *string
	FirstName *string
	LastName  *string
	Bio       *string
	Avatar    *string
	Role      *Role
}
