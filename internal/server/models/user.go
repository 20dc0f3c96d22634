// Package models defines the server-side domain types persisted in the
// database or returned to clients.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Role is an ordinal ranking: a higher value grants everything a lower one
// does. New roles must be inserted at the rank they are meant to satisfy.
type Role int

const (
	RoleUnknown Role = iota
	RoleUser
	RoleAdmin
)

var roleNames = map[Role]string{
	RoleUser:  "user",
	RoleAdmin: "admin",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// AtLeast reports whether r ranks at or above required.
func (r Role) AtLeast(required Role) bool {
	return r != RoleUnknown && r >= required
}

// ParseRole converts the stored text form into a Role.
func ParseRole(s string) (Role, error) {
	for role, name := range roleNames {
		if strings.EqualFold(s, name) {
			return role, nil
		}
	}
	return RoleUnknown, fmt.Errorf("invalid role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	if _, ok := roleNames[r]; !ok {
		return nil, fmt.Errorf("invalid role %d", int(r))
	}
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// User is the stored identity. PasswordHash never leaves the service: it is
// excluded from JSON and from the Public projection.
type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Role            Role      `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// PublicUser is the projection of User that may be returned to clients.
type PublicUser struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Role            Role      `json:"role"`
	IsEmailVerified bool      `json:"isEmailVerified"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

func (u *User) Public() PublicUser {
	return PublicUser{
		ID:              u.ID,
		Name:            u.Name,
		Email:           u.Email,
		Role:            u.Role,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

// UserUpdate lists the optional changes applied by an update; nil fields are
// left as they are.
type UserUpdate struct {
	Name         *string
	Email        *string
	PasswordHash *string
}
