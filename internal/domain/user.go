package domain

import "time"

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    *time.Time
}

// IsDeleted reports whether the account was soft-deleted.
func (u User) IsDeleted() bool {
	return u.DeletedAt != nil
}

// PublicUser is the user projection that is safe to return to clients.
type PublicUser struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name,omitempty"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

func IsValidRole(role string) bool {
	return role == RoleOwner || role == RoleMember
}
