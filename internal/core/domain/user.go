package domain

import "time"

type Role string

const (
	RoleArtisan Role = "artisan"
	RoleBuyer   Role = "buyer"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	return r == RoleArtisan || r == RoleBuyer || r == RoleAdmin
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	FullName     string
	Email        string
	Phone        string
	CreatedAt    time.Time
}
