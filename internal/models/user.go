package models

import "time"

// UserRole represents the capability level of a user.
type UserRole string

const (
	RoleAdmin    UserRole = "admin"
	RoleInvestor UserRole = "investor"
)

// User represents a platform user. Administrators create rounds and manage
// treasuries; investors buy units and claim payouts.
type User struct {
	Base
	Email        string        `gorm:"uniqueIndex;not null" json:"email"`
	Password     string        `gorm:"not null" json:"-"`
	FirstName    string        `json:"first_name"`
	LastName     string        `json:"last_name"`
	Role         UserRole      `gorm:"not null;default:'investor'" json:"role"`
	IsActive     bool          `gorm:"default:true" json:"is_active"`
	LastLoginAt  *time.Time    `json:"last_login_at,omitempty"`
	Wallet       *Wallet       `gorm:"foreignKey:UserID" json:"wallet,omitempty"`
	Certificates []Certificate `gorm:"foreignKey:OwnerID" json:"certificates,omitempty"`
}

// IsAdmin reports whether the user holds the administrator capability.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
