// Package domain contains the user model and authentication contracts.
package domain

import "time"

type Role string

const (
	RoleCustomer  Role = "customer"
	RoleAdmin     Role = "admin"
	RoleModerator Role = "moderator"
)

type UserStatus string

const (
	StatusActive    UserStatus = "active"
	StatusInactive  UserStatus = "inactive"
	StatusSuspended UserStatus = "suspended"
)

type User struct {
	ID           int64      `json:"id" gorm:"primaryKey"`
	Name         string     `json:"name" gorm:"type:text;not null"`
	Email        string     `json:"email" gorm:"type:text;not null;uniqueIndex:ux_users_email"`
	PasswordHash string     `json:"-" gorm:"type:text;not null"`
	Role         Role       `json:"role" gorm:"type:text;not null;default:'customer'"`
	Status       UserStatus `json:"status" gorm:"type:text;not null;default:'active'"`
	Phone        string     `json:"phone" gorm:"type:text"`

	Street     string `json:"street" gorm:"type:text"`
	City       string `json:"city" gorm:"type:text"`
	PostalCode string `json:"postal_code" gorm:"type:text"`
	Country    string `json:"country" gorm:"type:text"`

	// Login throttling: failed attempts accumulate and lock the account
	// until LockUntil.
	LoginAttempts int        `json:"-" gorm:"not null;default:0"`
	LockUntil     *time.Time `json:"-"`

	TotalSpent int64 `json:"total_spent" gorm:"not null;default:0"`
	OrderCount int   `json:"order_count" gorm:"not null;default:0"`

	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt   time.Time  `json:"updated_at" gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Locked reports whether the account is under a login lockout.
func (u *User) Locked(now time.Time) bool {
	return u.LockUntil != nil && now.Before(*u.LockUntil)
}

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleAdmin, RoleModerator:
		return true
	default:
		return false
	}
}

func (s UserStatus) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusSuspended:
		return true
	default:
		return false
	}
}
