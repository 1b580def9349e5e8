package domain

import (
	"context"
	"errors"

	"github.com/bondexsafety/backoffice/pkg/db/pagination"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountLocked      = errors.New("account temporarily locked")
	ErrAccountInactive    = errors.New("account is not active")
	ErrNotAdmin           = errors.New("admin access required")
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type LoginResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

type CreateUserRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Role     Role   `json:"role"`
	Phone    string `json:"phone"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

type ListUsersRequest struct {
	Role   string `form:"role"`
	Status string `form:"status"`
	Search string `form:"search"`
	pagination.Pagination
}

type ListUsersResponse struct {
	Users    []User              `json:"users"`
	PageInfo pagination.PageInfo `json:"page_info"`
}

type Service interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Me(ctx context.Context, userID int64) (*User, error)
	ChangePassword(ctx context.Context, userID int64, req ChangePasswordRequest) error
	CreateUser(ctx context.Context, req CreateUserRequest) (*User, error)
	ListUsers(ctx context.Context, req ListUsersRequest) (*ListUsersResponse, error)
}
