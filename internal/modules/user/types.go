package user

import (
	"errors"
	"time"

	"github.com/bhutan-travel/core/internal/models"
)

const minPasswordLength = 8

type CreateDTO struct {
	Username string `json:"username" form:"username" binding:"required,min=3,max=64"`
	Email    string `json:"email"    form:"email"    binding:"required,email"`
	Name     string `json:"name"     form:"name"`
	Password string `json:"password" form:"password" binding:"required"`
}

// UpdateDTO changes only the fields that are present. An empty password
// leaves the current one in place.
type UpdateDTO struct {
	Username *string `json:"username" form:"username"`
	Email    *string `json:"email"    form:"email"`
	Name     *string `json:"name"     form:"name"`
	Password *string `json:"password" form:"password"`
}

type Response struct {
	ID            string          `json:"id"`
	Username      string          `json:"username"`
	Email         string          `json:"email"`
	Name          string          `json:"name"`
	Role          models.UserRole `json:"role"`
	LastLoginTime *time.Time      `json:"last_login_time"`
	LastLoginIP   string          `json:"last_login_ip"`
	Created       time.Time       `json:"created"`
	Modified      time.Time       `json:"modified"`
}

func ToResponse(u *models.UserModel) *Response {
	return &Response{
		ID: u.ID, Username: u.Username, Email: u.Email, Name: u.Name, Role: u.Role,
		LastLoginTime: u.LastLoginTime, LastLoginIP: u.LastLoginIP,
		Created: u.CreatedAt, Modified: u.UpdatedAt,
	}
}

var (
	ErrUsernameTaken = errors.New("username already in use")
	ErrEmailTaken    = errors.New("email already in use")
	ErrDeleteSelf    = errors.New("you cannot delete your own account")
	ErrWeakPassword  = errors.New("password must be at least 8 characters")
)
