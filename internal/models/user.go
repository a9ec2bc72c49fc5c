package models

import "time"

type UserRole string

const RoleAdmin UserRole = "admin"

// UserModel is a back-office account. Every account is a full admin.
type UserModel struct {
	Base
	Username      string     `json:"username"        gorm:"uniqueIndex;size:191;not null"`
	Email         string     `json:"email"           gorm:"uniqueIndex;size:191;not null"`
	Name          string     `json:"name"`
	Role          UserRole   `json:"role"            gorm:"size:16;not null;default:'admin'"`
	Password      string     `json:"-"               gorm:"not null"`
	LastLoginTime *time.Time `json:"last_login_time"`
	LastLoginIP   string     `json:"last_login_ip"`
}

func (UserModel) TableName() string { return "users" }
