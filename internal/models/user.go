package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleTrainee   UserRole = "trainee"
	RoleEvaluator UserRole = "evaluator"
	RoleManager   UserRole = "manager"
	RoleAdmin     UserRole = "admin"
)

// User mirrors profile rows owned by the identity platform. The challenge
// service treats them as read-mostly reference data.
type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     UserRole `json:"role" gorm:"not null;size:20;index"`

	// Profile info
	AvatarURL    *string `json:"avatar_url" gorm:"size:500"`
	Organization *string `json:"organization" gorm:"size:200"`

	// Status
	IsActive    bool       `json:"is_active" gorm:"default:true"`
	LastLoginAt *time.Time `json:"last_login_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
