package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RolePM        UserRole = "pm"
	RoleDeveloper UserRole = "developer"
	RoleQA        UserRole = "qa"
	RoleClient    UserRole = "client"
)

type User struct {
	ID            uint64         `gorm:"primarykey" json:"id"`
	Email         string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Name          string         `gorm:"type:varchar(255)" json:"name"`
	PasswordHash  string         `gorm:"type:varchar(255);not null" json:"-"`
	Role          UserRole       `gorm:"type:varchar(20);not null;default:'developer'" json:"role"`
	Internal      bool           `gorm:"not null;default:false" json:"internal"`
	Superadmin    bool           `gorm:"not null;default:false" json:"superadmin"`
	AllowedRoutes StringList     `gorm:"type:text" json:"allowed_routes"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
