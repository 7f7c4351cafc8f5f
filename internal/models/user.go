package models

import (
	"time"
)

// User is an account that owns tags, ingredients and recipes. Email is the login key.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null;default:''" json:"-"`
	Name         string    `gorm:"size:255;not null;default:''" json:"name"`
	IsActive     bool      `gorm:"not null;default:true" json:"is_active"`
	IsStaff      bool      `gorm:"not null;default:false" json:"is_staff"`
	IsSuperuser  bool      `gorm:"not null;default:false" json:"is_superuser"`
	DateJoined   time.Time `gorm:"autoCreateTime" json:"date_joined"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasUsablePassword reports whether the account can log in with a password at all.
func (u *User) HasUsablePassword() bool {
	return u.PasswordHash != ""
}
