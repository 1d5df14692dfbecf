// Package models contains domain entities and business models for the commission service
package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Well-known role names seeded by the POS system
const (
	RoleNameVendedor = "vendedor"
	RoleNameTecnico  = "tecnico"
	RoleNameGerente  = "gerente"
)

// Role represents a POS role; commission rules are scoped to roles.
type Role struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Role) TableName() string {
	return "roles"
}

// User represents a POS user (seller, technician, manager).
type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Email        string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	RoleID       uint      `gorm:"not null;index" json:"role_id"`
	IsActive     *bool     `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Role Role `gorm:"foreignKey:RoleID;references:ID" json:"role,omitempty"`
}

func (User) TableName() string {
	return "users"
}

// SetPassword hashes and stores the given plain-text password.
func (u *User) SetPassword(plain string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plain-text password against the stored hash.
func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// UserFilter represents filter criteria for user queries
type UserFilter struct {
	ID       *uint   `json:"id,omitempty"`
	Email    *string `json:"email,omitempty"`
	RoleID   *uint   `json:"role_id,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

// RoleFilter represents filter criteria for role queries
type RoleFilter struct {
	ID   *uint   `json:"id,omitempty"`
	Name *string `json:"name,omitempty"`
}
