// Package domain contains core types for the auth service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Role determines what a user may do: customers shop, owners run a store.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
	RoleDriver   Role = "driver"
)

func (r Role) Valid() bool {
	switch r {
	case RoleCustomer, RoleOwner, RoleDriver:
		return true
	default:
		return false
	}
}

// User represents a system user account.
type User struct {
	ID           snowflake.ID      `gorm:"primaryKey" json:"id"`
	Email        string            `gorm:"type:text;not null;uniqueIndex" json:"email"`
	PasswordHash *string           `gorm:"type:text" json:"-"`
	FullName     string            `gorm:"type:text;not null;default:''" json:"full_name"`
	Phone        *string           `gorm:"type:text" json:"phone,omitempty"`
	Role         Role              `gorm:"type:text;not null;default:'customer'" json:"role"`
	Metadata     datatypes.JSONMap `gorm:"type:jsonb;not null;default:'{}'" json:"metadata,omitempty"`
	CreatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time         `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }

// Session represents a persisted login session.
type Session struct {
	ID               snowflake.ID `gorm:"primaryKey"`
	UserID           snowflake.ID `gorm:"column:user_id;not null;index"`
	SessionTokenHash string       `gorm:"column:session_token_hash;type:text;not null;uniqueIndex"`
	UserAgent        string       `gorm:"column:user_agent;type:text"`
	IPAddress        string       `gorm:"column:ip_address;type:text"`
	ExpiresAt        time.Time    `gorm:"column:expires_at;not null;index"`
	RevokedAt        *time.Time   `gorm:"column:revoked_at"`
	CreatedAt        time.Time    `gorm:"column:created_at;not null;default:CURRENT_TIMESTAMP"`
	LastSeenAt       time.Time    `gorm:"column:last_seen_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Session) TableName() string { return "sessions" }

// Identity is the authenticated caller, resolved once per request and passed
// explicitly to anything that needs it.
type Identity struct {
	UserID snowflake.ID
	Role   Role
}

func (i Identity) IsZero() bool {
	return i.UserID == 0
}
