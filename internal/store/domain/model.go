// Package domain contains core types for the store catalog.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Store is a storefront owned by a single user.
type Store struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	OwnerID   snowflake.ID `gorm:"column:owner_id;not null;index" json:"owner_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Location  string       `gorm:"type:text;not null;default:''" json:"location"`
	IsOpen    bool         `gorm:"column:is_open;not null;default:true" json:"is_open"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (Store) TableName() string { return "stores" }

// StoreProduct is a catalog entry. Price is the authoritative unit price in
// minor units; client-submitted prices are never trusted.
type StoreProduct struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	StoreID    snowflake.ID `gorm:"column:store_id;not null;index" json:"store_id"`
	Name       string       `gorm:"type:text;not null" json:"name"`
	CustomName *string      `gorm:"column:custom_name;type:text" json:"custom_name,omitempty"`
	Category   string       `gorm:"type:text;not null;default:''" json:"category"`
	ImageURL   *string      `gorm:"column:image_url;type:text" json:"image_url,omitempty"`
	Price      int64        `gorm:"not null" json:"price"`
	InStock    bool         `gorm:"column:in_stock;not null;default:true" json:"in_stock"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the database table name.
func (StoreProduct) TableName() string { return "store_products" }

// DisplayName prefers the owner's custom label over the catalog name.
func (p StoreProduct) DisplayName() string {
	if p.CustomName != nil && *p.CustomName != "" {
		return *p.CustomName
	}
	return p.Name
}
