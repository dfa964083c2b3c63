package models

import (
	"time"

	"github.com/google/uuid"
)

// Category is a node in the user-visible category tree. The hierarchy is
// stored as a plain parent key; children are always derived by query, never
// held as a live collection on the struct.
type Category struct {
	ID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name     string     `gorm:"size:50;not null" json:"name"`
	NameDE   string     `gorm:"column:name_de;size:50;index" json:"name_de,omitempty"`
	ParentID *uuid.UUID `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	IsIncome bool       `gorm:"default:false" json:"is_income"`

	// Display
	Icon      string `gorm:"size:50" json:"icon,omitempty"`
	Color     string `gorm:"size:7" json:"color,omitempty"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TaxCategory maps expenses to German tax form sections (Anlage N etc.).
type TaxCategory struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:50;not null" json:"name"`
	NameDE      string    `gorm:"column:name_de;size:100;not null" json:"name_de"`
	Anlage      string    `gorm:"size:50" json:"anlage,omitempty"`
	Description string    `gorm:"size:500" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
