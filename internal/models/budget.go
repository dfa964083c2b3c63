package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Budget periods
const (
	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
	PeriodYearly  = "yearly"
)

type Budget struct {
	ID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID       `gorm:"type:uuid;index;not null" json:"user_id"`
	CategoryID uuid.UUID       `gorm:"type:uuid;not null" json:"category_id"`
	Name       string          `gorm:"size:100" json:"name,omitempty"`
	Amount     decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Period     string          `gorm:"size:10;default:monthly" json:"period"`
	StartDate  time.Time       `gorm:"not null" json:"start_date"`
	EndDate    *time.Time      `json:"end_date,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Category *Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}
