package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Transaction sources
const (
	SourceManual     = "manual"
	SourceFinanzguru = "finanzguru"
)

// Transaction is a single bank transaction owned by one user. Imported rows
// carry a 64-char SHA-256 import hash; the (user_id, import_hash) pair is
// unique so the same export can never be imported twice. Manually created
// transactions have a nil hash and are exempt from that constraint.
type Transaction struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;index;not null;uniqueIndex:uq_user_import_hash" json:"user_id"`

	// Account information
	AccountName      string `gorm:"size:100" json:"account_name,omitempty"`
	AccountIBANLast4 string `gorm:"column:account_iban_last4;size:4" json:"account_iban_last4,omitempty"`

	// Core fields
	Date         time.Time        `gorm:"index;not null" json:"date"`
	Amount       decimal.Decimal  `gorm:"type:numeric(12,2);not null" json:"amount"`
	Currency     string           `gorm:"size:3;default:EUR" json:"currency"`
	BalanceAfter *decimal.Decimal `gorm:"type:numeric(12,2)" json:"balance_after,omitempty"`

	// Counterparty and references
	Counterparty     string `gorm:"size:255" json:"counterparty"`
	CounterpartyIBAN string `gorm:"column:counterparty_iban;size:34" json:"counterparty_iban,omitempty"`
	Description      string `json:"description"`
	ERef             string `gorm:"column:e_ref;size:100" json:"e_ref,omitempty"`
	MandateRef       string `gorm:"size:100" json:"mandate_ref,omitempty"`
	CreditorID       string `gorm:"size:100" json:"creditor_id,omitempty"`

	// Categorization
	CategoryID    *uuid.UUID `gorm:"type:uuid" json:"category_id,omitempty"`
	SubcategoryID *uuid.UUID `gorm:"type:uuid" json:"subcategory_id,omitempty"`
	TaxCategoryID *uuid.UUID `gorm:"type:uuid" json:"tax_category_id,omitempty"`

	// Finanzguru analysis metadata, copied through verbatim on import
	FgMainCategory       string           `gorm:"size:100" json:"fg_main_category,omitempty"`
	FgSubcategory        string           `gorm:"size:100" json:"fg_subcategory,omitempty"`
	FgContractName       string           `gorm:"size:100" json:"fg_contract_name,omitempty"`
	FgContractFrequency  string           `gorm:"size:20" json:"fg_contract_frequency,omitempty"`
	FgContractID         string           `gorm:"size:50" json:"fg_contract_id,omitempty"`
	FgIsTransfer         bool             `gorm:"default:false" json:"fg_is_transfer"`
	FgExcludedFromBudget bool             `gorm:"default:false" json:"fg_excluded_from_budget"`
	FgTransactionType    string           `gorm:"size:50" json:"fg_transaction_type,omitempty"`
	FgAnalysisAmount     *decimal.Decimal `gorm:"type:numeric(12,2)" json:"fg_analysis_amount,omitempty"`
	FgWeek               string           `gorm:"size:10" json:"fg_week,omitempty"`
	FgMonth              string           `gorm:"size:10" json:"fg_month,omitempty"`
	FgQuarter            string           `gorm:"size:10" json:"fg_quarter,omitempty"`
	FgYear               string           `gorm:"size:10" json:"fg_year,omitempty"`

	// User additions
	Tags  datatypes.JSON `json:"tags,omitempty"`
	Notes string         `json:"notes,omitempty"`

	// Import tracking
	Source     string  `gorm:"size:20;default:manual" json:"source"`
	ImportHash *string `gorm:"size:64;index;uniqueIndex:uq_user_import_hash" json:"import_hash,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Category    *Category    `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Subcategory *Category    `gorm:"foreignKey:SubcategoryID" json:"subcategory,omitempty"`
	TaxCategory *TaxCategory `gorm:"foreignKey:TaxCategoryID" json:"tax_category,omitempty"`
}
