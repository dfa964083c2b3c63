package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Receipt statuses
const (
	ReceiptStatusPending    = "pending"
	ReceiptStatusProcessing = "processing"
	ReceiptStatusCompleted  = "completed"
	ReceiptStatusFailed     = "failed"
)

// Receipt is an uploaded receipt image plus whatever the OCR step managed to
// extract from it. TransactionID is set only by an explicit link operation.
type Receipt struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID  `gorm:"type:uuid;index;not null" json:"user_id"`
	TransactionID *uuid.UUID `gorm:"type:uuid" json:"transaction_id,omitempty"`

	// File information
	OriginalFilename string `gorm:"size:255;not null" json:"original_filename"`
	StoredPath       string `gorm:"size:500;not null" json:"-"`
	FileSize         int64  `json:"file_size"`
	MimeType         string `gorm:"size:50" json:"mime_type"`

	// OCR results
	OCRRawText     string         `gorm:"column:ocr_raw_text" json:"ocr_raw_text,omitempty"`
	OCRModel       string         `gorm:"column:ocr_model;size:50" json:"ocr_model,omitempty"`
	OCRProcessedAt *time.Time     `gorm:"column:ocr_processed_at" json:"ocr_processed_at,omitempty"`
	ExtractedData  datatypes.JSON `json:"extracted_data,omitempty"`

	Status       string `gorm:"size:20;default:pending" json:"status"`
	ErrorMessage string `json:"error_message,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReceiptData is the structured payload extracted by OCR. Every field is
// optional; consumers must handle absence of any of them.
type ReceiptData struct {
	Merchant string           `json:"merchant,omitempty"`
	Date     string           `json:"date,omitempty"` // ISO YYYY-MM-DD
	Total    *decimal.Decimal `json:"total,omitempty"`
}

// ExtractedFields decodes the stored extracted-data blob. A nil or malformed
// blob yields the zero value rather than an error; matching is best effort.
func (r *Receipt) ExtractedFields() ReceiptData {
	var data ReceiptData
	if len(r.ExtractedData) == 0 {
		return data
	}
	if err := json.Unmarshal(r.ExtractedData, &data); err != nil {
		return ReceiptData{}
	}
	return data
}
