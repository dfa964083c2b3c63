package repository

import (
	"personal-finance-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReceiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

func (r *ReceiptRepository) Create(receipt *models.Receipt) error {
	return r.db.Create(receipt).Error
}

func (r *ReceiptRepository) Save(receipt *models.Receipt) error {
	return r.db.Save(receipt).Error
}

func (r *ReceiptRepository) Delete(receipt *models.Receipt) error {
	return r.db.Delete(receipt).Error
}

func (r *ReceiptRepository) GetByID(id, userID uuid.UUID) (*models.Receipt, error) {
	var receipt models.Receipt
	err := r.db.First(&receipt, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *ReceiptRepository) ListByUser(userID uuid.UUID, limit int) ([]models.Receipt, error) {
	if limit <= 0 {
		limit = 50
	}
	var receipts []models.Receipt
	err := r.db.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&receipts).Error
	return receipts, err
}
