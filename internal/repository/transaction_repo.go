package repository

import (
	"time"

	"personal-finance-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(tx *models.Transaction) error {
	return r.db.Create(tx).Error
}

func (r *TransactionRepository) GetByID(id, userID uuid.UUID) (*models.Transaction, error) {
	var tx models.Transaction
	err := r.db.
		Preload("Category").
		Preload("Subcategory").
		First(&tx, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &tx, nil
}

func (r *TransactionRepository) Save(tx *models.Transaction) error {
	return r.db.Save(tx).Error
}

func (r *TransactionRepository) Delete(tx *models.Transaction) error {
	return r.db.Delete(tx).Error
}

// ListParams are the optional filters for transaction listing.
type ListParams struct {
	StartDate  *time.Time
	EndDate    *time.Time
	CategoryID *uuid.UUID
	Search     string
	Offset     int
	Limit      int
}

// List returns a page of the user's transactions ordered by date descending,
// plus the total count for the filter set.
func (r *TransactionRepository) List(userID uuid.UUID, params ListParams) ([]models.Transaction, int64, error) {
	query := r.db.Model(&models.Transaction{}).Where("user_id = ?", userID)

	if params.StartDate != nil {
		query = query.Where("date >= ?", *params.StartDate)
	}
	if params.EndDate != nil {
		query = query.Where("date <= ?", *params.EndDate)
	}
	if params.CategoryID != nil {
		query = query.Where("category_id = ? OR subcategory_id = ?", *params.CategoryID, *params.CategoryID)
	}
	if params.Search != "" {
		like := "%" + params.Search + "%"
		query = query.Where("counterparty LIKE ? OR description LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 50
	}

	var txs []models.Transaction
	err := query.
		Order("date DESC").
		Offset(params.Offset).
		Limit(limit).
		Find(&txs).Error
	return txs, total, err
}

// ExistingHashes returns which of the given import hashes are already
// persisted for the user. Used by the importer's bulk duplicate check.
func (r *TransactionRepository) ExistingHashes(userID uuid.UUID, hashes []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(hashes) == 0 {
		return existing, nil
	}

	var found []string
	err := r.db.Model(&models.Transaction{}).
		Where("user_id = ? AND import_hash IN ?", userID, hashes).
		Pluck("import_hash", &found).Error
	if err != nil {
		return nil, err
	}
	for _, h := range found {
		existing[h] = struct{}{}
	}
	return existing, nil
}

// FindInDateRange returns up to limit of the user's transactions, optionally
// restricted to [start, end] inclusive. Used as the matcher candidate pool.
func (r *TransactionRepository) FindInDateRange(userID uuid.UUID, start, end *time.Time, limit int) ([]models.Transaction, error) {
	query := r.db.Where("user_id = ?", userID)
	if start != nil {
		query = query.Where("date >= ?", *start)
	}
	if end != nil {
		query = query.Where("date <= ?", *end)
	}

	var txs []models.Transaction
	err := query.Limit(limit).Find(&txs).Error
	return txs, err
}

// AmountsInRange returns the raw amounts of the user's transactions in the
// given window. Summation happens in the service with decimal arithmetic.
func (r *TransactionRepository) AmountsInRange(userID uuid.UUID, start, end *time.Time) ([]models.Transaction, error) {
	query := r.db.Select("amount", "category_id", "subcategory_id").Where("user_id = ?", userID)
	if start != nil {
		query = query.Where("date >= ?", *start)
	}
	if end != nil {
		query = query.Where("date <= ?", *end)
	}

	var txs []models.Transaction
	err := query.Find(&txs).Error
	return txs, err
}

// CountByCategory reports how many transactions reference the category as
// either main category or subcategory.
func (r *TransactionRepository) CountByCategory(categoryID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&models.Transaction{}).
		Where("category_id = ? OR subcategory_id = ?", categoryID, categoryID).
		Count(&count).Error
	return count, err
}
