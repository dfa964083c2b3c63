package repository

import (
	"personal-finance-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BudgetRepository struct {
	db *gorm.DB
}

func NewBudgetRepository(db *gorm.DB) *BudgetRepository {
	return &BudgetRepository{db: db}
}

func (r *BudgetRepository) Create(budget *models.Budget) error {
	return r.db.Create(budget).Error
}

func (r *BudgetRepository) Save(budget *models.Budget) error {
	return r.db.Save(budget).Error
}

func (r *BudgetRepository) Delete(budget *models.Budget) error {
	return r.db.Delete(budget).Error
}

func (r *BudgetRepository) GetByID(id, userID uuid.UUID) (*models.Budget, error) {
	var budget models.Budget
	err := r.db.Preload("Category").First(&budget, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &budget, nil
}

func (r *BudgetRepository) ListByUser(userID uuid.UUID) ([]models.Budget, error) {
	var budgets []models.Budget
	err := r.db.Preload("Category").Where("user_id = ?", userID).Order("created_at").Find(&budgets).Error
	return budgets, err
}
