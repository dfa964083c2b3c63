package repository

import (
	"personal-finance-backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

func (r *CategoryRepository) Create(category *models.Category) error {
	return r.db.Create(category).Error
}

func (r *CategoryRepository) Save(category *models.Category) error {
	return r.db.Save(category).Error
}

func (r *CategoryRepository) Delete(category *models.Category) error {
	return r.db.Delete(category).Error
}

func (r *CategoryRepository) GetByID(id uuid.UUID) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CategoryRepository) GetAll() ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Order("sort_order, name").Find(&categories).Error
	return categories, err
}

// TopLevel returns the root categories (no parent).
func (r *CategoryRepository) TopLevel() ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Where("parent_id IS NULL").Order("sort_order, name").Find(&categories).Error
	return categories, err
}

// Children returns the direct children of a category.
func (r *CategoryRepository) Children(parentID uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.Where("parent_id = ?", parentID).Order("sort_order, name").Find(&categories).Error
	return categories, err
}

func (r *CategoryRepository) HasChildren(id uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.Category{}).Where("parent_id = ?", id).Count(&count).Error
	return count > 0, err
}

// FindTopLevelByGermanName resolves a top-level category by its exact
// localized (German) display name.
func (r *CategoryRepository) FindTopLevelByGermanName(name string) (*models.Category, error) {
	var category models.Category
	err := r.db.First(&category, "name_de = ? AND parent_id IS NULL", name).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// FindChildByGermanName resolves a direct child of parentID by its exact
// localized (German) display name.
func (r *CategoryRepository) FindChildByGermanName(parentID uuid.UUID, name string) (*models.Category, error) {
	var category models.Category
	err := r.db.First(&category, "name_de = ? AND parent_id = ?", name, parentID).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

// ListTaxCategories returns tax categories, optionally filtered by the tax
// form (Anlage) they belong to.
func (r *CategoryRepository) ListTaxCategories(anlage string) ([]models.TaxCategory, error) {
	query := r.db.Order("name")
	if anlage != "" {
		query = query.Where("anlage = ?", anlage)
	}
	var taxCategories []models.TaxCategory
	err := query.Find(&taxCategories).Error
	return taxCategories, err
}
