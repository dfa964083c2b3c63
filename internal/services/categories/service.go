// Package categories manages the hierarchical category tree. The hierarchy is
// an arena of records keyed by ID with an optional parent key; children are
// derived by query, and cycle prevention is an ancestor walk at mutation time.
package categories

import (
	"errors"
	"fmt"

	"personal-finance-backend/internal/models"
	"personal-finance-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrNotFound      = errors.New("category not found")
	ErrHasChildren   = errors.New("category has child categories")
	ErrInUse         = errors.New("category is referenced by transactions")
	ErrCyclicParent  = errors.New("parent assignment would create a cycle")
	ErrInvalidParent = errors.New("parent category not found")
)

type Service struct {
	categories   *repository.CategoryRepository
	transactions *repository.TransactionRepository
	cache        *NameCache
	log          logrus.FieldLogger
}

func NewService(
	categories *repository.CategoryRepository,
	transactions *repository.TransactionRepository,
	cache *NameCache,
	log logrus.FieldLogger,
) *Service {
	return &Service{
		categories:   categories,
		transactions: transactions,
		cache:        cache,
		log:          log,
	}
}

// Cache exposes the name cache so the importer can share it.
func (s *Service) Cache() *NameCache {
	return s.cache
}

// Node is a category with its direct children, as served by the tree
// endpoint. Children of children are resolved one level deep only, matching
// the two-level category/subcategory model.
type Node struct {
	models.Category
	Children []models.Category `json:"children"`
}

func (s *Service) List() ([]models.Category, error) {
	return s.categories.GetAll()
}

func (s *Service) Get(id uuid.UUID) (*models.Category, error) {
	category, err := s.categories.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return category, nil
}

// Tree returns the top-level categories each with its queried children.
func (s *Service) Tree() ([]Node, error) {
	parents, err := s.categories.TopLevel()
	if err != nil {
		return nil, err
	}

	tree := make([]Node, 0, len(parents))
	for _, parent := range parents {
		children, err := s.categories.Children(parent.ID)
		if err != nil {
			return nil, err
		}
		if children == nil {
			children = []models.Category{}
		}
		tree = append(tree, Node{Category: parent, Children: children})
	}
	return tree, nil
}

type CreateInput struct {
	Name      string
	NameDE    string
	ParentID  *uuid.UUID
	IsIncome  bool
	Icon      string
	Color     string
	SortOrder int
}

func (s *Service) Create(input CreateInput) (*models.Category, error) {
	if input.ParentID != nil {
		if _, err := s.categories.GetByID(*input.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrInvalidParent
			}
			return nil, err
		}
	}

	category := &models.Category{
		ID:        uuid.New(),
		Name:      input.Name,
		NameDE:    input.NameDE,
		ParentID:  input.ParentID,
		IsIncome:  input.IsIncome,
		Icon:      input.Icon,
		Color:     input.Color,
		SortOrder: input.SortOrder,
	}
	if err := s.categories.Create(category); err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return category, nil
}

type UpdateInput struct {
	Name      *string
	NameDE    *string
	ParentID  *uuid.UUID
	SetParent bool // distinguishes "set parent to nil" from "leave unchanged"
	IsIncome  *bool
	Icon      *string
	Color     *string
	SortOrder *int
}

func (s *Service) Update(id uuid.UUID, input UpdateInput) (*models.Category, error) {
	category, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if input.SetParent {
		if err := s.checkParent(id, input.ParentID); err != nil {
			return nil, err
		}
		category.ParentID = input.ParentID
	}
	if input.Name != nil {
		category.Name = *input.Name
	}
	if input.NameDE != nil {
		category.NameDE = *input.NameDE
	}
	if input.IsIncome != nil {
		category.IsIncome = *input.IsIncome
	}
	if input.Icon != nil {
		category.Icon = *input.Icon
	}
	if input.Color != nil {
		category.Color = *input.Color
	}
	if input.SortOrder != nil {
		category.SortOrder = *input.SortOrder
	}

	if err := s.categories.Save(category); err != nil {
		return nil, err
	}
	s.cache.Invalidate()
	return category, nil
}

// checkParent rejects self-reference and any assignment where the new parent
// is the category itself or one of its descendants. The walk follows parent
// keys upward from the proposed parent; the tree is acyclic by this check.
func (s *Service) checkParent(id uuid.UUID, parentID *uuid.UUID) error {
	if parentID == nil {
		return nil
	}
	if *parentID == id {
		return ErrCyclicParent
	}

	current := parentID
	for current != nil {
		ancestor, err := s.categories.GetByID(*current)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvalidParent
			}
			return err
		}
		if ancestor.ID == id {
			return ErrCyclicParent
		}
		current = ancestor.ParentID
	}
	return nil
}

// Delete removes a category. Categories with children or with transactions
// referencing them cannot be deleted.
func (s *Service) Delete(id uuid.UUID) error {
	category, err := s.Get(id)
	if err != nil {
		return err
	}

	hasChildren, err := s.categories.HasChildren(id)
	if err != nil {
		return err
	}
	if hasChildren {
		return ErrHasChildren
	}

	count, err := s.transactions.CountByCategory(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w (%d)", ErrInUse, count)
	}

	if err := s.categories.Delete(category); err != nil {
		return err
	}
	s.cache.Invalidate()
	s.log.WithField("category_id", id).Info("category deleted")
	return nil
}

func (s *Service) ListTaxCategories(anlage string) ([]models.TaxCategory, error) {
	return s.categories.ListTaxCategories(anlage)
}
