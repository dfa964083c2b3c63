package categories

import (
	"errors"
	"sync"

	"personal-finance-backend/internal/models"
	"personal-finance-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type childKey struct {
	parentID uuid.UUID
	name     string
}

// NameCache resolves categories by their localized (German) display name,
// memoizing repository hits. It is invalidated on every category mutation;
// there is no hidden process-wide state.
type NameCache struct {
	repo *repository.CategoryRepository

	mu       sync.RWMutex
	topLevel map[string]*models.Category
	children map[childKey]*models.Category
}

func NewNameCache(repo *repository.CategoryRepository) *NameCache {
	return &NameCache{
		repo:     repo,
		topLevel: make(map[string]*models.Category),
		children: make(map[childKey]*models.Category),
	}
}

// ResolveTopLevel finds a root category whose German name equals name
// exactly. A miss returns (nil, nil): category mapping is best effort.
func (c *NameCache) ResolveTopLevel(name string) (*models.Category, error) {
	if name == "" {
		return nil, nil
	}

	c.mu.RLock()
	cached, ok := c.topLevel[name]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	category, err := c.repo.FindTopLevelByGermanName(name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.topLevel[name] = category
	c.mu.Unlock()
	return category, nil
}

// ResolveChild finds a direct child of parentID by exact German name. A miss
// returns (nil, nil).
func (c *NameCache) ResolveChild(parentID uuid.UUID, name string) (*models.Category, error) {
	if name == "" {
		return nil, nil
	}

	key := childKey{parentID: parentID, name: name}
	c.mu.RLock()
	cached, ok := c.children[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	category, err := c.repo.FindChildByGermanName(parentID, name)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	c.mu.Lock()
	c.children[key] = category
	c.mu.Unlock()
	return category, nil
}

// Invalidate drops all cached entries. Called by the category service after
// any mutation.
func (c *NameCache) Invalidate() {
	c.mu.Lock()
	c.topLevel = make(map[string]*models.Category)
	c.children = make(map[childKey]*models.Category)
	c.mu.Unlock()
}
