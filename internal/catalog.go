package internal

import (
	"context"
	"sync"

	authoring "github.com/arabhyaWorks/arunachal-authoring"
)

// Catalog caches category attribute definitions in memory. Definitions
// change rarely, so reads are served from cache and loads happen at most
// once per category until invalidated.
type Catalog struct {
	mu      sync.RWMutex
	source  authoring.CategoryService
	defs    map[int64][]authoring.AttributeDefinition
	cats    []authoring.Category
	catsSet bool
}

// NewCatalog creates a catalog backed by the given category source.
func NewCatalog(source authoring.CategoryService) *Catalog {
	return &Catalog{
		source: source,
		defs:   make(map[int64][]authoring.AttributeDefinition),
	}
}

// Categories returns the cached category list, loading it on first use.
func (c *Catalog) Categories(ctx context.Context) ([]authoring.Category, error) {
	c.mu.RLock()
	if c.catsSet {
		cats := c.cats
		c.mu.RUnlock()
		return cats, nil
	}
	c.mu.RUnlock()

	cats, err := c.source.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.cats = cats
	c.catsSet = true
	c.mu.Unlock()
	return cats, nil
}

// Definitions returns the attribute definitions for a category, loading
// and caching them on first use.
func (c *Catalog) Definitions(ctx context.Context, categoryID int64) ([]authoring.AttributeDefinition, error) {
	c.mu.RLock()
	defs, ok := c.defs[categoryID]
	c.mu.RUnlock()
	if ok {
		return defs, nil
	}

	defs, err := c.source.CategoryAttributes(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.defs[categoryID] = defs
	c.mu.Unlock()
	return defs, nil
}

// Invalidate drops the cached definitions for one category, or everything
// when categoryID is zero.
func (c *Catalog) Invalidate(categoryID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if categoryID == 0 {
		c.defs = make(map[int64][]authoring.AttributeDefinition)
		c.cats = nil
		c.catsSet = false
		return
	}
	delete(c.defs, categoryID)
}
