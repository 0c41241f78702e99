package mapping

import (
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache holds compiled mappings for the lifetime of the process.
//
// Each entity type is compiled at most once even under concurrent first
// access; a mapping becomes visible to readers only after it is complete and
// is never evicted. Failed builds are not cached.
type Cache struct {
	model   *ModelBuilder
	logger  *slog.Logger
	group   singleflight.Group
	entries sync.Map // reflect.Type -> *EntityMapping
}

// NewCache creates a cache over model. A nil model means every entity is
// built from conventions alone.
func NewCache(model *ModelBuilder, logger *slog.Logger) *Cache {
	if model == nil {
		model = NewModelBuilder()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{model: model, logger: logger}
}

// Model returns the builder the cache compiles from.
func (c *Cache) Model() *ModelBuilder {
	return c.model
}

// For returns the mapping for T.
func For[T any](c *Cache) (*EntityMapping, error) {
	return c.Get(reflect.TypeFor[T]())
}

// Get returns the mapping for t, compiling it on first access.
func (c *Cache) Get(t reflect.Type) (*EntityMapping, error) {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if m, ok := c.entries.Load(t); ok {
		return m.(*EntityMapping), nil
	}
	if t == nil {
		return c.model.Build(nil)
	}

	v, err, _ := c.group.Do(typeKey(t), func() (any, error) {
		if m, ok := c.entries.Load(t); ok {
			return m, nil
		}
		m, err := c.model.Build(t)
		if err != nil {
			c.logger.Debug("entity mapping failed", "entity", t.String(), "error", err)
			return nil, err
		}
		actual, _ := c.entries.LoadOrStore(t, m)
		c.logger.Debug("entity mapping built",
			"entity", m.Name(),
			"table", m.Table(),
			"properties", len(m.properties),
			"keys", len(m.keys))
		return actual, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*EntityMapping), nil
}

// Len returns the number of published mappings.
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// typeKey identifies t by its runtime type descriptor. Names are not unique:
// types declared in different functions share PkgPath and String.
func typeKey(t reflect.Type) string {
	return fmt.Sprintf("%p", t)
}

// Default is the process-wide cache used when no cache is supplied.
// It is created at process start, populated lazily and never evicted.
var Default = NewCache(NewModelBuilder(), nil)
