package sqlgen

import (
	"sync"

	"github.com/leapstack-labs/leaporm/pkg/dialect"
	"github.com/leapstack-labs/leaporm/pkg/mapping"
)

type generatorKey struct {
	m       *mapping.EntityMapping
	dialect string
}

// Generators caches one Generator per (mapping, dialect). The zero value is
// ready to use. Entries are never evicted.
type Generators struct {
	entries sync.Map // generatorKey -> *Generator
}

// Get returns the cached generator for (m, d), creating it on first use.
func (c *Generators) Get(m *mapping.EntityMapping, d dialect.Dialect) (*Generator, error) {
	if m == nil || d == nil {
		return New(m, d)
	}
	key := generatorKey{m: m, dialect: d.Name()}
	if g, ok := c.entries.Load(key); ok {
		return g.(*Generator), nil
	}
	g, err := New(m, d)
	if err != nil {
		return nil, err
	}
	actual, _ := c.entries.LoadOrStore(key, g)
	return actual.(*Generator), nil
}
