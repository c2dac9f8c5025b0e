package dataset

import (
	"sync"

	"github.com/statkit/glm/pkg/errors"
)

// Provider supplies named tables of typed columns. The engine treats a
// provider as an opaque read-only source; any storage backend that can
// materialize a Dataset per logical table name satisfies it.
type Provider interface {
	Table(name string) (*Dataset, error)
}

// MapProvider is an in-memory Provider keyed by table name. It is safe for
// concurrent use.
type MapProvider struct {
	mu     sync.RWMutex
	tables map[string]*Dataset
}

// NewMapProvider creates an empty MapProvider.
func NewMapProvider() *MapProvider {
	return &MapProvider{tables: make(map[string]*Dataset)}
}

// Register adds or replaces a table.
func (p *MapProvider) Register(name string, d *Dataset) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tables[name] = d
}

// Table implements Provider.
func (p *MapProvider) Table(name string) (*Dataset, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	d, ok := p.tables[name]
	if !ok {
		return nil, errors.NewValueError("dataset.Table", "no table named '"+name+"'")
	}
	return d, nil
}
