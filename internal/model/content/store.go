package content

// Store exposes read-only module retrieval for HTTP handlers.
type Store interface {
	List() []Module
	FindBySlug(slug string) (Module, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Module
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied modules.
func NewMemoryStore(items []Module) *MemoryStore {
	return &MemoryStore{items: append([]Module(nil), items...)}
}

// List returns the modules in their listing order.
func (s *MemoryStore) List() []Module {
	return append([]Module(nil), s.items...)
}

// FindBySlug looks up a module by its slug.
func (s *MemoryStore) FindBySlug(slug string) (Module, bool) {
	for _, item := range s.items {
		if item.Slug == slug {
			return item, true
		}
	}
	return Module{}, false
}
