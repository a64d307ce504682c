package application

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/kolabsys/phlesk/internal/extension/domain"
)

// Entry is a registered extension.
type Entry struct {
	Capability domain.Capability
	Active     bool
}

// Registry holds the extensions known to the process.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		entries: make(map[string]*Entry),
		logger:  logger,
	}
}

// Register adds an extension. Registered extensions start active.
func (r *Registry) Register(capability domain.Capability) error {
	id := domain.NormalizeID(capability.ID)
	if id == "" {
		return domain.ErrMissingID
	}
	capability.ID = id

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[id]; exists {
		return domain.ErrExtensionAlreadyRegistered
	}
	r.entries[id] = &Entry{Capability: capability, Active: true}

	r.logger.Info("registered extension",
		"extension", id,
		"permissions", len(capability.Permissions),
	)
	return nil
}

// SetActive marks an extension active or inactive.
func (r *Registry) SetActive(id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.entries[domain.NormalizeID(id)]
	if !exists {
		return domain.ErrExtensionNotFound
	}
	entry.Active = active
	return nil
}

// Get returns a copy of the entry for id.
func (r *Registry) Get(id string) (Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[domain.NormalizeID(id)]
	if !exists {
		return Entry{}, domain.ErrExtensionNotFound
	}
	return *entry, nil
}

// IDs returns the registered extension ids in order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
