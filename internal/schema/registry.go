package schema

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrUnknownType is returned when a type id has no registered schema
	ErrUnknownType = errors.New("unknown node type")

	// ErrDuplicateType is returned when registering a type id twice
	ErrDuplicateType = errors.New("node type already registered")
)

// Registry provides node type lookup by type id.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*NodeTypeSchema
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{types: make(map[string]*NodeTypeSchema)}
}

// Register validates and adds a node type.
func (r *Registry) Register(s NodeTypeSchema) error {
	if err := s.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[s.TypeID]; exists {
		return errors.Wrapf(ErrDuplicateType, "register %s", s.TypeID)
	}
	r.types[s.TypeID] = &s
	return nil
}

// Get retrieves a node type by id.
func (r *Registry) Get(typeID string) (*NodeTypeSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.types[typeID]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownType, "get %s", typeID)
	}
	return s, nil
}

// List returns all registered schemas sorted by type id.
func (r *Registry) List() []*NodeTypeSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*NodeTypeSchema, 0, len(r.types))
	for _, s := range r.types {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TypeID < out[j].TypeID })
	return out
}
