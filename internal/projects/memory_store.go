package projects

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/avi3tal/blueprint/internal/graph"
	"github.com/google/uuid"
)

type MemoryStore struct {
	projects map[string]*Project
	mu       sync.RWMutex
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[string]*Project),
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, exists := m.projects[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	return clone(p)
}

func (m *MemoryStore) List(_ context.Context) ([]Metadata, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Metadata, 0, len(m.projects))
	for _, p := range m.projects {
		out = append(out, p.Metadata)
	}
	sortMetadata(out)
	return out, nil
}

func (m *MemoryStore) Create(_ context.Context, id, name string) (*Project, error) {
	if id == "" {
		id = uuid.New().String()
	}
	if err := validateID(id); err != nil {
		return nil, fmt.Errorf("%w: %q", err, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.projects[id]; exists {
		return nil, fmt.Errorf("%w: %s", ErrProjectExists, id)
	}
	now := time.Now().UTC()
	p := &Project{Metadata: Metadata{ID: id, Name: name, CreatedAt: now, LastModified: now}}
	m.projects[id] = p
	return clone(p)
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.projects, id)
	return nil
}

func (m *MemoryStore) SaveGraph(_ context.Context, id string, doc graph.Document, variables map[string]any) (*Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, exists := m.projects[id]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	updated, err := clone(&Project{Metadata: p.Metadata, Graph: &doc, Variables: variables})
	if err != nil {
		return nil, err
	}
	updated.LastModified = time.Now().UTC()
	m.projects[id] = updated
	return clone(updated)
}

func sortMetadata(ms []Metadata) {
	sort.Slice(ms, func(i, j int) bool {
		if ms[i].CreatedAt.Equal(ms[j].CreatedAt) {
			return ms[i].ID < ms[j].ID
		}
		return ms[i].CreatedAt.Before(ms[j].CreatedAt)
	})
}
