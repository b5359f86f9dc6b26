package projects

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/avi3tal/blueprint/internal/graph"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrProjectExists   = errors.New("project already exists")
	ErrInvalidID       = errors.New("invalid project id")
)

// Metadata describes a project without its content
type Metadata struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CreatedAt    time.Time `json:"createdAt"`
	LastModified time.Time `json:"lastModified"`
}

// Project is a named graph together with the variables it starts from
type Project struct {
	Metadata
	Graph     *graph.Document `json:"graph,omitempty"`
	Variables map[string]any  `json:"variables,omitempty"`
}

// Store persists projects
type Store interface {
	Get(ctx context.Context, id string) (*Project, error)
	List(ctx context.Context) ([]Metadata, error)
	// Create starts an empty project. An empty id is replaced by a generated one.
	Create(ctx context.Context, id, name string) (*Project, error)
	// Delete removes a project. Deleting a missing project is not an error.
	Delete(ctx context.Context, id string) error
	SaveGraph(ctx context.Context, id string, doc graph.Document, variables map[string]any) (*Project, error)
}

func validateID(id string) error {
	if id == "" || id == "." || id == ".." || strings.HasPrefix(id, ".") || strings.ContainsAny(id, `/\`) {
		return ErrInvalidID
	}
	return nil
}

// clone deep-copies a project so callers never share maps with a store
func clone(p *Project) (*Project, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	var out Project
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
