package projects

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/avi3tal/blueprint/internal/graph"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const projectFile = "project.json"

// FileStore keeps each project in <root>/<id>/project.json
type FileStore struct {
	root string
	mu   sync.Mutex
}

// NewFileStore creates root if it does not exist
func NewFileStore(root string) (*FileStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create project root %s", root)
	}
	return &FileStore{root: root}, nil
}

func (f *FileStore) Root() string { return f.root }

func (f *FileStore) Get(_ context.Context, id string) (*Project, error) {
	if err := validateID(id); err != nil {
		return nil, fmt.Errorf("%w: %q", err, id)
	}
	return f.read(id)
}

// List returns the metadata of every project directory. Hidden entries and
// directories without a project file are skipped.
func (f *FileStore) List(_ context.Context) ([]Metadata, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", f.root)
	}

	out := make([]Metadata, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		p, err := f.read(entry.Name())
		if errors.Is(err, ErrProjectNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, p.Metadata)
	}
	sortMetadata(out)
	return out, nil
}

func (f *FileStore) Create(_ context.Context, id, name string) (*Project, error) {
	if id == "" {
		id = uuid.New().String()
	}
	if err := validateID(id); err != nil {
		return nil, fmt.Errorf("%w: %q", err, id)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	dir := filepath.Join(f.root, id)
	if _, err := os.Stat(dir); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrProjectExists, id)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create project %s", id)
	}

	now := time.Now().UTC()
	p := &Project{Metadata: Metadata{ID: id, Name: name, CreatedAt: now, LastModified: now}}
	if err := f.write(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (f *FileStore) Delete(_ context.Context, id string) error {
	if err := validateID(id); err != nil {
		return fmt.Errorf("%w: %q", err, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.RemoveAll(filepath.Join(f.root, id)); err != nil {
		return errors.Wrapf(err, "failed to delete project %s", id)
	}
	return nil
}

func (f *FileStore) SaveGraph(_ context.Context, id string, doc graph.Document, variables map[string]any) (*Project, error) {
	if err := validateID(id); err != nil {
		return nil, fmt.Errorf("%w: %q", err, id)
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	p, err := f.read(id)
	if err != nil {
		return nil, err
	}
	p.Graph = &doc
	p.Variables = variables
	p.LastModified = time.Now().UTC()
	if err := f.write(p); err != nil {
		return nil, err
	}
	return f.read(id)
}

func (f *FileStore) read(id string) (*Project, error) {
	data, err := os.ReadFile(filepath.Join(f.root, id, projectFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrProjectNotFound, id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read project %s", id)
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, errors.Wrapf(err, "failed to decode project %s", id)
	}
	return &p, nil
}

// write replaces the project file through a rename so readers never see a
// partial file
func (f *FileStore) write(p *Project) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return errors.Wrapf(err, "failed to encode project %s", p.ID)
	}
	dir := filepath.Join(f.root, p.ID)
	tmp, err := os.CreateTemp(dir, ".project-*.json")
	if err != nil {
		return errors.Wrapf(err, "failed to write project %s", p.ID)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "failed to write project %s", p.ID)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "failed to write project %s", p.ID)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(dir, projectFile)); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrapf(err, "failed to write project %s", p.ID)
	}
	return nil
}
