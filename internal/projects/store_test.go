package projects

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/avi3tal/blueprint/internal/graph"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "projects"))
	require.NoError(t, err)
	return map[string]Store{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func sampleDocument() graph.Document {
	return graph.Document{
		Nodes: []graph.NodeRecord{
			{ID: "onStart", Type: "ON_START"},
			{ID: "log", Type: "CONSOLE_LOG", Position: graph.Position{X: 10, Y: 20}},
		},
		Edges: []graph.EdgeRecord{
			{ID: "e1", Source: "onStart", SourceHandle: "default", Target: "log", TargetHandle: "default"},
		},
	}
}

func TestStore_CreateGetList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			p, err := s.Create(ctx, "p1", "First")
			require.NoError(t, err)
			require.Equal(t, "p1", p.ID)
			require.Equal(t, "First", p.Name)
			require.False(t, p.CreatedAt.IsZero())
			require.Equal(t, p.CreatedAt, p.LastModified)
			require.Nil(t, p.Graph)

			generated, err := s.Create(ctx, "", "Second")
			require.NoError(t, err)
			require.NotEmpty(t, generated.ID)

			got, err := s.Get(ctx, "p1")
			require.NoError(t, err)
			require.Equal(t, p.Metadata, got.Metadata)

			list, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			require.ElementsMatch(t, []string{"p1", generated.ID}, []string{list[0].ID, list[1].ID})
		})
	}
}

func TestStore_CreateExisting(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Create(ctx, "p1", "First")
			require.NoError(t, err)
			_, err = s.Create(ctx, "p1", "Again")
			require.ErrorIs(t, err, ErrProjectExists)
		})
	}
}

func TestStore_InvalidID(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, id := range []string{"..", "a/b", `a\b`, ".hidden"} {
				_, err := s.Create(ctx, id, "x")
				require.ErrorIs(t, err, ErrInvalidID, id)
			}
		})
	}
}

func TestStore_SaveGraph(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			created, err := s.Create(ctx, "p1", "First")
			require.NoError(t, err)

			doc := sampleDocument()
			saved, err := s.SaveGraph(ctx, "p1", doc, map[string]any{"Sum": 0})
			require.NoError(t, err)
			require.NotNil(t, saved.Graph)
			require.Equal(t, doc, *saved.Graph)
			require.False(t, saved.LastModified.Before(created.LastModified))

			got, err := s.Get(ctx, "p1")
			require.NoError(t, err)
			require.Equal(t, doc, *got.Graph)
			// numbers come back as JSON numbers
			require.EqualValues(t, 0, got.Variables["Sum"])

			_, err = s.SaveGraph(ctx, "missing", doc, nil)
			require.ErrorIs(t, err, ErrProjectNotFound)
		})
	}
}

func TestStore_Delete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Create(ctx, "p1", "First")
			require.NoError(t, err)

			require.NoError(t, s.Delete(ctx, "p1"))
			_, err = s.Get(ctx, "p1")
			require.ErrorIs(t, err, ErrProjectNotFound)

			require.NoError(t, s.Delete(ctx, "p1"))
		})
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Create(ctx, "p1", "First")
	require.NoError(t, err)
	saved, err := s.SaveGraph(ctx, "p1", sampleDocument(), map[string]any{"Sum": 0})
	require.NoError(t, err)

	saved.Variables["Sum"] = 99
	saved.Graph.Nodes[0].ID = "changed"

	got, err := s.Get(ctx, "p1")
	require.NoError(t, err)
	require.EqualValues(t, 0, got.Variables["Sum"])
	require.Equal(t, "onStart", got.Graph.Nodes[0].ID)
}

func TestFileStore_Layout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	root := t.TempDir()

	s, err := NewFileStore(root)
	require.NoError(t, err)
	_, err = s.Create(ctx, "p1", "First")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(root, "p1", "project.json"))
	require.NoError(t, err)

	// hidden and foreign directories are ignored
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".cache"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "stray"), 0o755))

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, "First", list[0].Name)
}

func TestFileStore_ReadsExistingProject(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "legacy"), 0o755))
	raw := `{"id":"legacy","name":"Old","createdAt":"2024-01-02T03:04:05.000Z","lastModified":"2024-01-02T03:04:05.000Z"}`
	require.NoError(t, os.WriteFile(filepath.Join(root, "legacy", "project.json"), []byte(raw), 0o644))

	s, err := NewFileStore(root)
	require.NoError(t, err)
	p, err := s.Get(context.Background(), "legacy")
	require.NoError(t, err)
	require.Equal(t, "Old", p.Name)
	require.Equal(t, 2024, p.CreatedAt.Year())
	require.Nil(t, p.Graph)
}
