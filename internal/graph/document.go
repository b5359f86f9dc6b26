package graph

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/avi3tal/blueprint/internal/schema"
	"github.com/pkg/errors"
	"go.yaml.in/yaml/v3"
)

// Document is the plain node/edge record shape graphs are exchanged in
type Document struct {
	Nodes []NodeRecord `json:"nodes" yaml:"nodes"`
	Edges []EdgeRecord `json:"edges" yaml:"edges"`
}

// NodeRecord is the persisted form of a node
type NodeRecord struct {
	ID       string         `json:"id" yaml:"id"`
	Type     string         `json:"type" yaml:"type"`
	Label    string         `json:"label,omitempty" yaml:"label,omitempty"`
	Position Position       `json:"position" yaml:"position"`
	Data     map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// EdgeRecord is the persisted form of an edge
type EdgeRecord struct {
	ID           string `json:"id" yaml:"id"`
	Source       string `json:"source" yaml:"source"`
	SourceHandle string `json:"sourceHandle" yaml:"sourceHandle"`
	Target       string `json:"target" yaml:"target"`
	TargetHandle string `json:"targetHandle" yaml:"targetHandle"`
}

// Document flattens the graph structure. Runtime state is not included.
func (g *Graph) Document() Document {
	doc := Document{
		Nodes: []NodeRecord{},
		Edges: []EdgeRecord{},
	}
	for _, n := range g.Nodes() {
		rec := NodeRecord{
			ID:       n.ID,
			Type:     n.TypeID,
			Label:    n.Label,
			Position: n.Position,
		}
		if len(n.Params) > 0 {
			rec.Data = n.Params.Clone()
		}
		doc.Nodes = append(doc.Nodes, rec)
	}
	for _, e := range g.Edges() {
		doc.Edges = append(doc.Edges, EdgeRecord{
			ID:           e.ID,
			Source:       e.Source,
			SourceHandle: e.SourcePort,
			Target:       e.Target,
			TargetHandle: e.TargetPort,
		})
	}
	return doc
}

// FromDocument rebuilds a graph, validating every node and edge on the way
func FromDocument(name string, doc Document, registry *schema.Registry, opt ...Option) (*Graph, error) {
	g := NewGraph(name, registry, opt...)
	for _, rec := range doc.Nodes {
		n := NewNode(rec.ID, rec.Type, schema.Values(rec.Data)).
			WithLabel(rec.Label).
			WithPosition(rec.Position.X, rec.Position.Y)
		if _, err := g.AddNode(n); err != nil {
			return nil, errors.Wrap(err, "failed to load graph document")
		}
	}
	for _, rec := range doc.Edges {
		e := NewEdge(rec.ID, rec.Source, rec.SourceHandle, rec.Target, rec.TargetHandle)
		if _, err := g.AddEdge(e); err != nil {
			return nil, errors.Wrap(err, "failed to load graph document")
		}
	}
	return g, nil
}

// MarshalJSON encodes the graph as its Document
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.Document())
}

// DecodeDocument parses a document in "json" or "yaml" format
func DecodeDocument(data []byte, format string) (Document, error) {
	var doc Document
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return Document{}, errors.Wrap(err, "failed to parse yaml graph document")
		}
	default:
		if err := json.Unmarshal(data, &doc); err != nil {
			return Document{}, errors.Wrap(err, "failed to parse json graph document")
		}
	}
	return doc, nil
}

// LoadDocument reads a document file, choosing the format by extension
func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, errors.Wrapf(err, "failed to read graph document %s", path)
	}
	return DecodeDocument(data, strings.TrimPrefix(filepath.Ext(path), "."))
}
