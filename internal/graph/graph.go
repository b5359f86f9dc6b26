package graph

import (
	"fmt"
	"strings"
	"sync"

	"github.com/avi3tal/blueprint/internal/schema"
	"github.com/avi3tal/blueprint/pkg/types"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const defaultGraphName = "graph"

// Graph is the mutable collection of node instances and edges. Structural
// edits are rejected with ErrGraphLocked while a pass holds the graph.
type Graph struct {
	id       string
	name     string
	metadata map[string]any
	registry *schema.Registry

	mu     sync.RWMutex
	nodes  map[string]*Node
	order  []string // insertion order of node ids
	edges  []Edge
	locked bool
}

// NewGraph creates an empty graph whose node types resolve through registry
func NewGraph(name string, registry *schema.Registry, opt ...Option) *Graph {
	graphName := defaultGraphName
	if name != "" {
		graphName = name
	}

	g := Graph{
		name:     graphName,
		metadata: make(map[string]any),
		registry: registry,
		nodes:    make(map[string]*Node),
	}
	for _, o := range opt {
		o(&g)
	}
	if g.id == "" {
		g.id = fmt.Sprintf("%s-%s", strings.ReplaceAll(graphName, " ", "-"), uuid.New().String())
	}
	return &g
}

func (g *Graph) ID() string   { return g.id }
func (g *Graph) Name() string { return g.name }

// Registry returns the node type registry the graph validates against
func (g *Graph) Registry() *schema.Registry { return g.registry }

// Metadata returns a copy of the graph metadata
func (g *Graph) Metadata() map[string]any {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make(map[string]any, len(g.metadata))
	for k, v := range g.metadata {
		out[k] = v
	}
	return out
}

// AddNode adds a node instance and returns its id
func (g *Graph) AddNode(n Node) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.locked {
		return "", NewEditError("add node", n.ID, ErrGraphLocked)
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if _, exists := g.nodes[n.ID]; exists {
		return "", NewEditError("add node", n.ID, errors.Wrap(ErrInvalidNode, "duplicate id"))
	}
	if _, err := g.registry.Get(n.TypeID); err != nil {
		return "", NewEditError("add node", n.ID, errors.Wrap(ErrInvalidNode, err.Error()))
	}

	stored := n.clone()
	stored.resetRuntime()
	g.nodes[n.ID] = &stored
	g.order = append(g.order, n.ID)
	return n.ID, nil
}

// RemoveNode removes a node and every edge touching it
func (g *Graph) RemoveNode(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.locked {
		return NewEditError("remove node", id, ErrGraphLocked)
	}
	if _, exists := g.nodes[id]; !exists {
		return NewEditError("remove node", id, ErrNodeNotFound)
	}

	delete(g.nodes, id)
	for i, nid := range g.order {
		if nid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}

	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	g.edges = kept
	return nil
}

// AddEdge validates and adds an edge and returns its id
func (g *Graph) AddEdge(e Edge) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.locked {
		return "", NewEditError("add edge", e.ID, ErrGraphLocked)
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	for _, existing := range g.edges {
		if existing.ID == e.ID {
			return "", NewEditError("add edge", e.ID, errors.Wrap(ErrInvalidEdge, "duplicate id"))
		}
	}

	kind, err := g.classify(e)
	if err != nil {
		return "", NewEditError("add edge", e.ID, err)
	}
	e.Kind = kind
	g.edges = append(g.edges, e)
	return e.ID, nil
}

// classify checks both endpoints and returns the edge kind
func (g *Graph) classify(e Edge) (EdgeKind, error) {
	if err := e.Validate(); err != nil {
		return "", errors.Wrap(ErrInvalidEdge, err.Error())
	}

	source, ok := g.nodes[e.Source]
	if !ok {
		return "", errors.Wrapf(ErrInvalidEdge, "source node %s does not exist", e.Source)
	}
	target, ok := g.nodes[e.Target]
	if !ok {
		return "", errors.Wrapf(ErrInvalidEdge, "target node %s does not exist", e.Target)
	}

	sourceSchema, err := g.registry.Get(source.TypeID)
	if err != nil {
		return "", errors.Wrap(ErrInvalidEdge, err.Error())
	}
	targetSchema, err := g.registry.Get(target.TypeID)
	if err != nil {
		return "", errors.Wrap(ErrInvalidEdge, err.Error())
	}

	_, sourceValue := sourceSchema.ValueOutput(e.SourcePort)
	_, targetValue := targetSchema.ValueInput(e.TargetPort)
	sourceExec := sourceSchema.ExecOutput(e.SourcePort)
	targetExec := targetSchema.ExecInput(e.TargetPort)

	switch {
	case sourceValue && targetValue:
		return EdgeValue, nil
	case sourceExec && targetExec:
		return EdgeExec, nil
	case !sourceValue && !sourceExec:
		return "", errors.Wrapf(ErrInvalidEdge, "source port %s not found on %s", e.SourcePort, e.Source)
	case !targetValue && !targetExec:
		return "", errors.Wrapf(ErrInvalidEdge, "target port %s not found on %s", e.TargetPort, e.Target)
	default:
		return "", errors.Wrapf(ErrInvalidEdge, "cannot connect %s to %s: value and exec ports do not mix", e.SourcePort, e.TargetPort)
	}
}

// RemoveEdge removes an edge by id
func (g *Graph) RemoveEdge(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.locked {
		return NewEditError("remove edge", id, ErrGraphLocked)
	}
	for i, e := range g.edges {
		if e.ID == id {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			return nil
		}
	}
	return NewEditError("remove edge", id, ErrEdgeNotFound)
}

// Node returns a snapshot of a node
func (g *Graph) Node(id string) (Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.clone(), true
}

// Nodes returns snapshots of all nodes in insertion order
func (g *Graph) Nodes() []Node {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.nodes[id].clone())
	}
	return out
}

// Edges returns all edges in declaration order
func (g *Graph) Edges() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]Edge(nil), g.edges...)
}

// EdgesFrom returns the edges leaving nodeID, optionally only from port
func (g *Graph) EdgesFrom(nodeID, port string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []Edge
	for _, e := range g.edges {
		if e.Source == nodeID && (port == "" || e.SourcePort == port) {
			out = append(out, e)
		}
	}
	return out
}

// EdgesTo returns the edges entering nodeID, optionally only into port
func (g *Graph) EdgesTo(nodeID, port string) []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []Edge
	for _, e := range g.edges {
		if e.Target == nodeID && (port == "" || e.TargetPort == port) {
			out = append(out, e)
		}
	}
	return out
}

// FindByType returns the id of the first node of typeID in insertion order
func (g *Graph) FindByType(typeID string) (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, id := range g.order {
		if g.nodes[id].TypeID == typeID {
			return id, true
		}
	}
	return "", false
}

// Acquire marks a pass as in progress. It fails if one already is.
func (g *Graph) Acquire() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.locked {
		return ErrGraphLocked
	}
	g.locked = true
	return nil
}

// Release ends the pass started by Acquire
func (g *Graph) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.locked = false
}

// Locked reports whether a pass is in progress
func (g *Graph) Locked() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.locked
}

// ResetRuntime sets every node back to idle with empty inputs and outputs
func (g *Graph) ResetRuntime() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for _, n := range g.nodes {
		n.resetRuntime()
	}
}

// SetStatus records a node's status
func (g *Graph) SetStatus(id string, s types.NodeStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.nodes[id]; ok {
		n.Status = s
	}
}

// SetInputs records the inputs a node last ran with
func (g *Graph) SetInputs(id string, values schema.Values) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.nodes[id]; ok {
		n.LastInputs = values.Clone()
	}
}

// SetOutputs replaces a node's cached outputs
func (g *Graph) SetOutputs(id string, values schema.Values) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if n, ok := g.nodes[id]; ok {
		n.LastOutputs = values.Clone()
	}
}

// MergeOutputs adds values to a node's cached outputs
func (g *Graph) MergeOutputs(id string, values schema.Values) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	if n.LastOutputs == nil {
		n.LastOutputs = schema.Values{}
	}
	for k, v := range values {
		n.LastOutputs[k] = v
	}
}

// Output reads one cached output value of a node
func (g *Graph) Output(id, port string) (any, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	if !ok {
		return nil, false
	}
	v, ok := n.LastOutputs[port]
	return v, ok
}
