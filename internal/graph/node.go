package graph

import (
	"github.com/avi3tal/blueprint/internal/schema"
	"github.com/avi3tal/blueprint/pkg/types"
)

// Position is presentation-only canvas placement
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is a node instance owned by a Graph
type Node struct {
	ID       string
	TypeID   string
	Label    string
	Position Position
	// Params is instance configuration, e.g. the variable a getter reads
	Params schema.Values

	// Runtime state, written only by the engine during a pass
	Status      types.NodeStatus
	LastInputs  schema.Values
	LastOutputs schema.Values
}

// NewNode creates an idle node of the given type
func NewNode(id, typeID string, params schema.Values) Node {
	return Node{
		ID:     id,
		TypeID: typeID,
		Params: params,
		Status: types.StatusIdle,
	}
}

// WithPosition returns a copy of n placed at (x, y)
func (n Node) WithPosition(x, y float64) Node {
	n.Position = Position{X: x, Y: y}
	return n
}

// WithLabel returns a copy of n with the given label
func (n Node) WithLabel(label string) Node {
	n.Label = label
	return n
}

func (n *Node) clone() Node {
	c := *n
	c.Params = n.Params.Clone()
	c.LastInputs = n.LastInputs.Clone()
	c.LastOutputs = n.LastOutputs.Clone()
	return c
}

func (n *Node) resetRuntime() {
	n.Status = types.StatusIdle
	n.LastInputs = schema.Values{}
	n.LastOutputs = schema.Values{}
}
