package blueprint

import (
	"context"

	"github.com/avi3tal/blueprint/internal/engine"
	"github.com/avi3tal/blueprint/internal/graph"
	"github.com/avi3tal/blueprint/internal/schema"
	"github.com/avi3tal/blueprint/internal/status"
	"github.com/avi3tal/blueprint/internal/variables"
)

// Aliases so hosts can define node kinds and inspect results without
// reaching into internal packages.
type (
	NodeTypeSchema = schema.NodeTypeSchema
	PortSpec       = schema.PortSpec
	LoopSpec       = schema.LoopSpec
	Values         = schema.Values
	Invocation     = schema.Invocation
	BehaviorFunc   = schema.BehaviorFunc

	Graph    = graph.Graph
	Node     = graph.Node
	Edge     = graph.Edge
	Document = graph.Document

	Variables    = variables.Store
	StatusChange = status.Change

	PassResult = engine.PassResult
	NodeError  = engine.NodeError
)

// WithPassID makes the next pass run with ctx use id as its pass id. Status
// changes of that pass carry the id, so a subscriber can filter on it.
func WithPassID(ctx context.Context, id string) context.Context {
	return engine.ContextWithPassID(ctx, id)
}

// NewVariables creates a variable store seeded with initial
func NewVariables(initial map[string]any) *Variables {
	return variables.NewStore(initial)
}
