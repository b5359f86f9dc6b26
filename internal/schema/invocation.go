package schema

import "context"

// Hooks are the engine callbacks an Invocation forwards to
type Hooks struct {
	Trigger    func(ctx context.Context, port string) error
	SetOutputs func(values Values)
	Print      func(value any)
}

// Invocation is the per-call context handed to a Behavior
type Invocation struct {
	NodeID  string
	TypeID  string
	Params  Values  // node instance configuration, e.g. a captured variable name
	Inputs  Values  // resolved value inputs keyed by port name
	Globals Globals // variable store of the current pass

	hooks Hooks
}

// NewInvocation builds an Invocation. Zero hooks make the matching methods no-ops.
func NewInvocation(nodeID, typeID string, params, inputs Values, globals Globals, hooks Hooks) *Invocation {
	if params == nil {
		params = Values{}
	}
	if inputs == nil {
		inputs = Values{}
	}
	return &Invocation{
		NodeID:  nodeID,
		TypeID:  typeID,
		Params:  params,
		Inputs:  inputs,
		Globals: globals,
		hooks:   hooks,
	}
}

// Trigger propagates control flow along the named exec output and waits for
// every connected node to finish.
func (inv *Invocation) Trigger(ctx context.Context, port string) error {
	if inv.hooks.Trigger == nil {
		return nil
	}
	return inv.hooks.Trigger(ctx, port)
}

// SetOutputs publishes output values before the behavior returns, so nodes
// triggered from inside the behavior can read them.
func (inv *Invocation) SetOutputs(values Values) {
	if inv.hooks.SetOutputs != nil {
		inv.hooks.SetOutputs(values)
	}
}

// Print writes a line to the pass console.
func (inv *Invocation) Print(value any) {
	if inv.hooks.Print != nil {
		inv.hooks.Print(value)
	}
}

// Input returns a resolved input value.
func (inv *Invocation) Input(name string) (any, bool) {
	v, ok := inv.Inputs[name]
	return v, ok && v != nil
}

// Param returns a node parameter as a string.
func (inv *Invocation) Param(name string) string {
	if v, ok := inv.Params[name].(string); ok {
		return v
	}
	return ""
}
