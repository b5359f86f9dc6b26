package schema

import (
	"context"

	"github.com/pkg/errors"
)

// DefaultExecPort is the conventional name of a node's single exec socket
const DefaultExecPort = "default"

// Globals is the variable store visible to behaviors
type Globals interface {
	Get(name string) (any, bool)
	Set(name string, value any)
}

// Behavior is the function a node type executes given resolved inputs.
type Behavior interface {
	Execute(ctx context.Context, inv *Invocation) (Values, error)
}

// BehaviorFunc adapts a plain function to Behavior
type BehaviorFunc func(ctx context.Context, inv *Invocation) (Values, error)

func (f BehaviorFunc) Execute(ctx context.Context, inv *Invocation) (Values, error) {
	return f(ctx, inv)
}

// LoopSpec marks a node type whose behavior runs once per array element.
type LoopSpec struct {
	ArrayInput      string // value input holding the array
	IndexOutput     string // per-iteration index value output
	ItemOutput      string // per-iteration element value output
	IterationOutput string // exec output fired after every element
	CompleteOutput  string // exec output fired once after the last element
}

// NodeTypeSchema describes a reusable node kind
type NodeTypeSchema struct {
	TypeID       string
	Label        string
	ValueInputs  []PortSpec
	ValueOutputs []PortSpec
	ExecInputs   []string
	ExecOutputs  []string
	Loop         *LoopSpec
	Behavior     Behavior
}

// Pure reports whether the node type has no exec ports.
func (s *NodeTypeSchema) Pure() bool {
	return len(s.ExecInputs) == 0 && len(s.ExecOutputs) == 0
}

// HasExecInputs reports whether the node can only run through flow
// propagation. Nodes without exec inputs are evaluated on demand by
// dependency resolution.
func (s *NodeTypeSchema) HasExecInputs() bool {
	return len(s.ExecInputs) > 0
}

func (s *NodeTypeSchema) ValueInput(name string) (PortSpec, bool) {
	return findPort(s.ValueInputs, name)
}

func (s *NodeTypeSchema) ValueOutput(name string) (PortSpec, bool) {
	return findPort(s.ValueOutputs, name)
}

func (s *NodeTypeSchema) ExecInput(name string) bool {
	return contains(s.ExecInputs, name)
}

func (s *NodeTypeSchema) ExecOutput(name string) bool {
	return contains(s.ExecOutputs, name)
}

// Validate checks the schema is self-consistent
func (s *NodeTypeSchema) Validate() error {
	if s.TypeID == "" {
		return errors.Errorf("schema: type id is required")
	}
	if s.Behavior == nil {
		return errors.Errorf("schema %s: behavior is required", s.TypeID)
	}

	seen := make(map[string]bool)
	for _, group := range [][]PortSpec{s.ValueInputs, s.ValueOutputs} {
		clear(seen)
		for _, p := range group {
			if p.Name == "" {
				return errors.Errorf("schema %s: port name is required", s.TypeID)
			}
			if !p.Type.Valid() {
				return errors.Errorf("schema %s: port %s has unknown type %q", s.TypeID, p.Name, p.Type)
			}
			if seen[p.Name] {
				return errors.Errorf("schema %s: duplicate value port %s", s.TypeID, p.Name)
			}
			seen[p.Name] = true
		}
	}
	for _, group := range [][]string{s.ExecInputs, s.ExecOutputs} {
		clear(seen)
		for _, name := range group {
			if name == "" || seen[name] {
				return errors.Errorf("schema %s: invalid or duplicate exec port %q", s.TypeID, name)
			}
			seen[name] = true
		}
	}

	if l := s.Loop; l != nil {
		if _, ok := s.ValueInput(l.ArrayInput); !ok {
			return errors.Errorf("schema %s: loop array input %q not declared", s.TypeID, l.ArrayInput)
		}
		for _, out := range []string{l.IndexOutput, l.ItemOutput} {
			if _, ok := s.ValueOutput(out); !ok {
				return errors.Errorf("schema %s: loop value output %q not declared", s.TypeID, out)
			}
		}
		for _, out := range []string{l.IterationOutput, l.CompleteOutput} {
			if !s.ExecOutput(out) {
				return errors.Errorf("schema %s: loop exec output %q not declared", s.TypeID, out)
			}
		}
	}
	return nil
}

func findPort(ports []PortSpec, name string) (PortSpec, bool) {
	for _, p := range ports {
		if p.Name == name {
			return p, true
		}
	}
	return PortSpec{}, false
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
