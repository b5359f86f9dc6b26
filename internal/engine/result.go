package engine

import (
	"errors"
	"time"

	"github.com/avi3tal/blueprint/internal/schema"
	"github.com/avi3tal/blueprint/pkg/types"
)

// NodeResult is the final state of one node after a pass
type NodeResult struct {
	Status  types.NodeStatus `json:"status"`
	Inputs  schema.Values    `json:"inputs,omitempty"`
	Outputs schema.Values    `json:"outputs,omitempty"`
	Error   string           `json:"error,omitempty"`
}

// NodeFailure records a node that failed during a pass
type NodeFailure struct {
	NodeID  string     `json:"nodeId"`
	Message string     `json:"error"`
	Err     *NodeError `json:"-"`
}

// ConsoleLine is one value printed by a node
type ConsoleLine struct {
	NodeID string    `json:"nodeId"`
	Value  any       `json:"value"`
	At     time.Time `json:"at"`
}

// PassResult summarizes a finished, failed or aborted pass
type PassResult struct {
	PassID    string                `json:"passId"`
	GraphID   string                `json:"graphId"`
	StartNode string                `json:"startNode"`
	Nodes     map[string]NodeResult `json:"nodes"`
	Failures  []NodeFailure         `json:"failures,omitempty"`
	Console   []ConsoleLine         `json:"console,omitempty"`
	Globals   map[string]any        `json:"globals"`
	Steps     int                   `json:"steps"`
	Duration  time.Duration         `json:"duration"`
	Aborted   string                `json:"aborted,omitempty"`
}

// Failed reports whether any node failed or the pass was aborted
func (r *PassResult) Failed() bool {
	return len(r.Failures) > 0 || r.Aborted != ""
}

// Err joins the node failures of the pass, nil when there are none
func (r *PassResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f.Err)
	}
	return errors.Join(errs...)
}

// Failure returns the first failure recorded for a node
func (r *PassResult) Failure(nodeID string) (*NodeError, bool) {
	for _, f := range r.Failures {
		if f.NodeID == nodeID {
			return f.Err, true
		}
	}
	return nil, false
}

// ConsoleValues returns the printed values in order
func (r *PassResult) ConsoleValues() []any {
	out := make([]any, 0, len(r.Console))
	for _, l := range r.Console {
		out = append(out, l.Value)
	}
	return out
}
