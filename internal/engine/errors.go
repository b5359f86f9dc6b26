package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/avi3tal/blueprint/internal/schema"
)

var (
	// ErrCyclicDependency is returned when pure nodes feed each other in a cycle
	ErrCyclicDependency = errors.New("cyclic dependency detected")

	// ErrNodeExecutionFailure is returned when a node behavior fails
	ErrNodeExecutionFailure = errors.New("node execution failed")

	// ErrNoStartNode is returned when a pass has no trigger node
	ErrNoStartNode = errors.New("no start node")

	// ErrMaxSteps is returned when a pass exceeds its node execution budget
	ErrMaxSteps = errors.New("max steps reached")
)

// NodeError represents the failure of a single node. It carries the inputs
// the node was resolved with.
type NodeError struct {
	NodeID string
	TypeID string
	Inputs schema.Values
	Err    error
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node '%s' (%s): %v", e.NodeID, e.TypeID, e.Err)
}

func (e *NodeError) Unwrap() error {
	return e.Err
}

// isFatal reports whether err aborts the whole pass rather than one branch
func isFatal(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrMaxSteps)
}
