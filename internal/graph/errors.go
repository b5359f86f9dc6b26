package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidEdge is returned when an edge references a missing node or
	// port, or joins a value port to an exec port
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrInvalidNode is returned when a node fails validation
	ErrInvalidNode = errors.New("invalid node")

	// ErrNodeNotFound is returned when referencing a non-existent node
	ErrNodeNotFound = errors.New("node not found")

	// ErrEdgeNotFound is returned when referencing a non-existent edge
	ErrEdgeNotFound = errors.New("edge not found")

	// ErrGraphLocked is returned when editing a graph while a pass is running
	ErrGraphLocked = errors.New("graph is locked by a running pass")
)

// EditError represents a rejected structural edit. The graph is unchanged.
type EditError struct {
	// Op is the edit operation that failed
	Op string
	// ID is the node or edge involved (if any)
	ID string
	// Err is the underlying error
	Err error
}

func (e *EditError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s '%s': %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EditError) Unwrap() error {
	return e.Err
}

// NewEditError creates a new EditError
func NewEditError(op, id string, err error) error {
	return &EditError{
		Op:  op,
		ID:  id,
		Err: err,
	}
}
