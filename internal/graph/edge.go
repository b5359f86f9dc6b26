package graph

import "fmt"

// EdgeKind distinguishes data edges from control-flow edges
type EdgeKind string

const (
	EdgeValue EdgeKind = "value"
	EdgeExec  EdgeKind = "exec"
)

// Edge connects a source port to a target port
type Edge struct {
	ID         string
	Source     string
	SourcePort string
	Target     string
	TargetPort string
	// Kind is derived from the ports when the edge is added
	Kind EdgeKind
}

// NewEdge creates an edge; the kind is filled in by Graph.AddEdge
func NewEdge(id, source, sourcePort, target, targetPort string) Edge {
	return Edge{
		ID:         id,
		Source:     source,
		SourcePort: sourcePort,
		Target:     target,
		TargetPort: targetPort,
	}
}

func (e Edge) String() string {
	return fmt.Sprintf("%s.%s -> %s.%s", e.Source, e.SourcePort, e.Target, e.TargetPort)
}

// Validate checks the edge fields are populated
func (e Edge) Validate() error {
	if e.Source == "" {
		return fmt.Errorf("edge must have a source node")
	}
	if e.Target == "" {
		return fmt.Errorf("edge must have a target node")
	}
	if e.SourcePort == "" || e.TargetPort == "" {
		return fmt.Errorf("edge must name both ports")
	}
	return nil
}
