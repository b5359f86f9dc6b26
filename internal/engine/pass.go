package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avi3tal/blueprint/internal/graph"
	"github.com/avi3tal/blueprint/internal/variables"
	"github.com/avi3tal/blueprint/pkg/types"
	"github.com/google/uuid"
)

// frame is one memoization scope for pure nodes
type frame struct {
	resolved  map[string]bool
	resolving map[string]bool
}

func newFrame() *frame {
	return &frame{
		resolved:  make(map[string]bool),
		resolving: make(map[string]bool),
	}
}

// pass holds the mutable state of a single run
type pass struct {
	id      string
	start   string
	graph   *graph.Graph
	globals *variables.Store
	config  types.Config
	started time.Time

	mu       sync.Mutex
	steps    int
	produced map[string]bool // flow nodes that have run in this pass
	failures []NodeFailure
	console  []ConsoleLine
	shared   *frame
}

func newPass(id string, g *graph.Graph, start string, globals *variables.Store, cfg types.Config) *pass {
	if id == "" {
		id = uuid.New().String()
	}
	p := &pass{
		id:       id,
		start:    start,
		graph:    g,
		globals:  globals,
		config:   cfg,
		started:  time.Now(),
		produced: make(map[string]bool),
	}
	if cfg.PureCache == types.PureCachePass {
		p.shared = newFrame()
	}
	return p
}

// frame returns the memo scope for a new flow node execution
func (p *pass) frame() *frame {
	if p.shared != nil {
		return p.shared
	}
	return newFrame()
}

// step accounts for one node execution
func (p *pass) step(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.steps++
	if p.config.MaxSteps > 0 && p.steps > p.config.MaxSteps {
		return fmt.Errorf("%w: %d", ErrMaxSteps, p.config.MaxSteps)
	}
	return nil
}

func (p *pass) markProduced(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.produced[id] = true
}

func (p *pass) hasProduced(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.produced[id]
}

func (p *pass) recordFailure(err *NodeError) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failures = append(p.failures, NodeFailure{
		NodeID:  err.NodeID,
		Message: err.Error(),
		Err:     err,
	})
}

func (p *pass) print(nodeID string, value any) ConsoleLine {
	line := ConsoleLine{NodeID: nodeID, Value: value, At: time.Now()}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.console = append(p.console, line)
	return line
}

// result snapshots the pass into a PassResult
func (p *pass) result(aborted error) *PassResult {
	p.mu.Lock()
	defer p.mu.Unlock()

	nodes := make(map[string]NodeResult)
	errs := make(map[string]string)
	for _, f := range p.failures {
		if _, ok := errs[f.NodeID]; !ok {
			errs[f.NodeID] = f.Message
		}
	}
	for _, n := range p.graph.Nodes() {
		nodes[n.ID] = NodeResult{
			Status:  n.Status,
			Inputs:  n.LastInputs,
			Outputs: n.LastOutputs,
			Error:   errs[n.ID],
		}
	}

	res := &PassResult{
		PassID:    p.id,
		GraphID:   p.graph.ID(),
		StartNode: p.start,
		Nodes:     nodes,
		Failures:  append([]NodeFailure(nil), p.failures...),
		Console:   append([]ConsoleLine(nil), p.console...),
		Globals:   p.globals.Snapshot(),
		Steps:     p.steps,
		Duration:  time.Since(p.started),
	}
	if aborted != nil {
		res.Aborted = aborted.Error()
	}
	return res
}
