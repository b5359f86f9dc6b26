package engine

import (
	"context"
	"fmt"

	"github.com/avi3tal/blueprint/internal/graph"
	"github.com/avi3tal/blueprint/internal/schema"
)

// resolveInputs collects the value inputs of node from its incoming value
// edges. Sources without exec inputs are evaluated on demand, at most once
// per frame, with their exec outputs muted. Other flow sources contribute
// their cached outputs, or nil when they have not run in this pass. When several
// edges feed one port the last one wins.
func (e *Engine) resolveInputs(ctx context.Context, p *pass, fr *frame, node graph.Node) (schema.Values, error) {
	inputs := schema.Values{}
	for _, edge := range p.graph.EdgesTo(node.ID, "") {
		if edge.Kind != graph.EdgeValue {
			continue
		}
		src, ok := p.graph.Node(edge.Source)
		if !ok {
			return inputs, fmt.Errorf("input %s: %w", edge.TargetPort, graph.ErrNodeNotFound)
		}
		srcSchema, err := p.graph.Registry().Get(src.TypeID)
		if err != nil {
			return inputs, fmt.Errorf("input %s: %w", edge.TargetPort, err)
		}

		if !srcSchema.HasExecInputs() {
			if err := e.evaluatePure(ctx, p, fr, src.ID); err != nil {
				return inputs, fmt.Errorf("input %s from %s: %w", edge.TargetPort, src.ID, err)
			}
		} else if !p.hasProduced(src.ID) {
			inputs[edge.TargetPort] = nil
			continue
		}

		v, _ := p.graph.Output(src.ID, edge.SourcePort)
		inputs[edge.TargetPort] = v
	}
	return inputs, nil
}

func (e *Engine) evaluatePure(ctx context.Context, p *pass, fr *frame, id string) error {
	if fr.resolved[id] {
		return nil
	}
	if fr.resolving[id] {
		return fmt.Errorf("%w: %s is its own dependency", ErrCyclicDependency, id)
	}
	fr.resolving[id] = true
	defer delete(fr.resolving, id)

	if err := e.execute(ctx, p, id, false, fr); err != nil {
		return err
	}
	fr.resolved[id] = true
	return nil
}
