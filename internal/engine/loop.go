package engine

import (
	"context"
	"fmt"
	"reflect"

	"github.com/avi3tal/blueprint/internal/graph"
	"github.com/avi3tal/blueprint/internal/schema"
)

// runLoop executes a looping node once per element of its array input. Each
// iteration's outputs are cached before the iteration port fires, so the
// loop body reads the current element. The complete port fires afterwards.
func (e *Engine) runLoop(ctx context.Context, p *pass, node graph.Node, sch *schema.NodeTypeSchema, inputs schema.Values, triggerOutputs bool) error {
	loop := sch.Loop
	items, err := toSlice(inputs[loop.ArrayInput])
	if err != nil {
		return fmt.Errorf("input %s: %w", loop.ArrayInput, err)
	}

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return err
		}

		iterInputs := inputs.Clone()
		iterInputs[loop.IndexOutput] = i
		iterInputs[loop.ItemOutput] = item

		triggered := make(map[string]bool)
		hooks := e.hooks(p, node, sch, triggerOutputs, triggered)
		hooks.SetOutputs = func(values schema.Values) {
			p.graph.MergeOutputs(node.ID, values)
			p.markProduced(node.ID)
		}

		inv := schema.NewInvocation(node.ID, node.TypeID, node.Params, iterInputs, p.globals, hooks)
		out, err := invoke(ctx, sch.Behavior, inv)
		if err != nil {
			return fmt.Errorf("iteration %d: %w", i, err)
		}
		p.graph.SetOutputs(node.ID, out)
		p.markProduced(node.ID)

		if triggerOutputs && !triggered[loop.IterationOutput] {
			if err := e.propagate(ctx, p, node.ID, loop.IterationOutput); err != nil {
				return err
			}
		}
	}
	p.markProduced(node.ID)

	if triggerOutputs {
		return e.propagate(ctx, p, node.ID, loop.CompleteOutput)
	}
	return nil
}

// toSlice accepts any slice or array value. nil is an empty array.
func toSlice(v any) ([]any, error) {
	switch s := v.(type) {
	case nil:
		return nil, nil
	case []any:
		return s, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expected an array, got %T", v)
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, nil
}
