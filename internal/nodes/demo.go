package nodes

import (
	"github.com/avi3tal/blueprint/internal/graph"
	"github.com/avi3tal/blueprint/internal/schema"
)

// SumDemo builds the starter graph: iterate Values, accumulate into Sum,
// then log Sum once the loop completes. It returns the graph and the
// initial variables it expects.
func SumDemo(reg *schema.Registry) (*graph.Graph, map[string]any, error) {
	g := graph.NewGraph("sum demo", reg)

	nodes := []graph.Node{
		graph.NewNode("onStart", TypeOnStart, nil).WithPosition(36, -72),
		graph.NewNode("getter-values-1", TypeVariableGetter, schema.Values{ParamVariable: "Values"}).WithPosition(36, 48),
		graph.NewNode("getter-sum-1", TypeVariableGetter, schema.Values{ParamVariable: "Sum"}).WithPosition(324, 108),
		graph.NewNode("getter-sum-2", TypeVariableGetter, schema.Values{ParamVariable: "Sum"}).WithPosition(900, 60),
		graph.NewNode("setter-sum-1", TypeVariableSetter, schema.Values{ParamVariable: "Sum"}).WithPosition(684, 24),
		graph.NewNode("forEach-1", TypeForEach, nil).WithPosition(324, -72),
		graph.NewNode("add-1", TypeAdd, nil).WithPosition(552, 24),
		graph.NewNode("consoleLog-1", TypeConsoleLog, nil).WithPosition(900, -72),
	}
	for _, n := range nodes {
		if _, err := g.AddNode(n); err != nil {
			return nil, nil, err
		}
	}

	edges := []graph.Edge{
		graph.NewEdge("e1-2", "onStart", def, "forEach-1", def),
		graph.NewEdge("e2-3", "getter-values-1", "value", "forEach-1", "array"),
		graph.NewEdge("e3-4", "forEach-1", "iteration", "add-1", def),
		graph.NewEdge("e3-5", "forEach-1", "complete", "consoleLog-1", def),
		graph.NewEdge("e3-6", "forEach-1", "currentItem", "add-1", "a"),
		graph.NewEdge("e4-4", "getter-sum-1", "value", "add-1", "b"),
		graph.NewEdge("e4-5", "add-1", "result", "setter-sum-1", "value"),
		graph.NewEdge("e4-6", "add-1", def, "setter-sum-1", def),
		graph.NewEdge("e5-6", "getter-sum-2", "value", "consoleLog-1", "value"),
	}
	for _, e := range edges {
		if _, err := g.AddEdge(e); err != nil {
			return nil, nil, err
		}
	}

	return g, map[string]any{
		"Values": []any{1, 2, 3, 4, 5},
		"Sum":    0,
	}, nil
}
