package graph

import (
	"fmt"
	"strings"
)

// Mermaid renders the graph as a mermaid flowchart. Exec edges are solid,
// value edges are dotted.
func (g *Graph) Mermaid() string {
	var b strings.Builder
	b.WriteString("flowchart LR\n")

	for _, n := range g.Nodes() {
		label := n.Label
		if label == "" {
			label = n.TypeID
		}
		fmt.Fprintf(&b, "  %s[\"%s\"]\n", mermaidID(n.ID), label)
	}

	for _, e := range g.Edges() {
		arrow := "-->"
		if e.Kind == EdgeValue {
			arrow = "-.->"
		}
		fmt.Fprintf(&b, "  %s %s|%s:%s| %s\n",
			mermaidID(e.Source), arrow, e.SourcePort, e.TargetPort, mermaidID(e.Target))
	}
	return b.String()
}

func mermaidID(id string) string {
	return strings.NewReplacer("-", "_", " ", "_", ".", "_").Replace(id)
}
