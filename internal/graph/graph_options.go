package graph

// Option configures a Graph
type Option func(*Graph)

// WithID sets a custom ID for the graph
func WithID(id string) Option {
	return func(g *Graph) {
		g.id = id
	}
}

// WithMetadata sets initial metadata for the graph
func WithMetadata(metadata map[string]any) Option {
	return func(g *Graph) {
		for k, v := range metadata {
			g.metadata[k] = v
		}
	}
}
