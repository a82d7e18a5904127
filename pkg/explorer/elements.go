package explorer

// Elements is the render-ready materialization of the visible subgraph,
// handed off to the rendering layer. Each node and edge carries its
// full attribute bag from the dataset.
type Elements struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// RenderElements produces the node and edge lists restricted to the
// visible set. It is a pure derivation over the current state: no side
// effects, recomputed on every call.
//
// An edge is emitted only when the edge id itself is visible and both
// endpoints are visible nodes of the dataset. Expansion adds endpoints
// along with their edges, so that normally holds; a malformed edge
// referencing a missing node is silently excluded rather than failing
// the render.
func (e *Engine) RenderElements() Elements {
	e.mu.Lock()
	defer e.mu.Unlock()

	elements := Elements{
		Nodes: make([]Node, 0, e.visible.NodeCount()),
		Edges: make([]Edge, 0, e.visible.EdgeCount()),
	}
	if e.dataset == nil {
		return elements
	}

	for _, n := range e.dataset.Nodes {
		if e.visible.HasNode(n.ID) {
			elements.Nodes = append(elements.Nodes, n)
		}
	}

	for _, edge := range e.dataset.Edges {
		if !e.visible.HasEdge(edge.ID) {
			continue
		}
		if !e.visible.HasNode(edge.Source) || !e.visible.HasNode(edge.Target) {
			continue
		}
		if _, ok := e.dataset.Node(edge.Source); !ok {
			continue
		}
		if _, ok := e.dataset.Node(edge.Target); !ok {
			continue
		}
		elements.Edges = append(elements.Edges, edge)
	}

	return elements
}
