package explorer

// VisibleSet tracks which node and edge ids of the current dataset are
// rendered. It is a view over the dataset, never a copy: every id it
// holds must exist in the dataset it was built against. The set grows
// monotonically through expansion until the next reset.
type VisibleSet struct {
	nodes map[string]struct{}
	edges map[string]struct{}
}

// NewVisibleSet returns an empty visible set.
func NewVisibleSet() *VisibleSet {
	return &VisibleSet{
		nodes: make(map[string]struct{}),
		edges: make(map[string]struct{}),
	}
}

// HasNode reports whether the node id is visible.
func (v *VisibleSet) HasNode(id string) bool {
	_, ok := v.nodes[id]
	return ok
}

// HasEdge reports whether the edge id is visible.
func (v *VisibleSet) HasEdge(id string) bool {
	_, ok := v.edges[id]
	return ok
}

// NodeCount returns the number of visible nodes.
func (v *VisibleSet) NodeCount() int {
	return len(v.nodes)
}

// EdgeCount returns the number of visible edges.
func (v *VisibleSet) EdgeCount() int {
	return len(v.edges)
}

func (v *VisibleSet) addNode(id string) {
	v.nodes[id] = struct{}{}
}

func (v *VisibleSet) addEdge(id string) {
	v.edges[id] = struct{}{}
}

// addNeighborhood unions the node's well-formed incident edges and
// their endpoints into the set. Ids already present are left alone, so
// repeated application is idempotent.
func (v *VisibleSet) addNeighborhood(d *Dataset, nodeID string) {
	if _, ok := d.Node(nodeID); !ok {
		return
	}

	v.addNode(nodeID)
	for _, e := range d.incidentEdges(nodeID) {
		v.addEdge(e.ID)
		v.addNode(e.Source)
		v.addNode(e.Target)
	}
}
