package explorer

import (
	"context"
	"fmt"
)

// Node represents a single entity in a subject's knowledge graph.
// Nodes are immutable once fetched; a re-fetch of the subject replaces
// the whole dataset rather than mutating individual nodes.
type Node struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"`
	Description string         `json:"description,omitempty"`
	Aliases     []string       `json:"aliases,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}

// Edge represents a directed connection between two nodes.
// If the upstream payload carries no edge id, one is derived from the
// source, type, and target.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
	Label  string `json:"label,omitempty"`
}

// Dataset holds the full node and edge set for one subject. It is
// fetched wholesale and never partially updated; loading a subject
// replaces any previous dataset entirely.
//
// A Dataset keeps lookup indexes so neighborhood operations do not
// rescan the edge list.
type Dataset struct {
	SubjectID string
	Nodes     []Node
	Edges     []Edge

	nodeIndex map[string]int
	edgeIndex map[string]int
	// incident maps a node id to the indexes of every edge touching it.
	incident map[string][]int
}

// NewDataset builds a Dataset from fetched nodes and edges, deriving
// missing edge ids and indexing nodes and edges for neighborhood
// lookups. Edges referencing nodes absent from the node list are kept
// in the dataset but never indexed as incident, so they can be
// tolerated at render time instead of failing the load.
func NewDataset(subjectID string, nodes []Node, edges []Edge) *Dataset {
	d := &Dataset{
		SubjectID: subjectID,
		Nodes:     nodes,
		Edges:     edges,
		nodeIndex: make(map[string]int, len(nodes)),
		edgeIndex: make(map[string]int, len(edges)),
		incident:  make(map[string][]int),
	}

	for i, n := range nodes {
		d.nodeIndex[n.ID] = i
	}

	for i := range edges {
		if edges[i].ID == "" {
			edges[i].ID = DeriveEdgeID(edges[i])
		}
		d.edgeIndex[edges[i].ID] = i

		_, srcOK := d.nodeIndex[edges[i].Source]
		_, tgtOK := d.nodeIndex[edges[i].Target]
		if !srcOK || !tgtOK {
			continue
		}
		d.incident[edges[i].Source] = append(d.incident[edges[i].Source], i)
		if edges[i].Target != edges[i].Source {
			d.incident[edges[i].Target] = append(d.incident[edges[i].Target], i)
		}
	}

	return d
}

// DeriveEdgeID returns the fallback identifier for an edge without one.
func DeriveEdgeID(e Edge) string {
	return fmt.Sprintf("%s-%s-%s", e.Source, e.Type, e.Target)
}

// Node returns the node with the given id, if present.
func (d *Dataset) Node(id string) (Node, bool) {
	if d == nil {
		return Node{}, false
	}
	idx, ok := d.nodeIndex[id]
	if !ok {
		return Node{}, false
	}
	return d.Nodes[idx], true
}

// Edge returns the edge with the given id, if present.
func (d *Dataset) Edge(id string) (Edge, bool) {
	if d == nil {
		return Edge{}, false
	}
	idx, ok := d.edgeIndex[id]
	if !ok {
		return Edge{}, false
	}
	return d.Edges[idx], true
}

// incidentEdges returns every well-formed edge touching the given node.
func (d *Dataset) incidentEdges(nodeID string) []Edge {
	if d == nil {
		return nil
	}
	idxs := d.incident[nodeID]
	edges := make([]Edge, 0, len(idxs))
	for _, i := range idxs {
		edges = append(edges, d.Edges[i])
	}
	return edges
}

// DatasetFetcher is the collaborator contract for loading one subject's
// graph from the upstream graph-data API.
type DatasetFetcher interface {
	FetchDataset(ctx context.Context, subjectID string) (*Dataset, error)
}
