package explorer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/graphlens/dashboard/pkg/logger"
)

var (
	// ErrNoDataset is returned when an operation needs a loaded subject.
	ErrNoDataset = errors.New("no subject loaded")
	// ErrUnknownNode is returned when a node id is absent from the dataset.
	ErrUnknownNode = errors.New("node not found in dataset")
)

// Engine drives the interactive graph exploration for one subject: it
// owns the fetched dataset, the visible subset, and the type/entity
// drill-down selection. All state is private to the engine instance and
// every operation serializes behind one lock, so callers from HTTP
// handlers or stream goroutines never observe a half-applied update.
//
// An Engine should be created using NewEngine.
type Engine struct {
	mu sync.Mutex

	fetcher DatasetFetcher

	dataset        *Dataset
	visible        *VisibleSet
	selectedType   string
	selectedEntity string

	loading map[string]struct{}
	lastErr string
}

// NewEngineParams defines the configuration for creating an Engine.
type NewEngineParams struct {
	Fetcher DatasetFetcher
}

// NewEngine creates an explorer engine bound to the given dataset
// fetcher.
func NewEngine(params NewEngineParams) *Engine {
	return &Engine{
		fetcher: params.Fetcher,
		visible: NewVisibleSet(),
		loading: make(map[string]struct{}),
	}
}

// LoadSubject fetches the full graph for one subject and makes it the
// current dataset. On success the visible set, selected type, and
// selected entity are cleared. On failure no dataset is retained and
// the error is surfaced; the engine never retries on its own.
//
// A second LoadSubject for the same subject while one is outstanding is
// ignored and reports the duplicate to the caller.
func (e *Engine) LoadSubject(ctx context.Context, subjectID string) error {
	e.mu.Lock()
	if _, pending := e.loading[subjectID]; pending {
		e.mu.Unlock()
		return fmt.Errorf("load already in flight for subject %s", subjectID)
	}
	e.loading[subjectID] = struct{}{}
	e.mu.Unlock()

	dataset, err := e.fetcher.FetchDataset(ctx, subjectID)

	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.loading, subjectID)

	if err != nil {
		e.dataset = nil
		e.visible = NewVisibleSet()
		e.selectedType = ""
		e.selectedEntity = ""
		e.lastErr = err.Error()
		logger.Error("[Explorer] Failed to load subject", "subject_id", subjectID, "err", err)
		return fmt.Errorf("failed to load subject %s: %w", subjectID, err)
	}

	e.dataset = dataset
	e.visible = NewVisibleSet()
	e.selectedType = ""
	e.selectedEntity = ""
	e.lastErr = ""
	logger.Info("[Explorer] Subject loaded", "subject_id", subjectID, "nodes", len(dataset.Nodes), "edges", len(dataset.Edges))
	return nil
}

// SelectType toggles the single selected entity type. Selecting the
// already-selected type deselects it, collapsing the entity list. This
// is a pure filter over the loaded dataset; no fetch happens.
func (e *Engine) SelectType(entityType string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.selectedType == entityType {
		e.selectedType = ""
		return
	}
	e.selectedType = entityType
}

// SelectedType returns the currently selected type, or "" when none.
func (e *Engine) SelectedType() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedType
}

// SelectEntity resets the visible set to exactly the chosen node plus
// its 1-hop neighborhood. Prior expansion state is discarded.
func (e *Engine) SelectEntity(nodeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dataset == nil {
		return ErrNoDataset
	}
	if _, ok := e.dataset.Node(nodeID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
	}

	e.selectedEntity = nodeID
	e.visible = NewVisibleSet()
	e.visible.addNeighborhood(e.dataset, nodeID)
	return nil
}

// SelectedEntity returns the id of the entity the exploration started
// from, or "" when none is selected.
func (e *Engine) SelectedEntity() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selectedEntity
}

// ExpandNeighborhood unions the node's incident edges and their
// endpoints into the visible set. Ids already visible stay as they
// are: the operation is idempotent, and the visible set only grows
// until the next LoadSubject or SelectEntity reset.
func (e *Engine) ExpandNeighborhood(nodeID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dataset == nil {
		return ErrNoDataset
	}
	if _, ok := e.dataset.Node(nodeID); !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, nodeID)
	}

	e.visible.addNeighborhood(e.dataset, nodeID)
	return nil
}

// Types returns the distinct entity types of the loaded dataset with
// their node counts, sorted by type name. This feeds the first level of
// the drill-down.
func (e *Engine) Types() []TypeCount {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dataset == nil {
		return nil
	}

	counts := make(map[string]int)
	for _, n := range e.dataset.Nodes {
		counts[n.Type]++
	}

	types := make([]TypeCount, 0, len(counts))
	for t, c := range counts {
		types = append(types, TypeCount{Type: t, Count: c})
	}
	sort.Slice(types, func(i, j int) bool { return types[i].Type < types[j].Type })
	return types
}

// TypeCount pairs an entity type with the number of nodes carrying it.
type TypeCount struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
}

// Entities returns the nodes of the currently selected type, sorted by
// name. With no type selected the entity list is collapsed and nil is
// returned.
func (e *Engine) Entities() []Node {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.dataset == nil || e.selectedType == "" {
		return nil
	}

	nodes := make([]Node, 0)
	for _, n := range e.dataset.Nodes {
		if n.Type == e.selectedType {
			nodes = append(nodes, n)
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	return nodes
}

// LastError returns the message of the most recent load failure, or ""
// after a successful load.
func (e *Engine) LastError() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// HasDataset reports whether a subject is currently loaded.
func (e *Engine) HasDataset() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dataset != nil
}

// SubjectID returns the id of the loaded subject, or "" when none.
func (e *Engine) SubjectID() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.dataset == nil {
		return ""
	}
	return e.dataset.SubjectID
}
