// Package status projects per-node execution status for observers such as
// the node rendering UI.
package status

import (
	"sync"
	"time"

	"github.com/avi3tal/blueprint/pkg/types"
)

// Change is emitted on every status transition. PassID and GraphID let an
// observer keep only the transitions of the pass it started.
type Change struct {
	PassID  string           `json:"passId"`
	GraphID string           `json:"graphId"`
	NodeID  string           `json:"nodeId"`
	Status  types.NodeStatus `json:"status"`
	At      time.Time        `json:"at"`
}

// Listener receives status changes synchronously
type Listener func(Change)

// Tracker records the latest status of every node, per graph, and notifies
// listeners.
type Tracker struct {
	mu        sync.RWMutex
	graphs    map[string]map[string]types.NodeStatus
	listeners map[int]Listener
	nextID    int
}

func NewTracker() *Tracker {
	return &Tracker{
		graphs:    make(map[string]map[string]types.NodeStatus),
		listeners: make(map[int]Listener),
	}
}

// Set records a transition and calls every listener before returning.
func (t *Tracker) Set(change Change) {
	if change.At.IsZero() {
		change.At = time.Now().UTC()
	}

	t.mu.Lock()
	statuses, ok := t.graphs[change.GraphID]
	if !ok {
		statuses = make(map[string]types.NodeStatus)
		t.graphs[change.GraphID] = statuses
	}
	statuses[change.NodeID] = change.Status
	listeners := make([]Listener, 0, len(t.listeners))
	for id := 0; id < t.nextID; id++ {
		if l, ok := t.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	t.mu.Unlock()

	for _, l := range listeners {
		l(change)
	}
}

// Status returns the node's last status in graphID, idle when never set.
func (t *Tracker) Status(graphID, nodeID string) types.NodeStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if s, ok := t.graphs[graphID][nodeID]; ok {
		return s
	}
	return types.StatusIdle
}

// Snapshot returns a copy of the statuses known for graphID.
func (t *Tracker) Snapshot(graphID string) map[string]types.NodeStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	statuses := t.graphs[graphID]
	out := make(map[string]types.NodeStatus, len(statuses))
	for k, v := range statuses {
		out[k] = v
	}
	return out
}

// Reset forgets the statuses of graphID and sets the given nodes to idle
// without notifying listeners. Other graphs are untouched.
func (t *Tracker) Reset(graphID string, nodeIDs ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	statuses := make(map[string]types.NodeStatus, len(nodeIDs))
	for _, id := range nodeIDs {
		statuses[id] = types.StatusIdle
	}
	t.graphs[graphID] = statuses
}

// Subscribe registers a listener. Listeners run in subscription order.
// The returned function removes it.
func (t *Tracker) Subscribe(l Listener) func() {
	t.mu.Lock()
	defer t.mu.Unlock()
	id := t.nextID
	t.nextID++
	t.listeners[id] = l

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			defer t.mu.Unlock()
			delete(t.listeners, id)
		})
	}
}
