package rdf

import (
	"context"
	"sync"
)

// Datastore answers single-pattern lookups against a triple store.
type Datastore interface {
	// MatchTriples returns the objects of all triples with the given subject
	// and predicate, in the store's enumeration order.
	MatchTriples(ctx context.Context, subject, predicate string) ([]string, error)
}

// Triple is a subject, predicate, object statement. Terms are IRIs, blank
// node labels ("_:b0") or literals in N-Triples syntax ("\"example\"").
type Triple struct {
	Subject   string
	Predicate string
	Object    string
}

// Graph is an in-memory Datastore that preserves insertion order.
//
// Thread-safety: All methods are safe for concurrent use.
type Graph struct {
	mu      sync.RWMutex
	triples []Triple
	index   map[Triple]struct{}
}

var _ Datastore = (*Graph)(nil)

// NewGraph returns a graph containing triples, deduplicated.
func NewGraph(triples ...Triple) *Graph {
	g := &Graph{index: make(map[Triple]struct{})}
	for _, t := range triples {
		g.Add(t.Subject, t.Predicate, t.Object)
	}
	return g
}

// Add inserts a triple. It reports false if the triple was already present.
func (g *Graph) Add(subject, predicate, object string) bool {
	t := Triple{Subject: subject, Predicate: predicate, Object: object}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.index == nil {
		g.index = make(map[Triple]struct{})
	}
	if _, ok := g.index[t]; ok {
		return false
	}
	g.index[t] = struct{}{}
	g.triples = append(g.triples, t)
	return true
}

// MatchTriples implements Datastore.
func (g *Graph) MatchTriples(ctx context.Context, subject, predicate string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	var objects []string
	for _, t := range g.triples {
		if t.Subject == subject && t.Predicate == predicate {
			objects = append(objects, t.Object)
		}
	}
	return objects, nil
}

// Len returns the number of triples.
func (g *Graph) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.triples)
}
