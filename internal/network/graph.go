// Package network builds weighted social graphs from person and edge rows:
// a global graph over the most active people, and a one-hop ego graph around
// a chosen center.
package network

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/RoaringBitmap/roaring/roaring64"
	"github.com/agentic-research/mailcorpus/api"
)

// ErrPersonNotFound reports an absent ego-graph center. The boundary layer
// translates it to a not-found response.
var ErrPersonNotFound = errors.New("person not found")

const (
	// maxGlobalNodes caps the node selection regardless of the requested limit.
	maxGlobalNodes = 1000
	// maxEdges caps the aggregated edge query.
	maxEdges = 5000
	// minGlobalEdgeWeight drops one-off exchanges from the global graph.
	minGlobalEdgeWeight = 2
	// maxEgoNeighbors caps the one-hop neighborhood around a center.
	maxEgoNeighbors = 100
)

// PersonSource is the read-only relational collaborator the builder queries.
// PersonByID reports an absent person with ok=false and a nil error.
type PersonSource interface {
	TopPeople(ctx context.Context, minActivity, limit int) ([]api.PersonNode, error)
	PersonByID(ctx context.Context, id int64) (person api.PersonNode, ok bool, err error)
	Neighbors(ctx context.Context, centerID int64, minActivity, limit int) ([]api.PersonNode, error)
	EdgesAmong(ctx context.Context, ids []int64, minWeight, limit int) ([]api.Edge, error)
}

// Builder is a pure transformation over the person source; it holds no
// mutable state and is safe for concurrent use.
type Builder struct {
	people PersonSource
}

// NewBuilder creates a Builder over the given source.
func NewBuilder(people PersonSource) *Builder {
	return &Builder{people: people}
}

// BuildGlobalGraph selects people with total activity >= minWeight (most
// active first, capped at min(limit, 1000)) and the aggregated directed edges
// among them with weight >= 2, heaviest first, capped at 5000.
func (b *Builder) BuildGlobalGraph(ctx context.Context, minWeight, limit int) (*api.GraphView, error) {
	if limit <= 0 || limit > maxGlobalNodes {
		limit = maxGlobalNodes
	}

	nodes, err := b.people.TopPeople(ctx, minWeight, limit)
	if err != nil {
		return nil, fmt.Errorf("select graph nodes: %w", err)
	}
	if len(nodes) == 0 {
		// Nothing selected means nothing to connect — skip the edge query.
		return &api.GraphView{Nodes: []api.PersonNode{}, Edges: []api.Edge{}}, nil
	}

	ids, members := idSet(nodes)
	for i := range nodes {
		nodes[i].Name = displayName(nodes[i])
	}

	edges, err := b.people.EdgesAmong(ctx, ids, minGlobalEdgeWeight, maxEdges)
	if err != nil {
		return nil, fmt.Errorf("aggregate graph edges: %w", err)
	}
	edges = keepMemberEdges(edges, members)

	return &api.GraphView{
		Nodes:     nodes,
		Edges:     edges,
		NodeCount: len(nodes),
		EdgeCount: len(edges),
	}, nil
}

// BuildEgoGraph builds the subgraph around centerID: the center plus up to
// 100 directly connected people with total activity >= minWeight, and the
// aggregated edges among that set with weight >= minWeight.
//
// depth is accepted up to 2 for cache-key compatibility with the boundary
// layer, but expansion is always exactly one hop.
func (b *Builder) BuildEgoGraph(ctx context.Context, centerID int64, depth, minWeight int) (*api.GraphView, error) {
	if depth < 1 {
		depth = 1
	}
	if depth > 2 {
		depth = 2
	}
	_ = depth // expansion is always exactly one hop

	center, ok, err := b.people.PersonByID(ctx, centerID)
	if err != nil {
		return nil, fmt.Errorf("fetch center person %d: %w", centerID, err)
	}
	if !ok {
		return nil, fmt.Errorf("person %d: %w", centerID, ErrPersonNotFound)
	}

	neighbors, err := b.people.Neighbors(ctx, centerID, minWeight, maxEgoNeighbors)
	if err != nil {
		return nil, fmt.Errorf("fetch neighbors of %d: %w", centerID, err)
	}

	center.IsCenter = true
	nodes := make([]api.PersonNode, 0, len(neighbors)+1)
	nodes = append(nodes, center)
	for _, n := range neighbors {
		if n.ID == centerID {
			continue
		}
		nodes = append(nodes, n)
	}
	ids, members := idSet(nodes)
	for i := range nodes {
		nodes[i].Name = displayName(nodes[i])
	}

	edges, err := b.people.EdgesAmong(ctx, ids, minWeight, maxEdges)
	if err != nil {
		return nil, fmt.Errorf("aggregate ego edges for %d: %w", centerID, err)
	}
	edges = keepMemberEdges(edges, members)

	return &api.GraphView{
		Nodes:     nodes,
		Edges:     edges,
		NodeCount: len(nodes),
		EdgeCount: len(edges),
	}, nil
}

// idSet returns the node ids plus a bitmap for O(1) membership checks.
func idSet(nodes []api.PersonNode) ([]int64, *roaring64.Bitmap) {
	ids := make([]int64, len(nodes))
	members := roaring64.New()
	for i, n := range nodes {
		ids[i] = n.ID
		members.Add(uint64(n.ID))
	}
	return ids, members
}

// keepMemberEdges drops any edge with an endpoint outside the node set.
// The source already restricts its query to the set, but the invariant
// "every endpoint appears in the node list" must hold for any source.
func keepMemberEdges(edges []api.Edge, members *roaring64.Bitmap) []api.Edge {
	kept := edges[:0]
	for _, e := range edges {
		if members.Contains(uint64(e.Source)) && members.Contains(uint64(e.Target)) {
			kept = append(kept, e)
		}
	}
	if kept == nil {
		kept = []api.Edge{}
	}
	return kept
}

// displayName falls back to the local part of the email when no name is
// stored for the person.
func displayName(n api.PersonNode) string {
	if n.Name != "" {
		return n.Name
	}
	if i := strings.Index(n.Email, "@"); i > 0 {
		return n.Email[:i]
	}
	return n.Email
}
