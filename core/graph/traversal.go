// Package graph provides traversal over a persisted keyword graph.
package graph

import (
	"context"

	"github.com/siherrmann/braingraph/model"
)

// GraphDB defines the interface for graph operations
type GraphDB interface {
	GetNode(ctx context.Context, name, brainID string) (*model.KeywordNode, error)
	GetEdgesFrom(ctx context.Context, name, brainID string) ([]*model.Edge, error)
}

// TraversalResult contains a node and its distance from the source
type TraversalResult struct {
	Node     *model.KeywordNode
	Distance int
	Path     []string // Path from source to this node
}

// BFS performs breadth-first search from a source keyword
func BFS(ctx context.Context, db GraphDB, brainID, sourceName string, maxHops int) ([]*TraversalResult, error) {
	sourceNode, err := db.GetNode(ctx, sourceName, brainID)
	if err != nil {
		return nil, err
	}

	visited := map[string]bool{sourceName: true}
	queue := []TraversalResult{{
		Node:     sourceNode,
		Distance: 0,
		Path:     []string{sourceName},
	}}

	var results []*TraversalResult

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		results = append(results, &current)

		// Stop if we've reached max hops
		if current.Distance >= maxHops {
			continue
		}

		// Get edges from current node
		edges, err := db.GetEdgesFrom(ctx, current.Node.Name, brainID)
		if err != nil {
			return nil, err
		}

		// Process each edge
		for _, edge := range edges {
			if visited[edge.Target] {
				continue
			}
			visited[edge.Target] = true

			targetNode, err := db.GetNode(ctx, edge.Target, brainID)
			if err != nil {
				continue
			}

			path := make([]string, len(current.Path), len(current.Path)+1)
			copy(path, current.Path)
			path = append(path, edge.Target)

			queue = append(queue, TraversalResult{
				Node:     targetNode,
				Distance: current.Distance + 1,
				Path:     path,
			})
		}
	}

	return results, nil
}
