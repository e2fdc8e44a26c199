package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
	"github.com/siherrmann/braingraph/helper"
	"github.com/siherrmann/braingraph/model"
)

// GraphDBHandler persists whole batches of nodes and edges with MERGE
// semantics. A batch is transactional: either all nodes and edges are
// persisted or none. Callers serialize batches per brain.
type GraphDBHandler struct {
	db    *helper.Database
	Nodes *NodesDBHandler
	Edges *EdgesDBHandler
}

// NewGraphDBHandler creates a graph handler over the node and edge handlers.
func NewGraphDBHandler(db *helper.Database, nodes *NodesDBHandler, edges *EdgesDBHandler) (*GraphDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	return &GraphDBHandler{
		db:    db,
		Nodes: nodes,
		Edges: edges,
	}, nil
}

// MergeBatch merges all nodes, then all edges, in one transaction.
// Transient errors are retried with exponential backoff; after exhaustion
// the batch is discarded and a persistence error surfaced.
func (h *GraphDBHandler) MergeBatch(ctx context.Context, nodes []*model.KeywordNode, edges []*model.Edge, retries int) error {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			// Exponential backoff between attempts to ride out transient
			// connection or lock failures.
			time.Sleep(time.Duration(1<<(attempt-1)) * 250 * time.Millisecond)
			h.db.Logger.Warn("retrying batch merge",
				slog.Int("attempt", attempt),
				slog.Int("nodes", len(nodes)),
				slog.Int("edges", len(edges)))
		}

		lastErr = h.mergeOnce(ctx, nodes, edges)
		if lastErr == nil {
			return nil
		}
		if isFatal(lastErr) {
			break
		}
	}

	return helper.NewError("merge batch", fmt.Errorf("%w: %v", model.ErrPersistence, lastErr))
}

// isFatal reports whether an error cannot be fixed by retrying, such as an
// integrity violation outside the MERGE semantics.
func isFatal(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code.Class() == "23"
	}
	return false
}

// mergeOnce runs one transactional merge attempt.
func (h *GraphDBHandler) mergeOnce(ctx context.Context, nodes []*model.KeywordNode, edges []*model.Edge) error {
	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	merged := make(map[string]struct{}, len(nodes))
	for _, node := range nodes {
		if err := h.Nodes.MergeNodeTx(tx, node); err != nil {
			return helper.NewError(fmt.Sprintf("merge node %s", node.Name), err)
		}
		merged[node.Name] = struct{}{}
	}

	for _, edge := range edges {
		// Edges require both endpoints; an endpoint missing from the batch
		// is inserted once before the edge merge.
		for _, endpoint := range []string{edge.Source, edge.Target} {
			if _, ok := merged[endpoint]; ok {
				continue
			}
			err := h.Nodes.MergeNodeTx(tx, &model.KeywordNode{
				Name:              endpoint,
				Label:             endpoint,
				BrainID:           edge.BrainID,
				SourceID:          edge.SourceID,
				Descriptions:      model.RecordList{},
				OriginalSentences: model.RecordList{},
			})
			if err != nil {
				return helper.NewError(fmt.Sprintf("merge edge endpoint %s", endpoint), err)
			}
			merged[endpoint] = struct{}{}
		}

		if err := h.Edges.MergeEdgeTx(tx, edge); err != nil {
			return helper.NewError(fmt.Sprintf("merge edge %s->%s", edge.Source, edge.Target), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return helper.NewError("commit transaction", err)
	}
	return nil
}

// RemoveSource removes exactly one source's contribution from the graph
// inside one transaction, with the same retry policy as MergeBatch.
func (h *GraphDBHandler) RemoveSource(ctx context.Context, sourceID string, brainID string, retries int) error {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<(attempt-1)) * 250 * time.Millisecond)
		}

		lastErr = h.removeOnce(ctx, sourceID, brainID)
		if lastErr == nil {
			return nil
		}
		if isFatal(lastErr) {
			break
		}
	}

	return helper.NewError("remove source", fmt.Errorf("%w: %v", model.ErrPersistence, lastErr))
}

// removeOnce runs one transactional removal attempt.
func (h *GraphDBHandler) removeOnce(ctx context.Context, sourceID string, brainID string) error {
	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	_, err = tx.Exec(`SELECT delete_source_graph($1, $2)`, sourceID, brainID)
	if err != nil {
		return helper.NewError("delete source graph", err)
	}

	_, err = tx.Exec(`SELECT delete_source_row($1, $2)`, sourceID, brainID)
	if err != nil {
		return helper.NewError("delete source row", err)
	}

	if err := tx.Commit(); err != nil {
		return helper.NewError("commit transaction", err)
	}
	return nil
}

// GetNode implements the traversal interface over persisted nodes.
func (h *GraphDBHandler) GetNode(ctx context.Context, name, brainID string) (*model.KeywordNode, error) {
	return h.Nodes.SelectNode(name, brainID)
}

// GetEdgesFrom implements the traversal interface over persisted edges.
func (h *GraphDBHandler) GetEdgesFrom(ctx context.Context, name, brainID string) ([]*model.Edge, error) {
	return h.Edges.SelectEdgesFromNode(name, brainID)
}
