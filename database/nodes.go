package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/pgvector/pgvector-go"
	"github.com/siherrmann/braingraph/helper"
	"github.com/siherrmann/braingraph/model"
	loadSql "github.com/siherrmann/braingraph/sql"
)

// NodesDBHandlerFunctions defines the interface for Nodes database operations.
type NodesDBHandlerFunctions interface {
	MergeNodeTx(tx *sql.Tx, node *model.KeywordNode) error
	SelectNode(name string, brainID string) (*model.KeywordNode, error)
	SelectNodesByBrain(brainID string) ([]*model.KeywordNode, error)
	SelectNodesBySimilarity(ctx context.Context, brainID string, embedding []float32, limit int) ([]*model.KeywordNode, error)
	CountNodesBySource(sourceID string, brainID string) (int64, error)
}

// NodesDBHandler handles keyword node database operations
type NodesDBHandler struct {
	db *helper.Database
}

// NewNodesDBHandler creates a new nodes database handler.
// It initializes the database connection and loads node-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewNodesDBHandler(db *helper.Database, embeddingDim int, force bool) (*NodesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	nodesDbHandler := &NodesDBHandler{
		db: db,
	}

	err := loadSql.LoadNodesSql(nodesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load nodes sql", err)
	}

	err = nodesDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized NodesDBHandler")

	return nodesDbHandler, nil
}

// CreateTable creates the 'nodes' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *NodesDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Use the SQL init() function to create all tables and indexes
	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_nodes($1);`, embeddingDim)
	if err != nil {
		log.Panicf("error initializing nodes table: %#v", err)
	}

	h.db.Logger.Info("Checked/created table nodes")

	return nil
}

// MergeNodeTx merges a node inside the given transaction. On conflict the
// label is updated and the record lists become the deduplicated union of
// existing and incoming entries.
func (h *NodesDBHandler) MergeNodeTx(tx *sql.Tx, node *model.KeywordNode) error {
	var embedding interface{}
	if len(node.Embedding) > 0 {
		embedding = pgvector.NewVector(node.Embedding)
	}

	row := tx.QueryRow(
		`SELECT * FROM merge_node($1, $2, $3, $4, $5, $6, $7)`,
		node.Name,
		node.Label,
		node.BrainID,
		node.SourceID,
		node.Descriptions,
		node.OriginalSentences,
		embedding,
	)

	merged, err := scanNode(row)
	if err != nil {
		return helper.NewError("scan", err)
	}
	*node = *merged

	return nil
}

// SelectNode retrieves a node by name within a brain
func (h *NodesDBHandler) SelectNode(name string, brainID string) (*model.KeywordNode, error) {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_node($1, $2)`,
		name,
		brainID,
	)

	node, err := scanNode(row)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return node, nil
}

// SelectNodesByBrain retrieves all nodes of a brain
func (h *NodesDBHandler) SelectNodesByBrain(brainID string) ([]*model.KeywordNode, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_nodes_by_brain($1)`,
		brainID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var nodes []*model.KeywordNode
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		nodes = append(nodes, node)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return nodes, nil
}

// SelectNodesBySimilarity retrieves the nodes nearest to the given
// embedding by cosine distance
func (h *NodesDBHandler) SelectNodesBySimilarity(ctx context.Context, brainID string, embedding []float32, limit int) ([]*model.KeywordNode, error) {
	rows, err := h.db.Instance.QueryContext(ctx,
		`SELECT * FROM select_nodes_by_similarity($1, $2, $3)`,
		brainID,
		pgvector.NewVector(embedding),
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var nodes []*model.KeywordNode
	for rows.Next() {
		node, err := scanNode(rows)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		nodes = append(nodes, node)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return nodes, nil
}

// CountNodesBySource counts the nodes a source contributed to, either as
// an entry of the node's contributor list or through a description entry
func (h *NodesDBHandler) CountNodesBySource(sourceID string, brainID string) (int64, error) {
	var count int64
	err := h.db.Instance.QueryRow(
		`SELECT * FROM count_nodes_by_source($1, $2)`,
		sourceID,
		brainID,
	).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// scanner abstracts sql.Row and sql.Rows for node scanning.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanNode scans one node row in table column order.
func scanNode(row scanner) (*model.KeywordNode, error) {
	node := &model.KeywordNode{}
	var embeddingVec *pgvector.Vector

	err := row.Scan(
		&node.Name,
		&node.Label,
		&node.BrainID,
		&node.Descriptions,
		&node.OriginalSentences,
		&node.SourceID,
		pq.Array(&node.SourceIDs),
		&embeddingVec,
		&node.CreatedAt,
		&node.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if embeddingVec != nil {
		node.Embedding = embeddingVec.Slice()
	}

	return node, nil
}
