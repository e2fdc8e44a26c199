package database

import (
	"database/sql"
	"fmt"

	"github.com/siherrmann/braingraph/helper"
	"github.com/siherrmann/braingraph/model"
	loadSql "github.com/siherrmann/braingraph/sql"
)

// EdgesDBHandlerFunctions defines the interface for Edges database operations.
type EdgesDBHandlerFunctions interface {
	MergeEdgeTx(tx *sql.Tx, edge *model.Edge) error
	SelectEdgesByBrain(brainID string) ([]*model.Edge, error)
	SelectEdgesFromNode(source string, brainID string) ([]*model.Edge, error)
}

// EdgesDBHandler handles edge-related database operations
type EdgesDBHandler struct {
	db *helper.Database
}

// NewEdgesDBHandler creates a new edges database handler.
// It initializes the database connection and loads edge-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewEdgesDBHandler(db *helper.Database, force bool) (*EdgesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	edgesDbHandler := &EdgesDBHandler{
		db: db,
	}

	err := loadSql.LoadEdgesSql(edgesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load edges sql", err)
	}

	err = edgesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized EdgesDBHandler")

	return edgesDbHandler, nil
}

// CreateTable creates the 'edges' table in the database.
// If the table already exists, it does not create it again.
// It also creates all necessary indexes.
func (h *EdgesDBHandler) CreateTable() error {
	_, err := h.db.Instance.Exec(`SELECT init_edges();`)
	if err != nil {
		return helper.NewError("initialize edges table", err)
	}

	h.db.Logger.Info("Checked/created table edges")

	return nil
}

// MergeEdgeTx merges an edge inside the given transaction. An edge with
// the same (source, target, relation, brain_id) is left unchanged.
func (h *EdgesDBHandler) MergeEdgeTx(tx *sql.Tx, edge *model.Edge) error {
	_, err := tx.Exec(
		`SELECT merge_edge($1, $2, $3, $4, $5)`,
		edge.Source,
		edge.Target,
		edge.Relation,
		edge.BrainID,
		edge.SourceID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// SelectEdgesByBrain retrieves all edges of a brain
func (h *EdgesDBHandler) SelectEdgesByBrain(brainID string) ([]*model.Edge, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_edges_by_brain($1)`,
		brainID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEdges(rows)
}

// SelectEdgesFromNode retrieves the outgoing edges of a node
func (h *EdgesDBHandler) SelectEdgesFromNode(source string, brainID string) ([]*model.Edge, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_edges_from_node($1, $2)`,
		source,
		brainID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	return scanEdges(rows)
}

// scanEdges scans all edge rows in table column order.
func scanEdges(rows *sql.Rows) ([]*model.Edge, error) {
	var edges []*model.Edge
	for rows.Next() {
		edge := &model.Edge{}
		err := rows.Scan(
			&edge.Source,
			&edge.Target,
			&edge.Relation,
			&edge.BrainID,
			&edge.SourceID,
			&edge.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		edges = append(edges, edge)
	}

	err := rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return edges, nil
}
