package database

import (
	"fmt"

	"github.com/siherrmann/braingraph/helper"
	"github.com/siherrmann/braingraph/model"
	loadSql "github.com/siherrmann/braingraph/sql"
)

// SourcesDBHandlerFunctions defines the interface for Sources database operations.
type SourcesDBHandlerFunctions interface {
	InsertSource(source *model.Source) error
	SelectSource(sourceID string, brainID string) (*model.Source, error)
	SelectSourcesByBrain(brainID string) ([]*model.Source, error)
	DeleteSource(sourceID string, brainID string) error
}

// SourcesDBHandler handles source metadata database operations
type SourcesDBHandler struct {
	db *helper.Database
}

// NewSourcesDBHandler creates a new sources database handler.
// It initializes the database connection and loads source-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewSourcesDBHandler(db *helper.Database, force bool) (*SourcesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	sourcesDbHandler := &SourcesDBHandler{
		db: db,
	}

	err := loadSql.LoadSourcesSql(sourcesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load sources sql", err)
	}

	err = sourcesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized SourcesDBHandler")

	return sourcesDbHandler, nil
}

// CreateTable creates the 'sources' table in the database.
// If the table already exists, it does not create it again.
func (h *SourcesDBHandler) CreateTable() error {
	_, err := h.db.Instance.Exec(`SELECT init_sources();`)
	if err != nil {
		return helper.NewError("initialize sources table", err)
	}

	h.db.Logger.Info("Checked/created table sources")

	return nil
}

// InsertSource inserts a source metadata row (or updates if exists)
func (h *SourcesDBHandler) InsertSource(source *model.Source) error {
	row := h.db.Instance.QueryRow(
		`SELECT * FROM insert_source($1, $2, $3, $4, $5)`,
		source.SourceID,
		source.BrainID,
		source.Title,
		source.SourceType,
		source.Metadata,
	)

	err := row.Scan(
		&source.ID,
		&source.RID,
		&source.SourceID,
		&source.BrainID,
		&source.Title,
		&source.SourceType,
		&source.Metadata,
		&source.CreatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectSource retrieves a source by source id within a brain
func (h *SourcesDBHandler) SelectSource(sourceID string, brainID string) (*model.Source, error) {
	source := &model.Source{}
	row := h.db.Instance.QueryRow(
		`SELECT * FROM select_source($1, $2)`,
		sourceID,
		brainID,
	)

	err := row.Scan(
		&source.ID,
		&source.RID,
		&source.SourceID,
		&source.BrainID,
		&source.Title,
		&source.SourceType,
		&source.Metadata,
		&source.CreatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return source, nil
}

// SelectSourcesByBrain retrieves all sources of a brain
func (h *SourcesDBHandler) SelectSourcesByBrain(brainID string) ([]*model.Source, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_sources_by_brain($1)`,
		brainID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var sources []*model.Source
	for rows.Next() {
		source := &model.Source{}
		err := rows.Scan(
			&source.ID,
			&source.RID,
			&source.SourceID,
			&source.BrainID,
			&source.Title,
			&source.SourceType,
			&source.Metadata,
			&source.CreatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		sources = append(sources, source)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return sources, nil
}

// DeleteSource deletes a source metadata row
func (h *SourcesDBHandler) DeleteSource(sourceID string, brainID string) error {
	_, err := h.db.Instance.Exec(
		`SELECT delete_source_row($1, $2)`,
		sourceID,
		brainID,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}
