package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/siherrmann/braingraph/helper"
)

// SourceRecord documents which sentences of which source contributed a
// phrase. Descriptions and original sentences of a node are parallel lists
// of these records, serialized to JSONB at persistence.
type SourceRecord struct {
	Data            string `json:"data"`
	SourceID        string `json:"source_id"`
	SentenceIndices []int  `json:"sentence_indices,omitempty"`
}

// RecordList is a JSONB-persisted list of source records.
type RecordList []SourceRecord

// Value implements the driver.Valuer interface for database storage
func (r RecordList) Value() (driver.Value, error) {
	if r == nil {
		return json.Marshal(RecordList{})
	}
	return json.Marshal(r)
}

// Scan implements the sql.Scanner interface for database retrieval
func (r *RecordList) Scan(value interface{}) error {
	if value == nil {
		*r = RecordList{}
		return nil
	}

	b, ok := value.([]byte)
	if !ok {
		return helper.NewError("byte assertion", errors.New("type assertion to []byte failed"))
	}

	return json.Unmarshal(b, r)
}

// KeywordNode is a concept or hierarchy node of a project graph.
// Name is unique within a brain; hierarchy-root keywords carry a trailing
// "*" in Name and Label to disambiguate them from concept nodes derived
// from the same string.
type KeywordNode struct {
	Name              string     `json:"name"`
	Label             string     `json:"label"`
	BrainID           string     `json:"brain_id"`
	Descriptions      RecordList `json:"descriptions"`
	OriginalSentences RecordList `json:"original_sentences"`
	SourceID          string     `json:"source_id"`
	// SourceIDs lists every source merged into this node, including
	// hierarchy contributors that carry no records. Maintained by the
	// merge; source removal strips entries and deletes the node once the
	// list would become empty.
	SourceIDs []string  `json:"source_ids,omitempty"`
	Embedding []float32 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BaseName returns the node name with a trailing hierarchy-root marker
// stripped.
func (n *KeywordNode) BaseName() string {
	return BaseKeyword(n.Name)
}

// IsRoot reports whether the node is a hierarchy root.
func (n *KeywordNode) IsRoot() bool {
	return strings.HasSuffix(n.Name, "*")
}

// BaseKeyword strips the trailing hierarchy-root marker from a keyword.
func BaseKeyword(name string) string {
	return strings.TrimSuffix(name, "*")
}
