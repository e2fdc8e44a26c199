package model

import "time"

// Edge is a directed labelled relation between two keyword nodes of a
// brain. Hierarchy edges point parent to child; concept edges point from a
// keyword to a co-occurring keyword. The relation string is derived from a
// sentence in which both endpoints occur when there is one, otherwise from
// a sentence containing the target (or, for hierarchy edges, the shortest
// sentence of the sub-chunk).
type Edge struct {
	Source    string    `json:"source"`
	Target    string    `json:"target"`
	Relation  string    `json:"relation"`
	BrainID   string    `json:"brain_id"`
	SourceID  string    `json:"source_id"`
	CreatedAt time.Time `json:"created_at"`
}
