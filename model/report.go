package model

// IngestReport summarizes one completed ingestion.
type IngestReport struct {
	JobID        string `json:"job_id"`
	NodesCreated int    `json:"nodes_created"`
	EdgesCreated int    `json:"edges_created"`
	Chunks       int    `json:"chunks"`
	RootKeyword  string `json:"root_keyword"`
	DurationMS   int64  `json:"duration_ms"`
}
