package pipeline

import (
	"fmt"

	"github.com/siherrmann/braingraph/model"
)

// Batch accumulates the nodes and edges emitted during one ingestion
// before they are merged into the project graph in a single transaction.
// Nodes re-emitted under the same name are folded into one record, so the
// stream handed to the merger carries every name at most once.
type Batch struct {
	Nodes []*model.KeywordNode
	Edges []*model.Edge

	nodeIndex map[string]*model.KeywordNode
	edgeIndex map[string]struct{}
}

// NewBatch creates an empty batch.
func NewBatch() *Batch {
	return &Batch{
		nodeIndex: make(map[string]*model.KeywordNode),
		edgeIndex: make(map[string]struct{}),
	}
}

// AddNode appends a node, folding repeated emissions of the same name by
// concatenating their record lists and keeping the first non-nil embedding.
func (b *Batch) AddNode(node *model.KeywordNode) {
	existing, ok := b.nodeIndex[node.Name]
	if !ok {
		b.Nodes = append(b.Nodes, node)
		b.nodeIndex[node.Name] = node
		return
	}

	existing.Descriptions = append(existing.Descriptions, node.Descriptions...)
	existing.OriginalSentences = append(existing.OriginalSentences, node.OriginalSentences...)
	if existing.Embedding == nil {
		existing.Embedding = node.Embedding
	}
}

// AddEdge appends an edge unless the same (source, target, relation) was
// already emitted in this batch.
func (b *Batch) AddEdge(edge *model.Edge) {
	key := fmt.Sprintf("%s\x00%s\x00%s", edge.Source, edge.Target, edge.Relation)
	if _, ok := b.edgeIndex[key]; ok {
		return
	}
	b.edgeIndex[key] = struct{}{}
	b.Edges = append(b.Edges, edge)
}

// HasNode reports whether a node with the given name was emitted.
func (b *Batch) HasNode(name string) bool {
	_, ok := b.nodeIndex[name]
	return ok
}
