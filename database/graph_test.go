package database

import (
	"context"
	"testing"

	"github.com/siherrmann/braingraph/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// quantumBatches builds two source batches sharing the "quantum" node.
func quantumBatches(brainID string) ([]*model.KeywordNode, []*model.Edge, []*model.KeywordNode, []*model.Edge) {
	nodes1 := []*model.KeywordNode{
		{
			Name: "physics*", Label: "physics*", BrainID: brainID, SourceID: "s1",
			Descriptions: model.RecordList{}, OriginalSentences: model.RecordList{},
		},
		{
			Name: "quantum", Label: "quantum", BrainID: brainID, SourceID: "s1",
			Descriptions:      model.RecordList{{Data: "quantum from one", SourceID: "s1", SentenceIndices: []int{0}}},
			OriginalSentences: model.RecordList{{Data: "first original", SourceID: "s1", SentenceIndices: []int{0}}},
		},
	}
	edges1 := []*model.Edge{
		{Source: "physics*", Target: "quantum", Relation: "quantum from one", BrainID: brainID, SourceID: "s1"},
	}

	nodes2 := []*model.KeywordNode{
		{
			Name: "computing*", Label: "computing*", BrainID: brainID, SourceID: "s2",
			Descriptions: model.RecordList{}, OriginalSentences: model.RecordList{},
		},
		{
			Name: "quantum", Label: "quantum", BrainID: brainID, SourceID: "s2",
			Descriptions:      model.RecordList{{Data: "quantum from two", SourceID: "s2", SentenceIndices: []int{3}}},
			OriginalSentences: model.RecordList{{Data: "second original", SourceID: "s2", SentenceIndices: []int{3}}},
		},
	}
	edges2 := []*model.Edge{
		{Source: "computing*", Target: "quantum", Relation: "quantum from two", BrainID: brainID, SourceID: "s2"},
	}

	return nodes1, edges1, nodes2, edges2
}

func TestGraphMergeBatch(t *testing.T) {
	nodes, edges, graph := initHandlers(t)
	ctx := context.Background()

	t.Run("Merge batch twice yields the same graph", func(t *testing.T) {
		brainID := "brain-idempotent"
		batchNodes, batchEdges, _, _ := quantumBatches(brainID)

		require.NoError(t, graph.MergeBatch(ctx, batchNodes, batchEdges, 0))

		first, err := nodes.SelectNodesByBrain(brainID)
		require.NoError(t, err)
		firstEdges, err := edges.SelectEdgesByBrain(brainID)
		require.NoError(t, err)

		batchNodes, batchEdges, _, _ = quantumBatches(brainID)
		require.NoError(t, graph.MergeBatch(ctx, batchNodes, batchEdges, 0))

		second, err := nodes.SelectNodesByBrain(brainID)
		require.NoError(t, err)
		secondEdges, err := edges.SelectEdgesByBrain(brainID)
		require.NoError(t, err)

		assert.Equal(t, len(first), len(second), "Expected node count unchanged")
		assert.Equal(t, len(firstEdges), len(secondEdges), "Expected edge count unchanged")
		for i := range first {
			assert.Equal(t, len(first[i].Descriptions), len(second[i].Descriptions),
				"Expected description lengths unchanged for %s", second[i].Name)
		}
	})

	t.Run("Shared node unions records from both sources", func(t *testing.T) {
		brainID := "brain-multisource"
		nodes1, edges1, nodes2, edges2 := quantumBatches(brainID)

		require.NoError(t, graph.MergeBatch(ctx, nodes1, edges1, 0))
		require.NoError(t, graph.MergeBatch(ctx, nodes2, edges2, 0))

		quantum, err := nodes.SelectNode("quantum", brainID)
		require.NoError(t, err)
		require.Equal(t, 2, len(quantum.Descriptions), "Expected one description per source")

		sources := map[string]bool{}
		for _, d := range quantum.Descriptions {
			sources[d.SourceID] = true
		}
		assert.True(t, sources["s1"])
		assert.True(t, sources["s2"])
	})

	t.Run("Edge endpoint missing from the batch is inserted", func(t *testing.T) {
		brainID := "brain-endpoint"
		batchEdges := []*model.Edge{
			{Source: "implicit", Target: "alsoimplicit", Relation: "rel", BrainID: brainID, SourceID: "s1"},
		}

		require.NoError(t, graph.MergeBatch(ctx, nil, batchEdges, 0))

		node, err := nodes.SelectNode("implicit", brainID)
		require.NoError(t, err)
		assert.Equal(t, "implicit", node.Name)
	})
}

func TestGraphRemoveSource(t *testing.T) {
	nodes, edges, graph := initHandlers(t)
	ctx := context.Background()

	brainID := "brain-removal"
	nodes1, edges1, nodes2, edges2 := quantumBatches(brainID)
	require.NoError(t, graph.MergeBatch(ctx, nodes1, edges1, 0))
	require.NoError(t, graph.MergeBatch(ctx, nodes2, edges2, 0))

	t.Run("Removing the first source keeps shared nodes with remaining records", func(t *testing.T) {
		require.NoError(t, graph.RemoveSource(ctx, "s1", brainID, 0))

		quantum, err := nodes.SelectNode("quantum", brainID)
		require.NoError(t, err, "Expected shared node to survive")
		require.Equal(t, 1, len(quantum.Descriptions))
		assert.Equal(t, "s2", quantum.Descriptions[0].SourceID)
		require.Equal(t, 1, len(quantum.OriginalSentences))
		assert.Equal(t, "s2", quantum.OriginalSentences[0].SourceID)
	})

	t.Run("Nodes and edges owned solely by the source disappear", func(t *testing.T) {
		_, err := nodes.SelectNode("physics*", brainID)
		assert.Error(t, err, "Expected root node of the removed source to be deleted")

		remaining, err := edges.SelectEdgesByBrain(brainID)
		require.NoError(t, err)
		for _, e := range remaining {
			assert.NotEqual(t, "s1", e.SourceID, "Expected no edges of the removed source")
		}
	})

	t.Run("No node retains records of the removed source", func(t *testing.T) {
		count, err := nodes.CountNodesBySource("s1", brainID)
		require.NoError(t, err)
		assert.Equal(t, int64(0), count)
	})

	t.Run("Removing the second source empties the brain", func(t *testing.T) {
		require.NoError(t, graph.RemoveSource(ctx, "s2", brainID, 0))

		_, err := nodes.SelectNode("quantum", brainID)
		assert.Error(t, err, "Expected emptied shared node to be deleted")
	})

	t.Run("Removing an unknown source is a no-op", func(t *testing.T) {
		assert.NoError(t, graph.RemoveSource(ctx, "ghost", "brain-empty", 0))
	})
}

func TestGraphRemoveSourceSharedHierarchy(t *testing.T) {
	nodes, edges, graph := initHandlers(t)
	ctx := context.Background()

	brainID := "brain-shared-root"

	// Both sources pass through the same hierarchy keyword, which carries
	// no records of its own.
	sharedRoot := func(sourceID string) *model.KeywordNode {
		return &model.KeywordNode{
			Name: "shared*", Label: "shared*", BrainID: brainID, SourceID: sourceID,
			Descriptions: model.RecordList{}, OriginalSentences: model.RecordList{},
		}
	}
	conceptA := &model.KeywordNode{
		Name: "alpha", Label: "alpha", BrainID: brainID, SourceID: "sA",
		Descriptions:      model.RecordList{{Data: "alpha from a", SourceID: "sA"}},
		OriginalSentences: model.RecordList{{Data: "alpha original", SourceID: "sA"}},
	}
	conceptB := &model.KeywordNode{
		Name: "beta", Label: "beta", BrainID: brainID, SourceID: "sB",
		Descriptions:      model.RecordList{{Data: "beta from b", SourceID: "sB"}},
		OriginalSentences: model.RecordList{{Data: "beta original", SourceID: "sB"}},
	}

	require.NoError(t, graph.MergeBatch(ctx,
		[]*model.KeywordNode{sharedRoot("sA"), conceptA},
		[]*model.Edge{{Source: "shared*", Target: "alpha", Relation: "alpha from a", BrainID: brainID, SourceID: "sA"}}, 0))
	require.NoError(t, graph.MergeBatch(ctx,
		[]*model.KeywordNode{sharedRoot("sB"), conceptB},
		[]*model.Edge{{Source: "shared*", Target: "beta", Relation: "beta from b", BrainID: brainID, SourceID: "sB"}}, 0))

	t.Run("Merge accumulates hierarchy contributors", func(t *testing.T) {
		shared, err := nodes.SelectNode("shared*", brainID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"sA", "sB"}, shared.SourceIDs)
	})

	t.Run("Removing one contributor keeps the shared node and the other source's edge", func(t *testing.T) {
		require.NoError(t, graph.RemoveSource(ctx, "sA", brainID, 0))

		shared, err := nodes.SelectNode("shared*", brainID)
		require.NoError(t, err, "Expected shared hierarchy node to survive")
		assert.Equal(t, []string{"sB"}, shared.SourceIDs)
		assert.Equal(t, "sB", shared.SourceID, "Expected ownership handed to the remaining contributor")

		remaining, err := edges.SelectEdgesFromNode("shared*", brainID)
		require.NoError(t, err)
		require.Equal(t, 1, len(remaining), "Expected the second source's edge to survive")
		assert.Equal(t, "beta", remaining[0].Target)
	})

	t.Run("Removing the last contributor deletes the shared node", func(t *testing.T) {
		require.NoError(t, graph.RemoveSource(ctx, "sB", brainID, 0))

		_, err := nodes.SelectNode("shared*", brainID)
		assert.Error(t, err, "Expected hierarchy node without contributors to be deleted")
	})
}
