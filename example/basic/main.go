package main

import (
	"context"
	"fmt"
	"log"

	braingraph "github.com/siherrmann/braingraph"
	"github.com/siherrmann/braingraph/helper"
)

const sampleContent = `Knowledge Graphs
A knowledge graph connects concepts extracted from documents.
Each document is segmented into sentences and recursively chunked by topic similarity.
Every finalized chunk contributes keyword nodes and labelled relations.
Repeated ingestion of the same document leaves the graph unchanged because all writes merge.`

func main() {
	// Start a test PostgreSQL container
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	// Create database configuration using the container port
	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	// Create the BrainGraph with 384-dimensional node embeddings
	bg, err := braingraph.NewBrainGraph(dbConfig, 384)
	if err != nil {
		log.Fatalf("Failed to create BrainGraph: %v", err)
	}
	defer bg.Close()

	// Use the default pipeline (downloads the embedding model on first run)
	if err := bg.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	ctx := context.Background()

	// Ingest one memo into the project graph
	report, err := bg.Ingest(ctx, "memo-1", "my-brain", sampleContent)
	if err != nil {
		log.Fatalf("Failed to ingest: %v", err)
	}

	fmt.Printf("Root keyword: %s\n", report.RootKeyword)
	fmt.Printf("Nodes created: %d, edges created: %d, chunks: %d (%d ms)\n",
		report.NodesCreated, report.EdgesCreated, report.Chunks, report.DurationMS)

	// Show the whole graph
	nodes, edges, err := bg.GetGraph(ctx, "my-brain")
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	for _, node := range nodes {
		fmt.Printf("node: %s (%d descriptions)\n", node.Name, len(node.Descriptions))
	}
	for _, edge := range edges {
		fmt.Printf("edge: %s -> %s [%s]\n", edge.Source, edge.Target, edge.Relation)
	}

	// Search for keywords near a query
	results, err := bg.SearchKeywords(ctx, "my-brain", "document chunking", 3)
	if err != nil {
		log.Fatalf("Failed to search: %v", err)
	}
	for _, r := range results {
		fmt.Printf("similar keyword: %s\n", r.Name)
	}
}
