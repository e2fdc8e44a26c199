package main

import (
	"context"
	"fmt"
	"log"

	braingraph "github.com/siherrmann/braingraph"
	"github.com/siherrmann/braingraph/helper"
)

const firstSource = `Quantum Computing
Quantum computing changes cryptography fundamentally.
Classical cryptography depends on mathematically hard problems.
Quantum algorithms solve several of those problems efficiently.
Post-quantum schemes try to restore the hardness assumptions.`

const secondSource = `Quantum Sensing
Quantum sensors measure extremely small magnetic fields.
Precise sensors improve navigation without satellite signals.
Navigation systems need stable physical references.`

func main() {
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	bg, err := braingraph.NewBrainGraph(dbConfig, 384)
	if err != nil {
		log.Fatalf("Failed to create BrainGraph: %v", err)
	}
	defer bg.Close()

	if err := bg.UseDefaultPipeline(); err != nil {
		log.Fatalf("Failed to set up pipeline: %v", err)
	}

	ctx := context.Background()
	brainID := "research-brain"

	// Ingest two sources sharing vocabulary into one brain
	for sourceID, content := range map[string]string{
		"paper-crypto":  firstSource,
		"paper-sensing": secondSource,
	} {
		report, err := bg.Ingest(ctx, sourceID, brainID, content)
		if err != nil {
			log.Fatalf("Failed to ingest %s: %v", sourceID, err)
		}
		fmt.Printf("%s: root=%s nodes=%d edges=%d chunks=%d\n",
			sourceID, report.RootKeyword, report.NodesCreated, report.EdgesCreated, report.Chunks)
	}

	// Shared keywords now carry descriptions from both sources
	nodes, _, err := bg.GetGraph(ctx, brainID)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	for _, node := range nodes {
		sources := map[string]struct{}{}
		for _, d := range node.Descriptions {
			sources[d.SourceID] = struct{}{}
		}
		if len(sources) > 1 {
			fmt.Printf("shared keyword: %s (%d sources)\n", node.Name, len(sources))
		}
	}

	// Explore the neighborhood of the alphabetically first keyword
	if len(nodes) > 0 {
		results, err := bg.Neighborhood(ctx, brainID, nodes[0].Name, 2)
		if err != nil {
			log.Fatalf("Failed to traverse: %v", err)
		}
		for _, r := range results {
			fmt.Printf("hop %d: %s\n", r.Distance, r.Node.Name)
		}
	}

	// Remove the first source; the second source's contributions survive
	if err := bg.RemoveSource(ctx, "paper-crypto", brainID); err != nil {
		log.Fatalf("Failed to remove source: %v", err)
	}

	remaining, _, err := bg.GetGraph(ctx, brainID)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	fmt.Printf("nodes after removal: %d\n", len(remaining))
}
