package database

import (
	"context"
	"log"
	"testing"

	"github.com/siherrmann/braingraph/helper"
	loadSql "github.com/siherrmann/braingraph/sql"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
)

// Embedding dimension used by all database tests.
const testEmbeddingDim = 3

var dbPort string

func TestMain(m *testing.M) {
	var teardown func(ctx context.Context, opts ...testcontainers.TerminateOption) error
	var err error
	teardown, dbPort, err = helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("error starting postgres container: %v", err)
	}

	m.Run()

	if teardown != nil && teardown(context.Background()) != nil {
		log.Fatalf("error tearing down postgres container: %v", err)
	}
}

func initDB(t *testing.T) *helper.Database {
	helper.SetTestDatabaseConfigEnvs(t, dbPort)
	dbConfig, err := helper.NewDatabaseConfiguration()
	require.NoError(t, err, "failed to create database configuration")
	database := helper.NewTestDatabase(dbConfig)

	err = loadSql.Init(database.Instance)
	require.NoError(t, err)

	return database
}

// initHandlers creates the full handler set over one test database.
func initHandlers(t *testing.T) (*NodesDBHandler, *EdgesDBHandler, *GraphDBHandler) {
	database := initDB(t)

	nodes, err := NewNodesDBHandler(database, testEmbeddingDim, true)
	require.NoError(t, err)

	edges, err := NewEdgesDBHandler(database, true)
	require.NoError(t, err)

	graph, err := NewGraphDBHandler(database, nodes, edges)
	require.NoError(t, err)

	return nodes, edges, graph
}
