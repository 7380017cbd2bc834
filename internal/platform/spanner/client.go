// Package spanner provides Cloud Spanner client initialization, the
// database schema and transaction scopes.
package spanner

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"cloud.google.com/go/spanner"
)

//go:embed schema.sql
var schemaDDL string

// Config holds Spanner connection configuration.
type Config struct {
	ProjectID  string
	InstanceID string
	DatabaseID string
}

// DSN returns the Spanner database connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("projects/%s/instances/%s/databases/%s",
		c.ProjectID, c.InstanceID, c.DatabaseID)
}

// NewClient creates a client and checks that the database answers.
// The caller is responsible for closing the client when done.
// SPANNER_EMULATOR_HOST is honoured by the client library.
func NewClient(ctx context.Context, cfg Config) (*spanner.Client, error) {
	client, err := spanner.NewClient(ctx, cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to create spanner client: %w", err)
	}

	iter := client.Single().Query(ctx, spanner.Statement{SQL: "SELECT 1"})
	defer iter.Stop()
	if _, err := iter.Next(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to reach %s: %w", cfg.DSN(), err)
	}
	return client, nil
}

// SchemaStatements splits the embedded DDL into statements, in the order
// `gcloud spanner databases ddl update` expects them.
func SchemaStatements() []string {
	var stmts []string
	for _, stmt := range strings.Split(schemaDDL, ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}
