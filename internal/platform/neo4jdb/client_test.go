package neo4jdb

import (
	"context"
	"testing"

	"github.com/yungbote/articlerec/internal/config"
	"github.com/yungbote/articlerec/internal/platform/logger"
)

func TestNewRequiresLoggerAndURI(t *testing.T) {
	if _, err := New(config.Neo4jConfig{URI: "bolt://localhost:7687"}, nil); err == nil {
		t.Fatalf("want error without logger")
	}
	if _, err := New(config.Neo4jConfig{URI: "  "}, logger.NewNop()); err == nil {
		t.Fatalf("want error without uri")
	}
}

func TestNilClientCloseIsSafe(t *testing.T) {
	var c *Client
	if err := c.Close(context.Background()); err != nil {
		t.Fatalf("Close on nil client: %v", err)
	}
}
