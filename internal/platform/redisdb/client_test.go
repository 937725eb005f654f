package redisdb

import (
	"testing"

	"github.com/yungbote/articlerec/internal/config"
	"github.com/yungbote/articlerec/internal/platform/logger"
)

func TestNewWithoutAddrDisablesCache(t *testing.T) {
	c, err := New(config.RedisConfig{}, logger.NewNop())
	if err != nil || c != nil {
		t.Fatalf("empty addr: want nil,nil got=%v,%v", c, err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close on nil client: %v", err)
	}
}

func TestNewRequiresLogger(t *testing.T) {
	if _, err := New(config.RedisConfig{Addr: "localhost:6379"}, nil); err == nil {
		t.Fatalf("want error without logger")
	}
}
