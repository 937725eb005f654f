package main

import (
	"context"
	"fmt"
	"os"

	"github.com/yungbote/articlerec/internal/app"
	"github.com/yungbote/articlerec/internal/config"
	"github.com/yungbote/articlerec/internal/platform/shutdown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Printf("failed to initialize app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close(context.Background())

	if err := a.Run(ctx); err != nil {
		a.Log.Error("server exited", "error", err)
		a.Close(context.Background())
		os.Exit(1)
	}
}
