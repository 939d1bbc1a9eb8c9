package main

import (
	"context"
	"os"

	"github.com/charmbracelet/log"
	"github.com/ksysoev/todo-tags/pkg/action"
	"github.com/sethvargo/go-githubactions"
)

func main() {
	// Set up action
	a := githubactions.New()
	ctx := context.Background()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:  log.InfoLevel,
		Prefix: "todo-tags",
	})
	if a.Getenv("RUNNER_DEBUG") == "1" {
		logger.SetLevel(log.DebugLevel)
	}

	err := action.Run(ctx, a, action.Options{
		Stdout: os.Stdout,
		Logger: logger,
	})
	if err != nil {
		a.Fatalf("%v", err)
	}

	a.Infof("TODO report completed successfully")
}
