package main

import (
	"os"

	"github.com/draeangela/industry-data-visualizer/cmd/viewer/commands"
)

// main is the entry point for the viewer CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/viewer [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
