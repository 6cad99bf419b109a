// Loom assembles role-play chat prompts from stored characters, connections
// and generation settings, and dispatches them to text-completion backends.
//
// Usage:
//
//	# Start the HTTP server
//	loom serve --config loom.yaml
//
//	# Print the prompt a request would produce, without calling a backend
//	loom prompt request.json
//
//	# Dispatch a request and print the completion text
//	loom complete request.json
//
//	# Copy a records file into the SQLite store
//	loom store import records.yaml
//
//	# Show version information
//	loom version
package main

import (
	"fmt"
	"os"

	"construct-hq/loom/pkg/cli"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}
