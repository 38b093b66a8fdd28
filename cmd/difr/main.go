// difr serves the DiFR provider reliability leaderboard.
//
// Usage:
//
//	difr serve [--addr=:9080]
//	difr report [--format=json|yaml] [--model=<id>]
//	difr mcp
//	difr gen-samples --dir=<path> [--runs=6] [--nan-rate=0.05]
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
