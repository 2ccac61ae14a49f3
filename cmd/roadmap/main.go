// Package main is the entrypoint for roadmap, a local learning-roadmap
// tracker with daily streaks and achievements.
package main

import "github.com/roadmap-labs/roadmap/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
