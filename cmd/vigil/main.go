// Package main is the single-binary entrypoint for Vigil.
package main

import "github.com/vigil-network/vigil/internal/cli"

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.Execute(version)
}
