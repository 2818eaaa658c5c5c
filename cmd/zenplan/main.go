// Package main provides the zenplan command line entry point.
package main

import "github.com/thebtf/zenplan/cmd/zenplan/root"

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	root.Execute(Version)
}
