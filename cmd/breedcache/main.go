package main

import (
	"context"
	"os"
)

// this is set by goreleaser
var version string

func main() {
	if version == "" {
		version = "DEV"
	}
	o := newOptions()
	if err := execute(context.Background(), o, newRootCmd(o)); err != nil {
		os.Exit(1)
	}
}
