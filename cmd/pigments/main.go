// Pigments - dominant colour extraction
//
// Pigments samples the pixels of an image and clusters them with k-means to
// report the colours that dominate it.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/pigments/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
