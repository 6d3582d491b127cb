// accent - semantic colour extraction
//
// accent samples an image and picks an accent colour, a light colour, a
// dark colour and a small palette for UI theming.
//
// Copyright (c) 2025 John Mylchreest
// Licensed under the MIT License
package main

import (
	"os"

	"github.com/jmylchreest/accent/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
