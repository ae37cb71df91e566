//go:build xla && !nogomlx

package main

// Include the XLA backend: it requires the PJRT plugin to be installed, see github.com/gomlx/gopjrt.

import (
	_ "github.com/gomlx/gomlx/backends/xla"
)
