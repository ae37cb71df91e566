//go:build !nogomlx

package main

// Include GoMLX backend and the neural network learner.

import (
	_ "github.com/gomlx/gomlx/backends/simplego"
	_ "github.com/janpfeifer/utttGo/internal/ai/gomlx"
)
