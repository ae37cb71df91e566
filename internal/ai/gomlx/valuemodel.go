package gomlx

import (
	"github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/janpfeifer/utttGo/internal/state"
)

// ValueModel is a GoMLX model able to estimate the value of a board state.
type ValueModel interface {
	// Context used by the model: with both it weights and hyperparameters.
	Context() *context.Context

	// CreateInputs for a batch of board states as tensors.
	// It should also do the padding.
	CreateInputs(boardStates []state.BoardState) []*tensors.Tensor

	// CreateLabels tensor for the board states values.
	// It should also do the padding to match the inputs.
	CreateLabels(labels []float32) *tensors.Tensor

	// ForwardGraph is the GoMLX model graph function with the forward path.
	// It must return the values for each board state, shaped [batch_size, 1].
	ForwardGraph(ctx *context.Context, inputs []*graph.Node) *graph.Node

	// LossGraph should calculate the loss given the inputs and the labels (shaped [batch_size, 1]).
	// It must return a scalar with the loss value.
	LossGraph(ctx *context.Context, inputs []*graph.Node, labels *graph.Node) *graph.Node
}
