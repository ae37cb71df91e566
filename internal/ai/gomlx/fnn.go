package gomlx

import (
	. "github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/layers"
	"github.com/gomlx/gomlx/ml/layers/activations"
	fnnLayer "github.com/gomlx/gomlx/ml/layers/fnn"
	"github.com/gomlx/gomlx/ml/layers/regularizers"
	"github.com/gomlx/gomlx/ml/train/losses"
	"github.com/gomlx/gomlx/ml/train/optimizers"
	"github.com/gomlx/gomlx/types/shapes"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/janpfeifer/utttGo/internal/state"
)

// InputDim is the size of the encoding of a board state: one value per cell.
const InputDim = state.NumCells

// cellValues encodes each GridState as the input of the model.
var cellValues = [...]float32{
	state.Empty:   0,
	state.PlayerO: -1,
	state.PlayerX: 1,
}

// EncodeState writes the encoding of boardState into dst, which must have length InputDim.
func EncodeState(boardState state.BoardState, dst []float32) {
	for ii, g := range boardState {
		dst[ii] = cellValues[g]
	}
}

// FNN implement a feed-forward model on the encoded board state: one hidden layer of 81 ReLU units
// and one linear output unit.
type FNN struct {
	ctx *context.Context
}

var _ ValueModel = (*FNN)(nil)

// NewFNN creates an FNN model with a fresh context, initialized with hyperparameters set to their defaults.
func NewFNN() *FNN {
	fnn := &FNN{ctx: context.New()}
	fnn.ctx.RngStateReset()
	fnn.ctx.SetParams(map[string]any{
		"batch_size": 32,

		optimizers.ParamOptimizer:    "adam",
		optimizers.ParamLearningRate: 0.001,
		optimizers.ParamAdamEpsilon:  1e-7,
		activations.ParamActivation:  "relu",
		layers.ParamDropoutRate:      0.0,
		regularizers.ParamL2:         0.0,
		regularizers.ParamL1:         0.0,

		// FNN network parameters:
		fnnLayer.ParamNumHiddenLayers: 1,
		fnnLayer.ParamNumHiddenNodes:  InputDim,
		fnnLayer.ParamResidual:        false,
		fnnLayer.ParamNormalization:   "none",
	})
	fnn.ctx = fnn.ctx.Checked(false)
	return fnn
}

// Context implements ValueModel.
func (fnn *FNN) Context() *context.Context {
	return fnn.ctx
}

// paddedBatchSize returns a padded batchSize for the given numStates.
// This is important so we don't have too many different versions of the program for every different batch size.
func (fnn *FNN) paddedBatchSize(numStates int) int {
	// Make sure the default batchSize is supported without padding.
	defaultBatchSize := context.GetParamOr(fnn.ctx, "batch_size", 32)
	if numStates == defaultBatchSize {
		return numStates
	}

	paddedSize := 1
	for paddedSize < numStates {
		// Increase 1.5x at a time.
		paddedSize = paddedSize + (paddedSize+1)/2
	}
	return paddedSize
}

// CreateInputs implements ValueModel.CreateInputs.
// It returns the encoded states shaped [paddedBatchSize, InputDim] and the number of states used.
func (fnn *FNN) CreateInputs(boardStates []state.BoardState) []*tensors.Tensor {
	numStates := len(boardStates)
	paddedBatchSize := fnn.paddedBatchSize(numStates)
	encoded := tensors.FromShape(shapes.Make(dtypes.Float32, paddedBatchSize, InputDim))
	tensors.MutableFlatData(encoded, func(flat []float32) {
		for idx, boardState := range boardStates {
			EncodeState(boardState, flat[idx*InputDim:(idx+1)*InputDim])
		}
	})
	return []*tensors.Tensor{encoded, tensors.FromScalar(int32(numStates))}
}

// CreateLabels implements ValueModel.CreateLabels.
func (fnn *FNN) CreateLabels(labels []float32) *tensors.Tensor {
	paddedBatchSize := fnn.paddedBatchSize(len(labels))
	labelsT := tensors.FromShape(shapes.Make(dtypes.Float32, paddedBatchSize, 1))
	tensors.MutableFlatData(labelsT, func(flat []float32) {
		copy(flat, labels)
	})
	return labelsT
}

// getBatchMask based on padding on the inputs.
func (fnn *FNN) getBatchMask(inputs []*Node) *Node {
	encoded := inputs[0]
	usedBatchSize := inputs[1]
	g := encoded.Graph()
	batchSize := encoded.Shape().Dim(0)
	return LessThan(Iota(g, shapes.Make(dtypes.Int32, batchSize, 1), 0), usedBatchSize)
}

// ForwardGraph implements ValueModel: the hidden layers and the linear output are all configured
// by the context hyperparameters (see NewFNN for defaults).
func (fnn *FNN) ForwardGraph(ctx *context.Context, inputs []*Node) *Node {
	encoded := inputs[0]
	batchSize := encoded.Shape().Dim(0)
	values := fnnLayer.New(ctx.In("fnn"), encoded, 1).Done()
	values.AssertDims(batchSize, 1) // 2-dim tensor, with batch size as the leading dimension.
	return values
}

// LossGraph implements ValueModel: mean squared error over the non-padded examples.
func (fnn *FNN) LossGraph(ctx *context.Context, inputs []*Node, labels *Node) *Node {
	predictions := fnn.ForwardGraph(ctx, inputs)
	batchMask := fnn.getBatchMask(inputs)
	return losses.MeanSquaredError([]*Node{labels, batchMask}, []*Node{predictions})
}
