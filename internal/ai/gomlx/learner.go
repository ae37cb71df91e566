package gomlx

import (
	"fmt"
	"maps"
	"math/rand"
	"os"
	"time"

	"github.com/chewxy/math32"
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/graph"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/gomlx/gomlx/ml/context/checkpoints"
	"github.com/gomlx/gomlx/ml/train"
	"github.com/gomlx/gomlx/ml/train/optimizers"
	"github.com/gomlx/gomlx/types/tensors"
	"github.com/janpfeifer/utttGo/internal/ai"
	"github.com/janpfeifer/utttGo/internal/ai/table"
	"github.com/janpfeifer/utttGo/internal/generics"
	"github.com/janpfeifer/utttGo/internal/parameters"
	. "github.com/janpfeifer/utttGo/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Learner implements ai.Learner with a GoMLX ValueModel.
//
// During a game the values to learn are collected in a buffer: the terminal states seen by
// BoardValue, and the TD(0) updated values of the states passed to LearnFromMove. GameOver trains
// the model on the buffer.
type Learner struct {
	backend backends.Backend
	model   ValueModel

	// Executors.
	scoreExec, lossExec, trainStepExec *context.Exec

	// optimizer used when training the model.
	optimizer optimizers.Interface

	// Hyperparameters cached values: they should also be set in the model context.
	batchSize int

	// values collected during the current game.
	values map[BoardState]float32

	rng *rand.Rand

	// fileName is the model checkpoint directory, if any.
	fileName string
}

var _ ai.BatchLearner = (*Learner)(nil)

// New creates a Learner with a new FNN model, using the given backend.
// Model hyperparameters can be overwritten with params: the ones used are removed from params.
func New(backend backends.Backend, params parameters.Params) (*Learner, error) {
	return NewWithModel(backend, NewFNN(), params)
}

// NewWithModel creates a Learner for model, which may have been loaded from a checkpoint already
// (see LoadFNN). Model hyperparameters in params take precedence over the ones in the model
// context: the ones used are removed from params.
func NewWithModel(backend backends.Backend, model ValueModel, params parameters.Params) (*Learner, error) {
	if backend == nil {
		return nil, ErrBackendUnavailable
	}
	if params != nil {
		if err := extractParams(params, model.Context()); err != nil {
			return nil, err
		}
	}
	l := &Learner{
		backend: backend,
		values:  make(map[BoardState]float32),
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	if err := l.setModel(model); err != nil {
		return nil, err
	}
	return l, nil
}

// setModel creates the executors for model, and forces the creation (or loading) of its variables.
func (l *Learner) setModel(model ValueModel) error {
	ctx := model.Context()
	l.model = model
	l.batchSize = context.GetParamOr(ctx, "batch_size", 32)
	l.optimizer = optimizers.FromContext(ctx)

	l.scoreExec = context.NewExec(l.backend, ctx,
		func(ctx *context.Context, inputs []*graph.Node) *graph.Node {
			// Remove last axis with dimension 1.
			return graph.Squeeze(l.model.ForwardGraph(ctx, inputs), -1)
		})
	l.lossExec = context.NewExec(l.backend, ctx,
		func(ctx *context.Context, inputsAndLabels []*graph.Node) *graph.Node {
			inputs := inputsAndLabels[:len(inputsAndLabels)-1]
			labels := inputsAndLabels[len(inputsAndLabels)-1]
			return l.model.LossGraph(ctx, inputs, labels)
		})
	l.trainStepExec = context.NewExec(l.backend, ctx,
		func(ctx *context.Context, inputsAndLabels []*graph.Node) *graph.Node {
			inputs := inputsAndLabels[:len(inputsAndLabels)-1]
			labels := inputsAndLabels[len(inputsAndLabels)-1]
			g := labels.Graph()
			ctx.SetTraining(g, true)
			loss := l.model.LossGraph(ctx, inputs, labels)
			l.optimizer.UpdateGraph(ctx, g, loss)
			train.ExecPerStepUpdateGraphFn(ctx, g)
			return loss
		})

	// Force creating/loading of variables.
	return exceptions.TryCatch[error](func() {
		_ = l.Predict(NewBoard().State())
	})
}

// String implements fmt.Stringer and ai.Learner.
func (l *Learner) String() string {
	if l.fileName == "" {
		return "nn[GoMLX]"
	}
	return fmt.Sprintf("nn[GoMLX]@%s", l.fileName)
}

// ModelDir returns the directory the model was last loaded from or saved to, if any.
func (l *Learner) ModelDir() string {
	return l.fileName
}

// Context returns the context of the model, with its hyperparameters and weights.
func (l *Learner) Context() *context.Context {
	return l.model.Context()
}

// BatchSize used when training.
func (l *Learner) BatchSize() int {
	return l.batchSize
}

// Predict returns the raw model prediction for boardState.
func (l *Learner) Predict(boardState BoardState) float32 {
	return l.BatchPredict([]BoardState{boardState})[0]
}

// BatchPredict returns the raw model predictions for boardStates.
func (l *Learner) BatchPredict(boardStates []BoardState) []float32 {
	inputs := l.model.CreateInputs(boardStates)
	donatedInputs := generics.SliceMap(inputs, func(t *tensors.Tensor) any {
		return graph.DonateTensorBuffer(t, l.backend)
	})
	predictionsT := l.scoreExec.Call(donatedInputs...)[0]
	predictions := tensors.CopyFlatData[float32](predictionsT)
	// Remove any padding:
	return predictions[:len(boardStates)]
}

// BoardValue implements ai.Learner.
//
// For terminal decisions the value is pinned with ai.TerminalValue, and the state is recorded to
// be learned at GameOver. Otherwise, it is the model prediction limited to [0, 1].
func (l *Learner) BoardValue(player GridState, board DecisionBoard, boardState BoardState) float32 {
	if value, isTerminal := ai.TerminalValue(player, board.Decision()); isTerminal {
		l.recordTerminalLabel(boardState, value)
		return value
	}
	return math32.Max(ai.LossValue, math32.Min(ai.WinValue, l.Predict(boardState)))
}

// BatchBoardValues implements ai.BatchLearner: the same as BoardValue, but the non-terminal
// boards are scored with one call to the model.
func (l *Learner) BatchBoardValues(player GridState, boards []DecisionBoard) []float32 {
	values := make([]float32, len(boards))
	toPredict := make([]int, 0, len(boards))
	for ii, board := range boards {
		if value, isTerminal := ai.TerminalValue(player, board.Decision()); isTerminal {
			l.recordTerminalLabel(board.State(), value)
			values[ii] = value
		} else {
			toPredict = append(toPredict, ii)
		}
	}
	if len(toPredict) == 0 {
		return values
	}
	predictions := l.BatchPredict(generics.SliceMap(toPredict, func(ii int) BoardState {
		return boards[ii].State()
	}))
	for predIdx, ii := range toPredict {
		values[ii] = math32.Max(ai.LossValue, math32.Min(ai.WinValue, predictions[predIdx]))
	}
	return values
}

// LearnFromMove implements ai.Learner: it records prevBoardState to be learned at GameOver, with
// its current prediction moved towards the value of board.State().
//
// The value of board.State() is given by BoardValue, so a non-terminal prediction is limited to
// [0, 1] before being used as the target. The prediction for prevBoardState is used as is.
func (l *Learner) LearnFromMove(player GridState, board DecisionBoard, prevBoardState BoardState) {
	curValue := l.BoardValue(player, board, board.State())
	prevValue := l.Predict(prevBoardState)
	l.recordBlendedValue(prevBoardState, ai.TDUpdate(prevValue, curValue))
	if klog.V(2).Enabled() {
		klog.Infof("%s: learned %s -> %.4f (predicted %.4f, current value %.4f)",
			l, player, l.values[prevBoardState], prevValue, curValue)
	}
}

// recordTerminalLabel records the fixed value of a terminal state.
func (l *Learner) recordTerminalLabel(boardState BoardState, value float32) {
	l.values[boardState] = value
}

// recordBlendedValue records the TD(0) updated value of the state before a move. It overwrites any
// value previously recorded for the state.
func (l *Learner) recordBlendedValue(prevBoardState BoardState, value float32) {
	l.values[prevBoardState] = value
}

// Pending returns a copy of the values collected since the last ResetForNewGame.
func (l *Learner) Pending() map[BoardState]float32 {
	return maps.Clone(l.values)
}

// ResetForNewGame implements ai.Learner: it clears the values collected.
func (l *Learner) ResetForNewGame() {
	clear(l.values)
}

// GameOver implements ai.Learner: it trains the model for one epoch over the values collected,
// shuffled and split in batches of BatchSize. The values collected are kept until ResetForNewGame.
func (l *Learner) GameOver() error {
	numExamples := len(l.values)
	if numExamples == 0 {
		return nil
	}
	boardStates := generics.KeysSortedFunc(l.values, BoardState.Compare)
	l.rng.Shuffle(numExamples, func(i, j int) {
		boardStates[i], boardStates[j] = boardStates[j], boardStates[i]
	})
	labels := generics.SliceMap(boardStates, func(s BoardState) float32 { return l.values[s] })

	var totalLoss float32
	err := exceptions.TryCatch[error](func() {
		for start := 0; start < numExamples; start += l.batchSize {
			end := min(start+l.batchSize, numExamples)
			loss := l.Learn(boardStates[start:end], labels[start:end])
			totalLoss += loss * float32(end-start)
		}
	})
	if err != nil {
		return errors.WithMessagef(err, "%s failed to train on %d examples", l, numExamples)
	}
	if klog.V(1).Enabled() {
		meanLoss := totalLoss / float32(numExamples)
		klog.Infof("%s: trained on %d examples, mean loss %.5f, RMSE %.4f",
			l, numExamples, meanLoss, math32.Sqrt(meanLoss))
	}
	return nil
}

// Learn runs one training step of the model with the given board states and labels.
// It returns the loss of the batch, before the update.
func (l *Learner) Learn(boardStates []BoardState, labels []float32) (loss float32) {
	lossT := l.trainStepExec.Call(l.createInputsAndLabels(boardStates, labels)...)[0]
	return tensors.ToScalar[float32](lossT)
}

// Loss returns the loss of the model on the given board states and labels, without training.
func (l *Learner) Loss(boardStates []BoardState, labels []float32) (loss float32) {
	lossT := l.lossExec.Call(l.createInputsAndLabels(boardStates, labels)...)[0]
	return tensors.ToScalar[float32](lossT)
}

func (l *Learner) createInputsAndLabels(boardStates []BoardState, labels []float32) []any {
	inputs := l.model.CreateInputs(boardStates)
	inputs = append(inputs, l.model.CreateLabels(labels))
	return generics.SliceMap(inputs, func(t *tensors.Tensor) any {
		return graph.DonateTensorBuffer(t, l.backend)
	})
}

// InitialModelTraining trains the model for one epoch on the values of jsonFile, in the format
// saved by table.Learner. A missing file is not an error, it is simply skipped.
//
// The values read replace the ones collected so far.
func (l *Learner) InitialModelTraining(jsonFile string) error {
	if _, err := os.Stat(jsonFile); os.IsNotExist(err) {
		klog.V(1).Infof("%s: no initial training, %s doesn't exist", l, jsonFile)
		return nil
	}
	values, err := table.ReadValues(jsonFile)
	if err != nil {
		return errors.WithMessage(err, "InitialModelTraining")
	}
	l.values = values
	klog.V(1).Infof("%s: initial training with %d states from %s", l, len(values), jsonFile)
	return l.GameOver()
}

// Save implements ai.Learner: it saves a checkpoint of the model (hyperparameters, weights and
// optimizer state) in the directory dir. A previous checkpoint in dir is moved to dir+"~".
func (l *Learner) Save(dir string) error {
	if dir == "" {
		klog.Errorf("Model not saved, because no directory was specified")
		return nil
	}
	backupDir := dir + "~"
	if _, err := os.Stat(dir); err == nil {
		if err = os.RemoveAll(backupDir); err != nil {
			return errors.Wrapf(err, "failed to remove old backup %s", backupDir)
		}
		if err = os.Rename(dir, backupDir); err != nil {
			return errors.Wrapf(err, "failed to rename %s to %s", dir, backupDir)
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to stat %s", dir)
	}

	var err error
	if panicErr := exceptions.TryCatch[error](func() {
		var checkpoint *checkpoints.Handler
		checkpoint, err = checkpoints.Build(l.model.Context()).Dir(dir).Keep(1).Done()
		if err == nil {
			err = checkpoint.Save()
		}
	}); panicErr != nil {
		err = panicErr
	}
	if err != nil {
		return errors.WithMessagef(err, "failed to save model to %s", dir)
	}
	l.fileName = dir
	klog.V(1).Infof("Saved model to %s", dir)
	return nil
}

// LoadFNN creates a FNN model with the hyperparameters and weights saved in the directory dir.
func LoadFNN(dir string) (*FNN, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, errors.Wrapf(err, "failed to load model from %s", dir)
	}
	model := NewFNN()
	var err error
	if panicErr := exceptions.TryCatch[error](func() {
		_, err = checkpoints.Build(model.Context()).Dir(dir).Immediate().Done()
	}); panicErr != nil {
		err = panicErr
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "failed to load model from %s", dir)
	}
	return model, nil
}

// Load implements ai.Learner: the current model is replaced by the one saved in the directory dir,
// hyperparameters included.
func (l *Learner) Load(dir string) error {
	model, err := LoadFNN(dir)
	if err != nil {
		return err
	}
	if err = l.setModel(model); err != nil {
		return errors.WithMessagef(err, "failed to load model from %s", dir)
	}
	l.fileName = dir
	klog.V(1).Infof("Loaded model from %s", dir)
	return nil
}
