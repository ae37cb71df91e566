// Package ai (Artificial Intelligence) defines the interface that value learners for the game
// have to implement, and the temporal-difference (TD(0)) rule they share.
package ai

import (
	. "github.com/janpfeifer/utttGo/internal/state"
	"github.com/pkg/errors"
)

const (
	// WinValue for the winning side. The losing side gets LossValue.
	WinValue = float32(1)

	// LossValue for the losing side.
	LossValue = float32(0)

	// NeutralValue is the value of a draw, and of states never seen before.
	NeutralValue = float32(0.5)

	// LearningRate (alpha) of the TD(0) update.
	LearningRate = float32(0.2)
)

// ErrNotImplemented is returned (or used to panic) by UnimplementedLearner.
var ErrNotImplemented = errors.New("not implemented")

// Learner estimates the value of board states and learns from the moves played.
//
// Values are in [0, 1] and represent how good a state is for the given player: 1 is a sure win,
// 0 a sure loss, and 0.5 a draw or unknown.
//
// Learners are not safe for concurrent use, see Synchronized.
type Learner interface {
	// BoardValue returns the value of boardState from the perspective of player.
	// Terminal decisions of board are pinned with TerminalValue, other states use the learned estimate.
	BoardValue(player GridState, board DecisionBoard, boardState BoardState) float32

	// LearnFromMove updates the value of prevBoardState towards the value of board.State(), from the
	// perspective of player, the one who just moved. prevBoardState doesn't need to have been seen before.
	LearnFromMove(player GridState, board DecisionBoard, prevBoardState BoardState)

	// Save a snapshot of what was learned to fileName.
	Save(fileName string) error

	// Load a snapshot previously saved with Save.
	Load(fileName string) error

	// ResetForNewGame clears any per-game buffers.
	ResetForNewGame()

	// GameOver flushes the per-game buffers into the learned state.
	GameOver() error

	// String returns the learner name.
	String() string
}

// BatchLearner is a Learner that handles batches.
type BatchLearner interface {
	Learner

	// BatchBoardValues returns BoardValue(player, board, board.State()) for each of the boards,
	// presumably more efficiently.
	BatchBoardValues(player GridState, boards []DecisionBoard) []float32
}

// BoardValues returns the value of each of the boards for player. It uses
// BatchLearner.BatchBoardValues if learner implements it, otherwise BoardValue is called once per board.
func BoardValues(learner Learner, player GridState, boards []DecisionBoard) []float32 {
	if batchLearner, ok := learner.(BatchLearner); ok {
		return batchLearner.BatchBoardValues(player, boards)
	}
	values := make([]float32, len(boards))
	for ii, board := range boards {
		values[ii] = learner.BoardValue(player, board, board.State())
	}
	return values
}

// TerminalValue returns whether the decision is terminal, and if so its value for player.
// If isTerminal is false, value should be ignored.
func TerminalValue(player GridState, decision Decision) (value float32, isTerminal bool) {
	switch decision {
	case WonX, WonO:
		if decision.Winner() == player {
			return WinValue, true
		}
		return LossValue, true
	case Draw:
		return NeutralValue, true
	}
	return 0, false
}

// TDUpdate moves prevValue towards curValue by LearningRate.
func TDUpdate(prevValue, curValue float32) float32 {
	return prevValue + LearningRate*(curValue-prevValue)
}

// UnimplementedLearner can be embedded by learners: it provides no-op ResetForNewGame and GameOver,
// and reports ErrNotImplemented for everything else.
type UnimplementedLearner struct{}

// BoardValue panics with ErrNotImplemented.
func (UnimplementedLearner) BoardValue(GridState, DecisionBoard, BoardState) float32 {
	panic(errors.WithMessage(ErrNotImplemented, "BoardValue"))
}

// LearnFromMove panics with ErrNotImplemented.
func (UnimplementedLearner) LearnFromMove(GridState, DecisionBoard, BoardState) {
	panic(errors.WithMessage(ErrNotImplemented, "LearnFromMove"))
}

// Save returns ErrNotImplemented.
func (UnimplementedLearner) Save(string) error {
	return errors.WithMessage(ErrNotImplemented, "Save")
}

// Load returns ErrNotImplemented.
func (UnimplementedLearner) Load(string) error {
	return errors.WithMessage(ErrNotImplemented, "Load")
}

// ResetForNewGame is a no-op.
func (UnimplementedLearner) ResetForNewGame() {}

// GameOver is a no-op.
func (UnimplementedLearner) GameOver() error { return nil }

// String implements fmt.Stringer.
func (UnimplementedLearner) String() string { return "unimplemented" }

var _ Learner = UnimplementedLearner{}
