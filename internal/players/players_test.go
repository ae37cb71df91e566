package players

import (
	"math/rand/v2"
	"testing"

	"github.com/janpfeifer/utttGo/internal/ai"
	. "github.com/janpfeifer/utttGo/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// moveLearner values the boards by the last move played, from the table values.
type moveLearner struct {
	ai.UnimplementedLearner
	values map[int]float32
	calls  int
}

func (l *moveLearner) BoardValue(_ GridState, board DecisionBoard, boardState BoardState) float32 {
	l.calls++
	prev := NewBoard().State()
	for move := range NumCells {
		if boardState[move] != prev[move] {
			return l.values[move]
		}
	}
	return ai.NeutralValue
}

func TestGreedy(t *testing.T) {
	learner := &moveLearner{values: map[int]float32{10: 0.7, 40: 0.9, 80: 0.9}}
	player := NewGreedy(learner, 0)
	move, next := player.Play(NewBoard())
	assert.Equal(t, 40, move) // Tie with 80, the lowest move wins.
	assert.Equal(t, PlayerX, next.State()[40])
	assert.Equal(t, NumCells, learner.calls)
}

// batchMoveLearner is a moveLearner that also scores batches.
type batchMoveLearner struct {
	moveLearner
	batchCalls, batchSize int
}

func (l *batchMoveLearner) BatchBoardValues(player GridState, boards []DecisionBoard) []float32 {
	l.batchCalls++
	l.batchSize = len(boards)
	values := make([]float32, len(boards))
	for ii, board := range boards {
		values[ii] = l.moveLearner.BoardValue(player, board, board.State())
	}
	return values
}

func TestGreedy_Batched(t *testing.T) {
	learner := &batchMoveLearner{moveLearner: moveLearner{values: map[int]float32{10: 0.7, 40: 0.9, 80: 0.9}}}
	move, next := NewGreedy(learner, 0).Play(NewBoard())
	assert.Equal(t, 40, move)
	assert.Equal(t, PlayerX, next.State()[40])
	assert.Equal(t, 1, learner.batchCalls)
	assert.Equal(t, NumCells, learner.batchSize)

	// Through Synchronized the batch is kept.
	move, _ = NewGreedy(ai.Synchronized(learner), 0).Play(NewBoard())
	assert.Equal(t, 40, move)
	assert.Equal(t, 2, learner.batchCalls)
}

func TestGreedyExplores(t *testing.T) {
	learner := &moveLearner{values: map[int]float32{40: 1}}
	player := &Greedy{Learner: learner, Epsilon: 1, Rand: rand.New(rand.NewPCG(42, 7))}
	board := NewBoard()
	for range 20 {
		move, next := player.Play(board)
		assert.True(t, board.IsValidMove(move))
		assert.Equal(t, PlayerX, next.State()[move])
	}
	assert.Zero(t, learner.calls)
}

func TestRandom(t *testing.T) {
	player := &Random{Rand: rand.New(rand.NewPCG(1, 2))}
	board := NewBoard()
	for !board.Decision().IsTerminal() {
		var move int
		prev := board
		move, board = player.Play(board)
		require.True(t, prev.IsValidMove(move))
	}
}

func TestPlayMatch(t *testing.T) {
	var numMoves int
	expectedMover := PlayerX
	board, err := PlayMatch(&Random{}, &Random{}, func(mover GridState, prevBoardState BoardState, board *Board) {
		numMoves++
		assert.Equal(t, expectedMover, mover)
		assert.NotEqual(t, prevBoardState, board.State())
		expectedMover = expectedMover.Opponent()
	})
	require.NoError(t, err)
	assert.True(t, board.Decision().IsTerminal())
	assert.Equal(t, board.MoveNumber(), numMoves)

	// Panics of the players are returned as errors.
	_, err = PlayMatch(NewGreedy(ai.UnimplementedLearner{}, 0), &Random{}, nil)
	require.ErrorIs(t, err, ai.ErrNotImplemented)
}
