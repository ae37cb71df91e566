// Package players implements players driven by the values of an ai.Learner, plus a random player,
// and the loop to play a match between two of them.
package players

import (
	"math/rand/v2"

	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/utttGo/internal/ai"
	. "github.com/janpfeifer/utttGo/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Player is anything that is able to play the game.
type Player interface {
	// Play returns the move chosen and the next board (after the move is played).
	// It is only called on boards that are not decided.
	Play(board *Board) (move int, nextBoard *Board)
}

// Greedy plays the move leading to the board with the highest value for the player, as estimated by
// Learner. With probability Epsilon it explores instead, playing a random valid move.
//
// Ties are broken in favor of the lowest move.
type Greedy struct {
	Learner ai.Learner
	Epsilon float64

	// Rand is used for exploration. If nil, the global math/rand/v2 functions are used.
	Rand *rand.Rand
}

var _ Player = (*Greedy)(nil)

// NewGreedy creates a Greedy player with the given learner and exploration rate.
func NewGreedy(learner ai.Learner, epsilon float64) *Greedy {
	return &Greedy{Learner: learner, Epsilon: epsilon}
}

// Play implements Player.
func (p *Greedy) Play(board *Board) (move int, nextBoard *Board) {
	moves := validMovesOrPanic(board)
	if p.Epsilon > 0 && float64Of(p.Rand) < p.Epsilon {
		move = moves[intNOf(p.Rand, len(moves))]
		return move, actOrPanic(board, move)
	}

	player := board.NextPlayer()
	candidates := make([]DecisionBoard, len(moves))
	for ii, candidate := range moves {
		candidates[ii] = actOrPanic(board, candidate)
	}
	values := ai.BoardValues(p.Learner, player, candidates)
	var bestValue float32
	for ii, value := range values {
		if ii == 0 || value > bestValue {
			move, nextBoard, bestValue = moves[ii], candidates[ii].(*Board), value
		}
	}
	if klog.V(2).Enabled() {
		klog.Infof("%s plays %d (value %.4f) with %s", player, move, bestValue, p.Learner)
	}
	return
}

// Random plays uniformly random valid moves.
type Random struct {
	// Rand is used to pick the moves. If nil, the global math/rand/v2 functions are used.
	Rand *rand.Rand
}

var _ Player = (*Random)(nil)

// Play implements Player.
func (p *Random) Play(board *Board) (move int, nextBoard *Board) {
	moves := validMovesOrPanic(board)
	move = moves[intNOf(p.Rand, len(moves))]
	return move, actOrPanic(board, move)
}

// MoveFn is called after each move of a match, with the player who moved, the state before the
// move and the board after it.
type MoveFn func(mover GridState, prevBoardState BoardState, board *Board)

// PlayMatch plays a full match from a new board, PlayerX moving first.
// onMove, if not nil, is called after every move. It returns the final board.
func PlayMatch(playerX, playerO Player, onMove MoveFn) (board *Board, err error) {
	board = NewBoard()
	err = exceptions.TryCatch[error](func() {
		for !board.Decision().IsTerminal() {
			mover := board.NextPlayer()
			player := playerX
			if mover == PlayerO {
				player = playerO
			}
			prevBoardState := board.State()
			_, board = player.Play(board)
			if onMove != nil {
				onMove(mover, prevBoardState, board)
			}
		}
	})
	if err != nil {
		return nil, errors.WithMessage(err, "match failed")
	}
	return board, nil
}

func validMovesOrPanic(board *Board) []int {
	moves := board.ValidMoves()
	if len(moves) == 0 {
		exceptions.Panicf("no valid moves to play, board decision is %s", board.Decision())
	}
	return moves
}

func actOrPanic(board *Board, move int) *Board {
	next, err := board.Act(move)
	if err != nil {
		panic(err)
	}
	return next
}

func float64Of(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}

func intNOf(rng *rand.Rand, n int) int {
	if rng == nil {
		return rand.IntN(n)
	}
	return rng.IntN(n)
}
