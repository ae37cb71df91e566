// Package statetest provides helper functions to create tests using Ultimate Tic-Tac-Toe states.
package statetest

import (
	. "github.com/janpfeifer/utttGo/internal/state"
)

// FixedBoard is a DecisionBoard with an arbitrary decision and state, not necessarily consistent
// with each other.
type FixedBoard struct {
	D Decision
	S BoardState
}

var _ DecisionBoard = FixedBoard{}

// Decision implements DecisionBoard.
func (b FixedBoard) Decision() Decision { return b.D }

// State implements DecisionBoard.
func (b FixedBoard) State() BoardState { return b.S }

// Mark is one mark in a board state layout.
type Mark struct {
	SubBoard, Cell int
	Player         GridState
}

// BuildState from a collection of marks.
func BuildState(marks ...Mark) (s BoardState) {
	for _, m := range marks {
		s[Index(m.SubBoard, m.Cell)] = m.Player
	}
	return
}

// PlayMoves plays the moves in order from a new board, and panics if any of them is invalid.
func PlayMoves(moves ...int) *Board {
	b := NewBoard()
	for _, move := range moves {
		var err error
		b, err = b.Act(move)
		if err != nil {
			panic(err)
		}
	}
	return b
}
