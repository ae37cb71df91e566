// Package state holds the Ultimate Tic-Tac-Toe board: the grid-state of each cell, the decision
// (who won, if anyone) and the serializable BoardState used as key by the learners.
package state

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

// GridState is the mark of a cell. PlayerX and PlayerO are also used to identify the players.
type GridState uint8

const (
	Empty GridState = iota
	PlayerX
	PlayerO
)

var gridStateLetters = [...]byte{'.', 'X', 'O'}

// String implements fmt.Stringer.
func (g GridState) String() string {
	switch g {
	case Empty:
		return "Empty"
	case PlayerX:
		return "PlayerX"
	case PlayerO:
		return "PlayerO"
	}
	return fmt.Sprintf("GridState(%d)", g)
}

// Letter used in the text form of a BoardState.
func (g GridState) Letter() byte {
	if int(g) < len(gridStateLetters) {
		return gridStateLetters[g]
	}
	return '?'
}

// Opponent returns the other player. Empty has no opponent, and it returns Empty.
func (g GridState) Opponent() GridState {
	switch g {
	case PlayerX:
		return PlayerO
	case PlayerO:
		return PlayerX
	}
	return Empty
}

// IsPlayer returns whether g is PlayerX or PlayerO.
func (g GridState) IsPlayer() bool {
	return g == PlayerX || g == PlayerO
}

// Decision is the outcome of a board (or of one of its sub-boards).
type Decision uint8

const (
	// Ongoing means no decision yet.
	Ongoing Decision = iota
	WonX
	WonO
	Draw
)

// String implements fmt.Stringer.
func (d Decision) String() string {
	switch d {
	case Ongoing:
		return "Ongoing"
	case WonX:
		return "WonX"
	case WonO:
		return "WonO"
	case Draw:
		return "Draw"
	}
	return fmt.Sprintf("Decision(%d)", d)
}

// IsTerminal returns true if there is a winner or a draw.
func (d Decision) IsTerminal() bool {
	return d != Ongoing
}

// Winner returns the winning player, or Empty if there is no winner.
func (d Decision) Winner() GridState {
	switch d {
	case WonX:
		return PlayerX
	case WonO:
		return PlayerO
	}
	return Empty
}

// WonBy returns the Decision of a win by the given player.
func WonBy(player GridState) Decision {
	if player == PlayerO {
		return WonO
	}
	return WonX
}

const (
	// SubBoardSize is the number of cells in a sub-board (and the number of sub-boards).
	SubBoardSize = 9

	// NumCells in the full board.
	NumCells = SubBoardSize * SubBoardSize
)

// BoardState is the full grid, indexed by subBoard*9+cell, both in row-major order.
//
// It is a value type: it can be used as a map key, and copies are independent.
// Its text form (81 letters, see GridState.Letter) is used to serialize it.
type BoardState [NumCells]GridState

// Index returns the index in BoardState of the cell in the given sub-board.
func Index(subBoard, cell int) int {
	return subBoard*SubBoardSize + cell
}

// SubBoard returns the 9 cells of the given sub-board.
func (s BoardState) SubBoard(subBoard int) (cells [SubBoardSize]GridState) {
	copy(cells[:], s[subBoard*SubBoardSize:(subBoard+1)*SubBoardSize])
	return
}

// String returns the 81 letters text form.
func (s BoardState) String() string {
	var sb strings.Builder
	sb.Grow(NumCells)
	for _, g := range s {
		sb.WriteByte(g.Letter())
	}
	return sb.String()
}

// MarshalText implements encoding.TextMarshaler.
func (s BoardState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *BoardState) UnmarshalText(text []byte) error {
	if len(text) != NumCells {
		return errors.Errorf("board state must have %d cells, got %d in %q", NumCells, len(text), text)
	}
	for ii, letter := range text {
		idx := slices.Index(gridStateLetters[:], letter)
		if idx < 0 {
			return errors.Errorf("invalid cell %q at position %d of board state %q", letter, ii, text)
		}
		s[ii] = GridState(idx)
	}
	return nil
}

// ParseBoardState parses the text form of a BoardState.
func ParseBoardState(text string) (s BoardState, err error) {
	err = s.UnmarshalText([]byte(text))
	return
}

// Compare returns -1, 0 or 1 comparing the cells of s and s2 in order.
func (s BoardState) Compare(s2 BoardState) int {
	return slices.Compare(s[:], s2[:])
}

// DecisionBoard is what the learners need from a board: its decision and its current state.
type DecisionBoard interface {
	Decision() Decision
	State() BoardState
}
