package state

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// AnySubBoard is returned by Board.ActiveSubBoard when the next player can play in any undecided sub-board.
const AnySubBoard = -1

// lines of a 3x3 grid that win the game (or sub-board).
var lines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8}, // Rows.
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8}, // Columns.
	{0, 4, 8}, {2, 4, 6}, // Diagonals.
}

// Board is an Ultimate Tic-Tac-Toe board: 9 sub-boards of 9 cells each.
//
// Boards are immutable from the outside: Act returns a new Board.
// It implements DecisionBoard.
type Board struct {
	cells        BoardState
	subDecisions [SubBoardSize]Decision
	nextPlayer   GridState
	activeSub    int
	decision     Decision
	moveNumber   int
}

var _ DecisionBoard = (*Board)(nil)

// NewBoard returns an empty board, with PlayerX to move on any sub-board.
func NewBoard() *Board {
	return &Board{
		nextPlayer: PlayerX,
		activeSub:  AnySubBoard,
	}
}

// NewBoardFromState creates a board from a state, deriving the decisions from the cells.
// The next player is the one with fewer marks (PlayerX on ties), and any sub-board can be played.
func NewBoardFromState(s BoardState) *Board {
	b := &Board{cells: s, activeSub: AnySubBoard}
	var numX, numO int
	for _, g := range s {
		switch g {
		case PlayerX:
			numX++
		case PlayerO:
			numO++
		}
	}
	b.moveNumber = numX + numO
	b.nextPlayer = PlayerX
	if numX > numO {
		b.nextPlayer = PlayerO
	}
	for sub := range SubBoardSize {
		b.subDecisions[sub] = decide(s.SubBoard(sub))
	}
	b.decision = b.gameDecision()
	return b
}

// Decision implements DecisionBoard.
func (b *Board) Decision() Decision { return b.decision }

// State implements DecisionBoard.
func (b *Board) State() BoardState { return b.cells }

// NextPlayer to move.
func (b *Board) NextPlayer() GridState { return b.nextPlayer }

// ActiveSubBoard where the next move must be played, or AnySubBoard.
func (b *Board) ActiveSubBoard() int { return b.activeSub }

// SubBoardDecision returns the decision of the given sub-board.
func (b *Board) SubBoardDecision(subBoard int) Decision { return b.subDecisions[subBoard] }

// MoveNumber is the number of moves played so far.
func (b *Board) MoveNumber() int { return b.moveNumber }

// IsValidMove checks whether the move (an index into BoardState) can be played.
func (b *Board) IsValidMove(move int) bool {
	if b.decision.IsTerminal() || move < 0 || move >= NumCells {
		return false
	}
	sub := move / SubBoardSize
	if b.activeSub != AnySubBoard && sub != b.activeSub {
		return false
	}
	return b.subDecisions[sub] == Ongoing && b.cells[move] == Empty
}

// ValidMoves returns the sorted list of valid moves. It is empty if the game is decided.
func (b *Board) ValidMoves() []int {
	if b.decision.IsTerminal() {
		return nil
	}
	moves := make([]int, 0, NumCells)
	for move := range NumCells {
		if b.IsValidMove(move) {
			moves = append(moves, move)
		}
	}
	return moves
}

// Act returns a new board with the move played by the next player.
// The receiver is not changed.
func (b *Board) Act(move int) (*Board, error) {
	if !b.IsValidMove(move) {
		return nil, errors.Errorf("invalid move %d (sub-board %d, cell %d) for %s on move #%d",
			move, move/SubBoardSize, move%SubBoardSize, b.nextPlayer, b.moveNumber)
	}
	newB := *b
	newB.cells[move] = b.nextPlayer
	newB.moveNumber++
	newB.nextPlayer = b.nextPlayer.Opponent()

	sub, cell := move/SubBoardSize, move%SubBoardSize
	newB.subDecisions[sub] = decide(newB.cells.SubBoard(sub))
	newB.decision = newB.gameDecision()
	if newB.subDecisions[cell] == Ongoing {
		newB.activeSub = cell
	} else {
		newB.activeSub = AnySubBoard
	}
	return &newB, nil
}

// gameDecision from the sub-boards decisions.
func (b *Board) gameDecision() Decision {
	var macro [SubBoardSize]GridState
	for sub, d := range b.subDecisions {
		macro[sub] = d.Winner()
	}
	if d := decide(macro); d == WonX || d == WonO {
		return d
	}
	for _, d := range b.subDecisions {
		if d == Ongoing {
			return Ongoing
		}
	}
	// All sub-boards decided, no winning line.
	return Draw
}

// decide returns the decision for a 3x3 grid: a line of 3 wins, full grid is a draw.
func decide(cells [SubBoardSize]GridState) Decision {
	for _, line := range lines {
		g := cells[line[0]]
		if g.IsPlayer() && cells[line[1]] == g && cells[line[2]] == g {
			return WonBy(g)
		}
	}
	for _, g := range cells {
		if g == Empty {
			return Ongoing
		}
	}
	return Draw
}

// String renders the board as a 9x9 grid of letters, separating the sub-boards.
func (b *Board) String() string {
	var sb strings.Builder
	for row := range 9 {
		if row > 0 && row%3 == 0 {
			sb.WriteString("------+-------+------\n")
		}
		for col := range 9 {
			if col > 0 && col%3 == 0 {
				sb.WriteString("| ")
			}
			sub := (row/3)*3 + col/3
			cell := (row%3)*3 + col%3
			sb.WriteByte(b.cells[Index(sub, cell)].Letter())
			if col < 8 {
				sb.WriteByte(' ')
			}
		}
		sb.WriteByte('\n')
	}
	_, _ = fmt.Fprintf(&sb, "%s: move #%d, next %s", b.decision, b.moveNumber, b.nextPlayer)
	if b.activeSub != AnySubBoard {
		_, _ = fmt.Fprintf(&sb, " on sub-board %d", b.activeSub)
	}
	return sb.String()
}
