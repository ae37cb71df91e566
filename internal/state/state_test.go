package state_test

import (
	"encoding/json"
	"strings"
	"testing"

	. "github.com/janpfeifer/utttGo/internal/state"
	. "github.com/janpfeifer/utttGo/internal/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBoard(t *testing.T) {
	b := NewBoard()
	assert.Equal(t, PlayerX, b.NextPlayer())
	assert.Equal(t, AnySubBoard, b.ActiveSubBoard())
	assert.Equal(t, Ongoing, b.Decision())
	assert.Len(t, b.ValidMoves(), NumCells)
	assert.Equal(t, BoardState{}, b.State())
}

func TestAct(t *testing.T) {
	b0 := NewBoard()
	b1, err := b0.Act(Index(0, 4))
	require.NoError(t, err)

	// Original board is not changed.
	assert.Equal(t, Empty, b0.State()[Index(0, 4)])
	assert.Equal(t, PlayerX, b1.State()[Index(0, 4)])
	assert.Equal(t, PlayerO, b1.NextPlayer())
	assert.Equal(t, 1, b1.MoveNumber())

	// O is sent to sub-board 4.
	assert.Equal(t, 4, b1.ActiveSubBoard())
	moves := b1.ValidMoves()
	require.Len(t, moves, SubBoardSize)
	for ii, move := range moves {
		assert.Equal(t, Index(4, ii), move)
	}

	// Playing outside the active sub-board fails.
	_, err = b1.Act(Index(0, 0))
	require.Error(t, err)

	// Playing on an occupied cell fails.
	b2 := PlayMoves(Index(0, 4), Index(4, 0))
	_, err = b2.Act(Index(0, 4))
	require.Error(t, err)
}

func TestSubBoardWinRedirectsToAny(t *testing.T) {
	s := BuildState(
		Mark{SubBoard: 0, Cell: 0, Player: PlayerX}, Mark{SubBoard: 0, Cell: 1, Player: PlayerX}, Mark{SubBoard: 0, Cell: 2, Player: PlayerX},
		Mark{SubBoard: 1, Cell: 0, Player: PlayerO}, Mark{SubBoard: 2, Cell: 0, Player: PlayerO}, Mark{SubBoard: 3, Cell: 0, Player: PlayerO},
	)
	b := NewBoardFromState(s)
	assert.Equal(t, WonX, b.SubBoardDecision(0))
	assert.Equal(t, Ongoing, b.SubBoardDecision(1))
	assert.Equal(t, Ongoing, b.Decision())
	assert.Equal(t, PlayerX, b.NextPlayer())

	// No moves are valid in the decided sub-board.
	for _, move := range b.ValidMoves() {
		assert.NotEqual(t, 0, move/SubBoardSize)
	}

	// Sending the opponent to sub-board 0, which is decided, frees it to play anywhere.
	b, err := b.Act(Index(4, 0))
	require.NoError(t, err)
	assert.Equal(t, AnySubBoard, b.ActiveSubBoard())
}

func TestGameDecision(t *testing.T) {
	var marks []Mark
	for _, sub := range []int{0, 1, 2} {
		for _, cell := range []int{0, 1, 2} {
			marks = append(marks, Mark{SubBoard: sub, Cell: cell, Player: PlayerO})
		}
	}
	b := NewBoardFromState(BuildState(marks...))
	assert.Equal(t, WonO, b.Decision())
	assert.True(t, b.Decision().IsTerminal())
	assert.Equal(t, PlayerO, b.Decision().Winner())
	assert.Empty(t, b.ValidMoves())

	// Every sub-board filled with a drawn pattern: the game is a draw.
	drawn := []GridState{
		PlayerX, PlayerO, PlayerX,
		PlayerX, PlayerO, PlayerO,
		PlayerO, PlayerX, PlayerX,
	}
	marks = marks[:0]
	for sub := range SubBoardSize {
		for cell, g := range drawn {
			marks = append(marks, Mark{SubBoard: sub, Cell: cell, Player: g})
		}
	}
	b = NewBoardFromState(BuildState(marks...))
	for sub := range SubBoardSize {
		assert.Equal(t, Draw, b.SubBoardDecision(sub))
	}
	assert.Equal(t, Draw, b.Decision())
	assert.Equal(t, Empty, b.Decision().Winner())
}

func TestBoardStateText(t *testing.T) {
	s := BuildState(Mark{SubBoard: 0, Cell: 0, Player: PlayerX}, Mark{SubBoard: 8, Cell: 8, Player: PlayerO}, Mark{SubBoard: 4, Cell: 4, Player: PlayerX})
	text := s.String()
	require.Len(t, text, NumCells)
	assert.Equal(t, byte('X'), text[0])
	assert.Equal(t, byte('O'), text[NumCells-1])
	assert.Equal(t, 3, NumCells-strings.Count(text, "."))

	parsed, err := ParseBoardState(text)
	require.NoError(t, err)
	assert.Equal(t, s, parsed)
	assert.Equal(t, 0, s.Compare(parsed))
	assert.Equal(t, -1, BoardState{}.Compare(s))

	_, err = ParseBoardState(text[1:])
	require.Error(t, err)
	_, err = ParseBoardState("Z" + text[1:])
	require.Error(t, err)
}

func TestBoardStateAsJSONKey(t *testing.T) {
	s := BuildState(Mark{SubBoard: 2, Cell: 3, Player: PlayerO})
	values := map[BoardState]float32{s: 0.25, {}: 0.5}
	data, err := json.Marshal(values)
	require.NoError(t, err)
	assert.Contains(t, string(data), s.String())

	var got map[BoardState]float32
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, values, got)
}

func TestGridState(t *testing.T) {
	assert.Equal(t, PlayerO, PlayerX.Opponent())
	assert.Equal(t, PlayerX, PlayerO.Opponent())
	assert.Equal(t, Empty, Empty.Opponent())
	assert.False(t, Empty.IsPlayer())
	assert.Equal(t, WonO, WonBy(PlayerO))
	assert.Equal(t, "PlayerX", PlayerX.String())
	assert.False(t, Ongoing.IsTerminal())
}
