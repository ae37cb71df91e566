package table

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/janpfeifer/utttGo/internal/ai"
	. "github.com/janpfeifer/utttGo/internal/state"
	. "github.com/janpfeifer/utttGo/internal/state/statetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	stateA = BuildState(Mark{SubBoard: 4, Cell: 4, Player: PlayerX})
	stateB = BuildState(Mark{SubBoard: 4, Cell: 4, Player: PlayerX}, Mark{SubBoard: 4, Cell: 0, Player: PlayerO})
	stateC = BuildState(Mark{SubBoard: 4, Cell: 4, Player: PlayerX}, Mark{SubBoard: 4, Cell: 0, Player: PlayerO}, Mark{SubBoard: 0, Cell: 0, Player: PlayerX})
)

func TestTerminalValues(t *testing.T) {
	l := New()
	for _, test := range []struct {
		decision     Decision
		valueX, valO float32
	}{
		{WonX, 1, 0},
		{WonO, 0, 1},
		{Draw, 0.5, 0.5},
	} {
		board := FixedBoard{D: test.decision, S: stateC}
		assert.Equal(t, test.valueX, l.BoardValue(PlayerX, board, stateC), "decision %s", test.decision)
		assert.Equal(t, test.valO, l.BoardValue(PlayerO, board, stateC), "decision %s", test.decision)
	}
}

func TestDrawOverwrites(t *testing.T) {
	l := New()
	l.values[stateB] = 0.9
	assert.Equal(t, float32(0.5), l.BoardValue(PlayerX, FixedBoard{D: Draw}, stateB))
	value, found := l.Value(stateB)
	require.True(t, found)
	assert.Equal(t, float32(0.5), value)
}

func TestUnseenIsSeededAndIdempotent(t *testing.T) {
	l := New()
	board := FixedBoard{D: Ongoing, S: stateA}
	_, found := l.Value(stateA)
	require.False(t, found)
	assert.Equal(t, ai.NeutralValue, l.BoardValue(PlayerX, board, stateA))
	_, found = l.Value(stateA)
	require.True(t, found)

	// Already seen, non-terminal states return the stored value, however many times asked.
	l.values[stateA] = 0.7
	first := l.BoardValue(PlayerX, board, stateA)
	second := l.BoardValue(PlayerX, board, stateA)
	assert.Equal(t, float32(0.7), first)
	assert.Equal(t, first, second)
}

func TestLearnFromMoveSeedsUnseenPrevious(t *testing.T) {
	l := New()
	board := FixedBoard{D: Ongoing, S: stateB}
	l.values[stateB] = 0.8
	l.LearnFromMove(PlayerX, board, stateA)
	value, found := l.Value(stateA)
	require.True(t, found)
	assert.InDelta(t, 0.5+0.2*(0.8-0.5), value, 1e-6)
}

// TestLearnFromMoveSeedsWithCurrentDecision documents that an unseen previous state is seeded with
// the decision of the current board: if the move won the game, the previous state starts at the
// final value, and stays there.
func TestLearnFromMoveSeedsWithCurrentDecision(t *testing.T) {
	l := New()
	board := FixedBoard{D: WonX, S: stateC}
	l.LearnFromMove(PlayerX, board, stateB)
	value, _ := l.Value(stateB)
	assert.Equal(t, float32(1), value)

	// Same for the loser: it is seeded with 0, and moves towards 0.
	l = New()
	l.LearnFromMove(PlayerO, board, stateB)
	value, _ = l.Value(stateB)
	assert.Equal(t, float32(0), value)
}

func TestThreeStatesSequence(t *testing.T) {
	l := New()

	// A -> B, B is ongoing.
	l.LearnFromMove(PlayerX, FixedBoard{D: Ongoing, S: stateB}, stateA)
	valueB, _ := l.Value(stateB)
	assert.Equal(t, float32(0.5), valueB)
	valueA, _ := l.Value(stateA)
	assert.Equal(t, float32(0.5), valueA)

	// B -> C, C is won by X.
	l.LearnFromMove(PlayerX, FixedBoard{D: WonX, S: stateC}, stateB)
	valueC, _ := l.Value(stateC)
	assert.Equal(t, float32(1), valueC)
	valueB, _ = l.Value(stateB)
	assert.InDelta(t, 0.5+0.2*(1-0.5), valueB, 1e-6)
	assert.Greater(t, valueB, float32(0.5))
	assert.Less(t, valueB, valueC)

	// Replay A -> B: A moves partway towards the updated B.
	l.LearnFromMove(PlayerX, FixedBoard{D: Ongoing, S: stateB}, stateA)
	valueA, _ = l.Value(stateA)
	assert.InDelta(t, 0.5+0.2*(valueB-0.5), valueA, 1e-6)
	assert.Greater(t, valueA, float32(0.5))
	assert.Less(t, valueA, valueB)

	numStates, numKnowledgeable := l.Stats()
	assert.Equal(t, 3, numStates)
	assert.Equal(t, 3, numKnowledgeable)
}

func TestSaveLoad(t *testing.T) {
	l := New()
	l.LearnFromMove(PlayerX, FixedBoard{D: Ongoing, S: stateB}, stateA)
	l.LearnFromMove(PlayerX, FixedBoard{D: WonX, S: stateC}, stateB)
	l.values[BoardState{}] = 0.123456789

	fileName := filepath.Join(t.TempDir(), "table.json")
	require.NoError(t, l.Save(fileName))
	assert.Equal(t, fileName, l.FileName)

	l2 := New()
	require.NoError(t, l2.Load(fileName))
	assert.Equal(t, l.values, l2.values)

	// Saving again keeps a backup of the previous file.
	require.NoError(t, l.Save(fileName))
	_, err := os.Stat(fileName + "~")
	require.NoError(t, err)

	// LoadOrCreate of an existing file.
	l3, err := LoadOrCreate(fileName)
	require.NoError(t, err)
	assert.Equal(t, l.values, l3.values)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	l, err := LoadOrCreate(filepath.Join(dir, "missing.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, l.Len())
	assert.Contains(t, l.String(), "missing.json")

	require.Error(t, l.Load(filepath.Join(dir, "missing.json")))

	badFile := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(badFile, []byte(`{"XO": 0.5}`), 0644))
	require.Error(t, l.Load(badFile))
	_, err = LoadOrCreate(badFile)
	require.Error(t, err)
}

func TestPrintValues(t *testing.T) {
	l := New()
	l.values[stateA] = 0.5
	l.values[stateB] = 0.75
	var buf bytes.Buffer
	require.NoError(t, l.PrintValues(&buf))
	output := buf.String()
	assert.Contains(t, output, stateB.String()+": 0.75")
	assert.Contains(t, output, "Total number of states: 2")
	assert.Contains(t, output, "Total number of knowledgeable states: 1")
}
