// Package table implements a tabular learner: an explicit map from every board state seen to
// its value, updated with TD(0).
package table

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/janpfeifer/utttGo/internal/ai"
	"github.com/janpfeifer/utttGo/internal/generics"
	. "github.com/janpfeifer/utttGo/internal/state"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Learner keeps the value of every board state it has seen.
// It implements ai.Learner.
type Learner struct {
	values map[BoardState]float32

	// FileName is the last file the table was loaded from or saved to, if any.
	FileName string
}

var _ ai.Learner = (*Learner)(nil)

// New creates an empty Learner.
func New() *Learner {
	return &Learner{values: make(map[BoardState]float32)}
}

// String implements ai.Learner.
func (l *Learner) String() string {
	if l.FileName == "" {
		return "table"
	}
	return fmt.Sprintf("table@%s", l.FileName)
}

// BoardValue implements ai.Learner.
//
// Wins, losses and draws are stored with their fixed values; a state never seen before is stored
// with ai.NeutralValue. Otherwise, the stored value is returned unchanged.
func (l *Learner) BoardValue(player GridState, board DecisionBoard, boardState BoardState) float32 {
	decision := board.Decision()
	if value, isTerminal := ai.TerminalValue(player, decision); isTerminal {
		l.values[boardState] = value
		return value
	}
	value, found := l.values[boardState]
	if !found {
		value = ai.NeutralValue
		l.values[boardState] = value
	}
	return value
}

// LearnFromMove implements ai.Learner.
//
// An unseen prevBoardState is seeded with BoardValue using the decision of the current board,
// not of prevBoardState: so if the move just played ended the game, prevBoardState is seeded with
// the final value.
func (l *Learner) LearnFromMove(player GridState, board DecisionBoard, prevBoardState BoardState) {
	curValue := l.BoardValue(player, board, board.State())
	if _, found := l.values[prevBoardState]; !found {
		l.BoardValue(player, board, prevBoardState)
	}
	l.values[prevBoardState] = ai.TDUpdate(l.values[prevBoardState], curValue)
	if klog.V(2).Enabled() {
		klog.Infof("%s: learned %s -> %.4f (current value %.4f)", l, player, l.values[prevBoardState], curValue)
	}
}

// ResetForNewGame implements ai.Learner: the table has no per-game state.
func (l *Learner) ResetForNewGame() {}

// GameOver implements ai.Learner: values are learned on every move, there is nothing to flush.
func (l *Learner) GameOver() error { return nil }

// Value returns the stored value of boardState, if any. It doesn't change the table.
func (l *Learner) Value(boardState BoardState) (value float32, found bool) {
	value, found = l.values[boardState]
	return
}

// Len returns the number of states in the table.
func (l *Learner) Len() int {
	return len(l.values)
}

// Stats returns the number of states in the table, and the number of "knowledgeable" states,
// those whose value moved away from ai.NeutralValue.
func (l *Learner) Stats() (numStates, numKnowledgeable int) {
	numStates = len(l.values)
	for _, value := range l.values {
		if value != ai.NeutralValue {
			numKnowledgeable++
		}
	}
	return
}

// PrintValues writes every state and its value, sorted by state, followed by the Stats.
func (l *Learner) PrintValues(w io.Writer) error {
	for _, s := range generics.KeysSortedFunc(l.values, BoardState.Compare) {
		if _, err := fmt.Fprintf(w, "%s: %g\n", s, l.values[s]); err != nil {
			return errors.Wrap(err, "failed to print table values")
		}
	}
	numStates, numKnowledgeable := l.Stats()
	_, err := fmt.Fprintf(w, "Total number of states: %d\nTotal number of knowledgeable states: %d\n",
		numStates, numKnowledgeable)
	return errors.Wrap(err, "failed to print table values")
}

// Save implements ai.Learner. It writes the table as a JSON object mapping the text form of each
// board state to its value. If fileName exists, it is first renamed to fileName+"~".
func (l *Learner) Save(fileName string) error {
	if fileName == "" {
		klog.Errorf("Table not saved, because no file name was specified")
		return nil
	}

	// Rename existing file, if it exists.
	if _, err := os.Stat(fileName); err == nil {
		err = os.Rename(fileName, fileName+"~")
		if err != nil {
			return errors.Wrapf(err, "failed to rename %s to %s", fileName, fileName+"~")
		}
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to stat %s", fileName)
	}

	data, err := json.Marshal(l.values)
	if err != nil {
		return errors.Wrapf(err, "failed to encode table with %d states", len(l.values))
	}
	err = os.WriteFile(fileName, data, 0644)
	if err != nil {
		return errors.Wrapf(err, "failed to save %s", fileName)
	}
	l.FileName = fileName
	klog.V(1).Infof("Saved %d states to %s", len(l.values), fileName)
	return nil
}

// Load implements ai.Learner. The current table is replaced by the one read from fileName.
func (l *Learner) Load(fileName string) error {
	values, err := ReadValues(fileName)
	if err != nil {
		return err
	}
	l.values = values
	l.FileName = fileName
	klog.V(1).Infof("Loaded %d states from %s", len(l.values), fileName)
	return nil
}

// ReadValues reads a JSON file in the format written by Learner.Save.
func ReadValues(fileName string) (map[BoardState]float32, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read file %s", fileName)
	}
	values := make(map[BoardState]float32)
	if err = json.Unmarshal(data, &values); err != nil {
		return nil, errors.Wrapf(err, "failed to parse values in file %s", fileName)
	}
	return values, nil
}

// LoadOrCreate returns a Learner loaded from fileName, or an empty one if fileName is empty or
// doesn't exist yet. FileName is set in both cases, so the table can later be saved there.
func LoadOrCreate(fileName string) (*Learner, error) {
	l := New()
	if fileName == "" {
		return l, nil
	}
	_, err := os.Stat(fileName)
	if os.IsNotExist(err) {
		klog.V(1).Infof("Table %s doesn't exist yet, starting with an empty one", fileName)
		l.FileName = fileName
		return l, nil
	}
	if err = l.Load(fileName); err != nil {
		return nil, errors.WithMessage(err, "LoadOrCreate")
	}
	return l, nil
}
