package ai

import (
	"sync"

	. "github.com/janpfeifer/utttGo/internal/state"
)

// SynchronizedLearner serializes all calls to the wrapped Learner with a mutex.
//
// BoardValue also mutates the tabular learner (and the per-game buffer of the neural one), so
// even read-like calls take the lock.
type SynchronizedLearner struct {
	mu      sync.Mutex
	learner Learner
}

// Synchronized returns learner wrapped so it can be shared across goroutines.
// If learner is already synchronized it is returned as is.
func Synchronized(learner Learner) *SynchronizedLearner {
	if s, ok := learner.(*SynchronizedLearner); ok {
		return s
	}
	return &SynchronizedLearner{learner: learner}
}

var _ Learner = (*SynchronizedLearner)(nil)

// Unwrap returns the wrapped learner.
func (s *SynchronizedLearner) Unwrap() Learner { return s.learner }

// BoardValue implements Learner.
func (s *SynchronizedLearner) BoardValue(player GridState, board DecisionBoard, boardState BoardState) float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.learner.BoardValue(player, board, boardState)
}

// BatchBoardValues implements BatchLearner: the whole batch is evaluated holding the lock, and
// batched if the wrapped learner is a BatchLearner.
func (s *SynchronizedLearner) BatchBoardValues(player GridState, boards []DecisionBoard) []float32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return BoardValues(s.learner, player, boards)
}

// LearnFromMove implements Learner.
func (s *SynchronizedLearner) LearnFromMove(player GridState, board DecisionBoard, prevBoardState BoardState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.learner.LearnFromMove(player, board, prevBoardState)
}

// Save implements Learner.
func (s *SynchronizedLearner) Save(fileName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.learner.Save(fileName)
}

// Load implements Learner.
func (s *SynchronizedLearner) Load(fileName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.learner.Load(fileName)
}

// ResetForNewGame implements Learner.
func (s *SynchronizedLearner) ResetForNewGame() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.learner.ResetForNewGame()
}

// GameOver implements Learner.
func (s *SynchronizedLearner) GameOver() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.learner.GameOver()
}

// String implements Learner.
func (s *SynchronizedLearner) String() string {
	return s.learner.String()
}
