package main

import (
	"fmt"
	"sync"
	"time"

	. "github.com/janpfeifer/utttGo/internal/state"
)

// Results of a series of games.
type Results struct {
	mu            sync.Mutex
	start         time.Time
	played, total int

	wonX, wonO, draws int

	// wins and losses of the learner, only when it plays against another player.
	comparison   bool
	wins, losses int
}

func newResults(total int, comparison bool) *Results {
	return &Results{start: time.Now(), total: total, comparison: comparison}
}

// record the decision of a game. learnerPlayer is the side the learner played if in a comparison.
func (r *Results) record(decision Decision, learnerPlayer GridState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.played++
	switch decision {
	case WonX:
		r.wonX++
	case WonO:
		r.wonO++
	case Draw:
		r.draws++
	}
	if r.comparison && decision != Draw {
		if decision.Winner() == learnerPlayer {
			r.wins++
		} else {
			r.losses++
		}
	}
}

// String returns a one line summary.
func (r *Results) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.comparison {
		return fmt.Sprintf("played %d of %d: %d wins, %d losses, %d draws - %s",
			r.played, r.total, r.wins, r.losses, r.draws, time.Since(r.start).Round(time.Second))
	}
	return fmt.Sprintf("played %d of %d: X won %d, O won %d, %d draws - %s",
		r.played, r.total, r.wonX, r.wonO, r.draws, time.Since(r.start).Round(time.Second))
}

func percent(n, total int) string {
	if total == 0 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%d (%.1f%%)", n, 100*float64(n)/float64(total))
}

// Rows returns the results formatted as a table.
func (r *Results) Rows(title string) [][2]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := [][2]string{
		{title + " games", fmt.Sprintf("%d of %d", r.played, r.total)},
		{"Won by X", percent(r.wonX, r.played)},
		{"Won by O", percent(r.wonO, r.played)},
		{"Draws", percent(r.draws, r.played)},
	}
	if r.comparison {
		rows = append(rows,
			[2]string{"Learner wins", percent(r.wins, r.played)},
			[2]string{"Learner losses", percent(r.losses, r.played)})
	}
	rows = append(rows, [2]string{"Elapsed", time.Since(r.start).Round(time.Millisecond).String()})
	return rows
}
