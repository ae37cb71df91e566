package main

import (
	"context"

	"github.com/janpfeifer/utttGo/internal/ai"
	"github.com/janpfeifer/utttGo/internal/players"
	. "github.com/janpfeifer/utttGo/internal/state"
	"github.com/janpfeifer/utttGo/internal/ui/spinning"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"k8s.io/klog/v2"
)

// compare plays numGames of the learner, always picking its best move, against a random player.
// The learner starts every other game. Games are played in parallel, so learner must be safe for
// concurrent use (see ai.Synchronized).
func compare(ctx context.Context, learner ai.Learner, numGames, parallelism int) (*Results, error) {
	results := newResults(numGames, true)
	spinner := spinning.New(ctx)
	defer spinner.Done()

	var wg errgroup.Group
	wg.SetLimit(parallelism)
	for gameIdx := range numGames {
		wg.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			greedy, random := players.NewGreedy(learner, 0), &players.Random{}
			learnerPlayer := PlayerX
			playerX, playerO := players.Player(greedy), players.Player(random)
			if gameIdx%2 == 1 {
				learnerPlayer = PlayerO
				playerX, playerO = playerO, playerX
			}
			board, err := players.PlayMatch(playerX, playerO, nil)
			if err != nil {
				return errors.WithMessagef(err, "comparison game #%d", gameIdx)
			}
			klog.V(1).Infof("Comparison game #%d: learner played %s, %s", gameIdx, learnerPlayer, board.Decision())
			results.record(board.Decision(), learnerPlayer)
			spinner.SetStatus("Compare %s", results)
			return nil
		})
	}
	err := wg.Wait()
	if ctx.Err() != nil {
		klog.Infof("Comparison interrupted: %v", ctx.Err())
	}
	return results, err
}
