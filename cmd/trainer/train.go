package main

import (
	"context"

	"github.com/janpfeifer/utttGo/internal/ai"
	"github.com/janpfeifer/utttGo/internal/players"
	. "github.com/janpfeifer/utttGo/internal/state"
	"github.com/janpfeifer/utttGo/internal/ui/cli"
	"github.com/janpfeifer/utttGo/internal/ui/spinning"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

type trainConfig struct {
	numGames  int
	epsilon   float64
	saveEvery int

	// savePath where to save the learner. If empty the learner is not saved.
	savePath string

	// ui, if set, is used to print the final board of each game.
	ui *cli.UI
}

// train the learner with self-play: the same learner plays both sides, and learns from every move.
// It stops early, without error, if ctx is cancelled.
func train(ctx context.Context, learner ai.Learner, cfg *trainConfig) (*Results, error) {
	results := newResults(cfg.numGames, false)
	if cfg.numGames <= 0 {
		return results, nil
	}
	player := players.NewGreedy(learner, cfg.epsilon)
	onMove := func(mover GridState, prevBoardState BoardState, board *Board) {
		learner.LearnFromMove(mover, board, prevBoardState)
	}

	spinner := spinning.New(ctx)
	defer func() { spinner.Done() }()
	for gameIdx := range cfg.numGames {
		if ctx.Err() != nil {
			klog.Infof("Training interrupted after %d games: %v", gameIdx, ctx.Err())
			break
		}
		learner.ResetForNewGame()
		board, err := players.PlayMatch(player, player, onMove)
		if err != nil {
			return results, errors.WithMessagef(err, "self-play game #%d", gameIdx)
		}
		if err = learner.GameOver(); err != nil {
			return results, errors.WithMessagef(err, "learning from self-play game #%d", gameIdx)
		}
		results.record(board.Decision(), Empty)
		spinner.SetStatus("Self-play %s", results)
		if cfg.ui != nil {
			spinner.Done()
			cfg.ui.PrintBoard(board)
			spinner = spinning.New(ctx)
		}
		if cfg.saveEvery > 0 && (gameIdx+1)%cfg.saveEvery == 0 && gameIdx+1 < cfg.numGames {
			if err = save(learner, cfg.savePath); err != nil {
				return results, err
			}
		}
	}
	spinner.Done()
	if err := save(learner, cfg.savePath); err != nil {
		return results, err
	}
	return results, nil
}

// save the learner, if savePath is set.
func save(learner ai.Learner, savePath string) error {
	if savePath == "" {
		return nil
	}
	if err := learner.Save(savePath); err != nil {
		return errors.WithMessagef(err, "failed to save %s", learner)
	}
	klog.V(1).Infof("Saved %s", learner)
	return nil
}
