// trainer trains a learner by self-play, and optionally compares it against a random player.
//
// Examples:
//
//	$ go run ./cmd/trainer -learner="table:file=values.json" -num_games=10000
//	$ go run ./cmd/trainer -learner="nn:model=nn_model,seed=values.json" -num_games=1000 -compare=200
package main

import (
	"context"
	"flag"
	"runtime"
	"time"

	"github.com/janpfeifer/must"
	"github.com/janpfeifer/utttGo/internal/ai"
	"github.com/janpfeifer/utttGo/internal/ai/table"
	"github.com/janpfeifer/utttGo/internal/learners"
	_ "github.com/janpfeifer/utttGo/internal/learners/default"
	"github.com/janpfeifer/utttGo/internal/profilers"
	"github.com/janpfeifer/utttGo/internal/ui/cli"
	"github.com/janpfeifer/utttGo/internal/ui/spinning"
	"k8s.io/klog/v2"
)

// Flags
var (
	flagLearner = flag.String("learner", "", "Learner configuration, e.g. \"table:file=values.json\" or "+
		"\"nn:model=nn_model,seed=values.json,learning_rate=0.001\". Defaults to an in-memory table.")
	flagNumGames = flag.Int("num_games", 1000, "Number of self-play games to train on. "+
		"A value of 0 skips training.")
	flagEpsilon   = flag.Float64("epsilon", 0.1, "Probability of playing a random move during self-play (exploration).")
	flagSaveEvery = flag.Int("save_every", 100, "Save the learner every these many games. "+
		"A value of <= 0 only saves at the end.")
	flagSave = flag.String("save", "", "Where to save the learner: a file for a table, a directory for a "+
		"neural network. Defaults to the one configured in -learner.")
	flagCompare = flag.Int("compare", 0, "If > 0, after training play these many games against a random "+
		"player, alternating who starts, and report the results.")
	flagParallelism = flag.Int("parallelism", 0, "If > 0 ignore GOMAXPROCS and play "+
		"these many comparison games simultaneously.")
	flagPrint       = flag.Bool("print", false, "Print the final board of each self-play game.")
	flagPrintValues = flag.Bool("print_values", false, "For tables, print all values learned at the end.")
	flagColor       = flag.Bool("color", true, "Use colors when printing.")
)

// Globals
var (
	// globalCtx used everywhere. It is cancelled when the program is about to exit either by
	// an interrupt (ctrl+C) or by reaching the end.
	globalCtx = context.Background()
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	// Capture Control+C
	var globalCancel func()
	globalCtx, globalCancel = context.WithCancel(context.Background())
	spinning.SafeInterrupt(globalCancel, 30*time.Second)
	defer globalCancel()

	// Profilers: HTTP profiler server and CPU profile.
	prof := must.M1(profilers.Setup(globalCtx))
	defer prof.OnQuit()

	learner := must.M1(learners.New(*flagLearner))
	ui := cli.New(*flagColor)
	ui.PrintBanner("Learner %s", learner)

	savePath := *flagSave
	if savePath == "" {
		savePath = defaultSavePath(learner)
	}
	if savePath == "" && *flagNumGames > 0 {
		klog.Warningf("Learner %s has no file configured and -save is not set: what is learned will be lost", learner)
	}
	cfg := &trainConfig{
		numGames:  *flagNumGames,
		epsilon:   *flagEpsilon,
		saveEvery: *flagSaveEvery,
		savePath:  savePath,
	}
	if *flagPrint {
		cfg.ui = ui
	}
	results := must.M1(train(globalCtx, learner, cfg))
	ui.PrintTable(results.Rows("Self-play"))

	if *flagPrintValues {
		if t, ok := learner.(*table.Learner); ok {
			must.M(t.PrintValues(ui.Out))
		} else {
			klog.Warningf("-print_values is only supported for tables, not for %s", learner)
		}
	}

	if *flagCompare > 0 && globalCtx.Err() == nil {
		results := must.M1(compare(globalCtx, ai.Synchronized(learner), *flagCompare, getParallelism()))
		ui.PrintBanner("%s vs random: %d wins, %d losses, %d draws", learner, results.wins, results.losses, results.draws)
		ui.PrintTable(results.Rows("Compare"))
	}
}

// defaultSavePath returns the file or directory the learner was configured with.
func defaultSavePath(learner ai.Learner) string {
	switch l := learner.(type) {
	case *table.Learner:
		return l.FileName
	case interface{ ModelDir() string }:
		return l.ModelDir()
	}
	return ""
}

// getParallelism returns the parallelism.
func getParallelism() (parallelism int) {
	parallelism = runtime.GOMAXPROCS(0)
	if *flagParallelism > 0 {
		parallelism = *flagParallelism
	}
	return
}
