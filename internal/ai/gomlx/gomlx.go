// Package gomlx implements a neural network ai.Learner: a GoMLX feed-forward model estimates the
// value of the board states, and is trained at the end of each game with the values collected
// during the game.
//
// It separates the Learner implementation from the GoMLX models that support it -- for now only
// the FNN (Feedforward Neural Network) model is implemented.
package gomlx

import (
	"os"
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gomlx/backends"
	"github.com/gomlx/gomlx/ml/context"
	"github.com/janpfeifer/utttGo/internal/ai"
	"github.com/janpfeifer/utttGo/internal/learners"
	"github.com/janpfeifer/utttGo/internal/parameters"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrBackendUnavailable is returned when no GoMLX backend was given or none could be created.
var ErrBackendUnavailable = errors.New("GoMLX backend unavailable")

// NewBackend creates the default GoMLX backend (see backends.New for how it is selected).
// Failures are logged and returned as ErrBackendUnavailable.
func NewBackend() (backend backends.Backend, err error) {
	err = exceptions.TryCatch[error](func() {
		backend = backends.New()
	})
	if err != nil {
		klog.Errorf("Failed to create GoMLX backend: %+v", err)
		return nil, errors.WithMessagef(ErrBackendUnavailable, "%v", err)
	}
	if backend == nil {
		return nil, ErrBackendUnavailable
	}
	return backend, nil
}

// defaultBackend is a singleton, the same for all learners created from configuration strings.
var defaultBackend = sync.OnceValues(NewBackend)

// init registers the "nn" learner, so end users can use it.
func init() {
	learners.Register("nn", newFromParams)
}

// newFromParams creates a Learner with the default backend. Parameters:
//
//   - model: directory with the model checkpoint. It is loaded if it exists, and it is where the
//     model is saved to.
//   - seed: JSON file (in the table format) with values to train the model on before the first game.
//   - diagram: file where to write a description of the model.
//   - Any of the model hyperparameters, see NewFNN.
func newFromParams(params parameters.Params) (ai.Learner, error) {
	modelDir, err := parameters.PopParamOr(params, "model", "")
	if err != nil {
		return nil, err
	}
	seedFile, err := parameters.PopParamOr(params, "seed", "")
	if err != nil {
		return nil, err
	}
	diagramFile, err := parameters.PopParamOr(params, "diagram", "")
	if err != nil {
		return nil, err
	}

	backend, err := defaultBackend()
	if err != nil {
		return nil, err
	}
	// Hyperparameters given in params take precedence over the ones saved with the model.
	var model ValueModel = NewFNN()
	if modelDir != "" {
		if _, statErr := os.Stat(modelDir); statErr == nil {
			if model, err = LoadFNN(modelDir); err != nil {
				return nil, err
			}
			klog.V(1).Infof("Loaded model from %s", modelDir)
		} else if !os.IsNotExist(statErr) {
			return nil, errors.Wrapf(statErr, "failed to stat model directory %s", modelDir)
		} else {
			klog.V(1).Infof("Model %s doesn't exist yet, starting with a new model", modelDir)
		}
	}
	l, err := NewWithModel(backend, model, params)
	if err != nil {
		return nil, err
	}
	l.fileName = modelDir

	if diagramFile != "" {
		if err := l.ExportDiagram(diagramFile); err != nil {
			klog.Warningf("Failed to export model diagram, continuing without it: %v", err)
		}
	}

	if seedFile != "" {
		if err = l.InitialModelTraining(seedFile); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// extractParams and write them as context hyperparameters.
func extractParams(params parameters.Params, ctx *context.Context) error {
	var err error
	ctx.EnumerateParams(func(scope, key string, valueAny any) {
		if err != nil {
			// If error happened skip the rest.
			return
		}
		if scope != context.RootScope {
			return
		}
		var newErr error
		switch defaultValue := valueAny.(type) {
		case string:
			var value string
			value, newErr = parameters.PopParamOr(params, key, defaultValue)
			ctx.SetParam(key, value)
		case int:
			var value int
			value, newErr = parameters.PopParamOr(params, key, defaultValue)
			ctx.SetParam(key, value)
		case float64:
			var value float64
			value, newErr = parameters.PopParamOr(params, key, defaultValue)
			ctx.SetParam(key, value)
		case float32:
			var value float32
			value, newErr = parameters.PopParamOr(params, key, defaultValue)
			ctx.SetParam(key, value)
		case bool:
			var value bool
			value, newErr = parameters.PopParamOr(params, key, defaultValue)
			ctx.SetParam(key, value)
		default:
			err = errors.Errorf("model parameter %q is of unknown type %T", key, defaultValue)
			return
		}
		if newErr != nil {
			err = errors.WithMessagef(newErr, "parsing %q (%T) for model", key, valueAny)
		}
	})
	return err
}
