package gomlx

import (
	"bytes"
	"fmt"
	"os"

	"github.com/gomlx/gomlx/ml/context"
	"github.com/pkg/errors"
)

// ExportDiagram writes a text description of the model to fileName: its hyperparameters, and the
// variables with their shapes.
func (l *Learner) ExportDiagram(fileName string) error {
	buf := &bytes.Buffer{}
	ctx := l.model.Context()
	_, _ = fmt.Fprintf(buf, "Model %s\n\nHyperparameters:\n", l)
	ctx.EnumerateParams(func(scope, key string, value any) {
		if scope != context.RootScope {
			return
		}
		_, _ = fmt.Fprintf(buf, "\t%q: %v\n", key, value)
	})
	_, _ = fmt.Fprintf(buf, "\nVariables:\n")
	var numValues int
	ctx.EnumerateVariables(func(v *context.Variable) {
		_, _ = fmt.Fprintf(buf, "\t%s/%s: %s\n", v.Scope(), v.Name(), v.Shape())
		numValues += v.Shape().Size()
	})
	_, _ = fmt.Fprintf(buf, "\nTotal size of variables: %d\n", numValues)
	if err := os.WriteFile(fileName, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "failed to write model diagram to %s", fileName)
	}
	return nil
}
