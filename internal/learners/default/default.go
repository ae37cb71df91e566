// Package _default registers the learners that don't require extra dependencies and can be
// included in any front-end.
//
// Currently, it includes the tabular learner.
package _default

import (
	"github.com/janpfeifer/utttGo/internal/ai"
	"github.com/janpfeifer/utttGo/internal/ai/table"
	"github.com/janpfeifer/utttGo/internal/learners"
	"github.com/janpfeifer/utttGo/internal/parameters"
)

func init() {
	learners.Register("table", NewTable)
}

// NewTable creates a table.Learner. Parameters:
//
//   - file: JSON file to load the table from if it exists, and where it is saved to.
func NewTable(params parameters.Params) (ai.Learner, error) {
	fileName, err := parameters.PopParamOr(params, "file", "")
	if err != nil {
		return nil, err
	}
	return table.LoadOrCreate(fileName)
}
