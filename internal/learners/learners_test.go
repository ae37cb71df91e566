package learners_test

import (
	"path/filepath"
	"testing"

	"github.com/janpfeifer/utttGo/internal/ai/table"
	"github.com/janpfeifer/utttGo/internal/learners"
	_ "github.com/janpfeifer/utttGo/internal/learners/default"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	assert.Contains(t, learners.Registered(), "table")

	learner, err := learners.New("")
	require.NoError(t, err)
	assert.IsType(t, &table.Learner{}, learner)

	fileName := filepath.Join(t.TempDir(), "values.json")
	learner, err = learners.New("table:file=" + fileName)
	require.NoError(t, err)
	assert.Equal(t, fileName, learner.(*table.Learner).FileName)

	_, err = learners.New("unknown:x=1")
	require.Error(t, err)

	_, err = learners.New("table:file=x.json,bogus=1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}
