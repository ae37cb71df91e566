package profilers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCPUProfile(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "cpu.prof")
	*flagCPUProfile = fileName
	defer func() { *flagCPUProfile = "" }()

	p, err := Setup(context.Background())
	require.NoError(t, err)
	p.OnQuit()
	info, err := os.Stat(fileName)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	*flagCPUProfile = filepath.Join(t.TempDir(), "missing", "cpu.prof")
	_, err = Setup(context.Background())
	require.Error(t, err)
}
