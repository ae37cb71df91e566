package spinning

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer is a bytes.Buffer safe for concurrent use.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinning(t *testing.T) {
	out := &syncBuffer{}
	Output, Period = out, time.Millisecond
	s := New(context.Background())
	s.SetStatus("game %d", 7)
	assert.Equal(t, "game 7", s.Status())
	assert.Eventually(t, func() bool {
		return strings.Contains(out.String(), "game 7")
	}, time.Second, time.Millisecond)
	s.Done()
	s.Done() // Calling it twice is fine.
	assert.Contains(t, out.String(), "\033[?25h")
}
