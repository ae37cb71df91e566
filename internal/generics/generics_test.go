package generics

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSliceMap(t *testing.T) {
	got := SliceMap([]int{1, 2, 3}, func(e int) float32 { return float32(e) / 2 })
	assert.Equal(t, []float32{0.5, 1, 1.5}, got)
	assert.Empty(t, SliceMap([]int(nil), func(e int) int { return e }))
}

func TestSortedKeys(t *testing.T) {
	m := map[int]string{1: "1", 5: "5", 3: "3"}
	// Since the builtin map iterator in Go is deliberately non-deterministic, we
	// run it a bunch of times to show it is stably sorted.
	want := []int{1, 3, 5}
	for range 100 {
		got := slices.Collect(SortedKeys(m))
		if !slices.Equal(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}

func TestKeysSortedFunc(t *testing.T) {
	m := map[[2]int]bool{{1, 2}: true, {0, 9}: true, {1, 0}: false}
	got := KeysSortedFunc(m, func(a, b [2]int) int { return slices.Compare(a[:], b[:]) })
	assert.Equal(t, [][2]int{{0, 9}, {1, 0}, {1, 2}}, got)
}
