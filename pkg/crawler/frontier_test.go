package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrontierFIFO(t *testing.T) {
	f := newFrontier()
	f.push("a")
	f.push("b")
	f.push("c")

	for _, want := range []string{"a", "b", "c"} {
		got, ok := f.pop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := f.pop()
	assert.False(t, ok)
	assert.False(t, f.hasNext())
}

func TestFrontierSkipsVisited(t *testing.T) {
	f := newFrontier()
	require.True(t, f.markVisited("a"))
	assert.False(t, f.markVisited("a"))

	f.push("a")
	assert.False(t, f.hasNext(), "visited urls are never queued")

	f.push("b")
	f.push("c")
	f.push("b")
	f.markVisited("b")

	got, ok := f.pop()
	require.True(t, ok)
	assert.Equal(t, "c", got)
	assert.False(t, f.hasNext(), "stale duplicate of b is dropped")
	assert.Equal(t, 2, f.visitedCount())
}
