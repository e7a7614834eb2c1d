package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a \n\t b   c  "))
	assert.Equal(t, "", CleanText(" \n "))
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 3, CountWords("one two  three"))
	assert.Equal(t, 2, CountWords("hello — world"))
	assert.Equal(t, 0, CountWords(""))
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", TruncateText("short", 10))
	assert.Equal(t, "hello...", TruncateText("hello wonderful world", 10))
	assert.Equal(t, "", TruncateText("anything", 0))
	assert.Equal(t, "héllo...", TruncateText("héllo wörld", 7))
}

func TestEscapeTableCell(t *testing.T) {
	assert.Equal(t, `a \| b`, EscapeTableCell("a |\n b"))
}
