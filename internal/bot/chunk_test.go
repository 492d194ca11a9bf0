package bot

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkTextShort(t *testing.T) {
	chunks := chunkText("hello", maxMessageLen)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello", chunks[0])
}

func TestChunkTextExactBoundary(t *testing.T) {
	s := strings.Repeat("a", maxMessageLen)
	chunks := chunkText(s, maxMessageLen)
	require.Len(t, chunks, 1)
	assert.Equal(t, s, chunks[0])
}

func TestChunkTextLong(t *testing.T) {
	s := strings.Repeat("x", 9000)
	chunks := chunkText(s, maxMessageLen)

	require.Len(t, chunks, 3)
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c)), maxMessageLen)
	}
	assert.Equal(t, s, strings.Join(chunks, ""))
}

func TestChunkTextMultibyte(t *testing.T) {
	s := strings.Repeat("ў", 4100)
	chunks := chunkText(s, maxMessageLen)

	require.Len(t, chunks, 2)
	assert.Equal(t, 4000, len([]rune(chunks[0])))
	assert.Equal(t, s, strings.Join(chunks, ""))
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "ab", truncateRunes("abcde", 2))
	assert.Equal(t, "ўзў", truncateRunes("ўзўзў", 3))
}
