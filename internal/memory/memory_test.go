package memory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kariosv/collinsbot/internal/storage"
)

func newTestLog(t *testing.T) *Log {
	t.Helper()
	s, err := storage.Open(t.TempDir())
	require.NoError(t, err)
	return NewLog(s)
}

func TestRememberKeepsLastN(t *testing.T) {
	l := newTestLog(t)

	for i := 1; i <= Depth+2; i++ {
		require.NoError(t, l.Remember("100", fmt.Sprintf("msg %d", i)))
	}

	got, err := l.Recall("100")
	require.NoError(t, err)
	require.Len(t, got, Depth)
	assert.Equal(t, "msg 3", got[0], "oldest surviving message")
	assert.Equal(t, fmt.Sprintf("msg %d", Depth+2), got[len(got)-1])
}

func TestRememberSkipsCommandsAndBlanks(t *testing.T) {
	l := newTestLog(t)

	require.NoError(t, l.Remember("100", "/start"))
	require.NoError(t, l.Remember("100", "   "))

	got, err := l.Recall("100")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWipe(t *testing.T) {
	l := newTestLog(t)

	wiped, err := l.Wipe("100")
	require.NoError(t, err)
	assert.False(t, wiped, "nothing to wipe yet")

	require.NoError(t, l.Remember("100", "hello"))

	wiped, err = l.Wipe("100")
	require.NoError(t, err)
	assert.True(t, wiped)

	got, err := l.Recall("100")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCount(t *testing.T) {
	l := newTestLog(t)
	require.NoError(t, l.Remember("100", "hi"))
	require.NoError(t, l.Remember("200", "yo"))

	n, err := l.Count()
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}
