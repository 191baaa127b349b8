package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEscapeMarkdownV2(t *testing.T) {
	out, err := EscapeMarkdown("a_b (c) 1.5!", MarkdownV2, "")
	require.NoError(t, err)
	assert.Equal(t, `a\_b \(c\) 1\.5\!`, out)
}

func TestEscapeMarkdownV2LeavesPlainTextAlone(t *testing.T) {
	out, err := EscapeMarkdown("digits 0129, slash/colon: ok", MarkdownV2, "")
	require.NoError(t, err)
	assert.Equal(t, "digits 0129, slash/colon: ok", out)
}

func TestEscapeMarkdownV2Hyphen(t *testing.T) {
	out, err := EscapeMarkdown("5-7", MarkdownV2, "")
	require.NoError(t, err)
	assert.Equal(t, `5\-7`, out)
}

func TestEscapeMarkdownV1(t *testing.T) {
	out, err := EscapeMarkdown("a_b *c*", MarkdownV1, "")
	require.NoError(t, err)
	assert.Equal(t, `a\_b \*c\*`, out)
}

func TestEscapeMarkdownUnknownVersion(t *testing.T) {
	_, err := EscapeMarkdown("x", 3, "")
	assert.Error(t, err)
}
