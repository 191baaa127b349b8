package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasLink(t *testing.T) {
	assert.True(t, hasLink("check https://example.org out"))
	assert.True(t, hasLink("HTTP://caps.example"))
	assert.True(t, hasLink("visit example.com now"))
	assert.False(t, hasLink("no links here"))
	assert.False(t, hasLink("just talking about commas, dots. and such"))
}

func TestTrimMention(t *testing.T) {
	assert.Equal(t, "alice", trimMention("@alice"))
	assert.Equal(t, "alice", trimMention("alice"))
	assert.Equal(t, "", trimMention(""))
}

func TestRPSBeats(t *testing.T) {
	assert.True(t, rpsBeats("rock", "scissors"))
	assert.True(t, rpsBeats("scissors", "paper"))
	assert.True(t, rpsBeats("paper", "rock"))
	assert.False(t, rpsBeats("rock", "paper"))
	assert.False(t, rpsBeats("rock", "rock"))
}
