package main

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mxcd/go-bounded-cache/internal/config"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("info"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel(""))
}

func TestNewPolicy(t *testing.T) {
	c := config.Default()
	c.Cache.MaxChars = 8

	policy := newPolicy(c)
	assert.True(t, policy.Admit("a", "short"))
	assert.False(t, policy.Admit("a", "this is longer than 8"))

	c.Cache.MaxEncodedBytes = 4
	policy = newPolicy(c)
	assert.True(t, policy.Admit("a", "abc"))
	assert.False(t, policy.Admit("a", "short"))
}
