package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServe_MissingAPIKey(t *testing.T) {
	useFakeClient(t)
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("PORT", "")

	_, _, err := executeCommand(t, "serve")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestServe_InvalidServerConfig(t *testing.T) {
	useFakeClient(t)
	t.Setenv("PORT", "not-a-port")

	_, _, err := executeCommand(t, "serve", "--api-key", "k")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load server config")
}

func TestServe_InvalidMode(t *testing.T) {
	useFakeClient(t)
	t.Setenv("PORT", "")

	_, _, err := executeCommand(t, "serve", "--api-key", "k", "--mode", "partial")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown signal mode")
}
