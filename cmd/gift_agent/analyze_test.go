package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/gift-recommender/internal/llm"
	"github.com/jonathan/gift-recommender/internal/types"
)

func TestAnalyze_EndToEnd(t *testing.T) {
	fake := useFakeClient(t)
	chat := writeFile(t, "chat.txt", sampleChat)

	stdout, _, err := executeCommand(t, "analyze", "--chat", chat, "--participant", "Sam", "--api-key", "test-key", "--budget", "under $40")
	require.NoError(t, err)

	var result types.RecommendationResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	require.Len(t, result.GiftIdeas, 2)
	assert.Equal(t, "Intro bouldering class", result.GiftIdeas[0].Name)
	assert.Empty(t, result.Diagnostics)

	var profile types.SignalProfile
	require.NoError(t, json.Unmarshal([]byte(result.Notes), &profile))
	require.Len(t, profile.DirectWishSignals, 1)
	assert.Equal(t, "rock climbing gear", profile.DirectWishSignals[0].Item)

	assert.Equal(t, "test-key", fake.apiKey)
	assert.Equal(t, llm.ProviderGemini, fake.provider)
	assert.True(t, fake.closed)
	require.Len(t, fake.prompts, 2)
	assert.NotContains(t, fake.prompts[0], "You should!")
	assert.Contains(t, fake.prompts[1], "under $40")
}

func TestAnalyze_WritesOutputFile(t *testing.T) {
	useFakeClient(t)
	chat := writeFile(t, "chat.txt", sampleChat)
	out := filepath.Join(t.TempDir(), "result.json")

	stdout, _, err := executeCommand(t, "analyze", "-c", chat, "-p", "Sam", "--api-key", "k", "-o", out)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Found 2 gift ideas")
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"gift_ideas"`)
}

func TestAnalyze_ConfigFileWithFlagOverrides(t *testing.T) {
	fake := useFakeClient(t)
	chat := writeFile(t, "chat.txt", sampleChat)
	cfgPath := writeFile(t, "config.json", `{
		"chat": "`+chat+`",
		"participant": "Alex",
		"provider": "openai",
		"chunk_size": 1,
		"api_key": "from-config"
	}`)

	_, _, err := executeCommand(t, "analyze", "--config", cfgPath, "--participant", "Sam")
	require.NoError(t, err)

	assert.Equal(t, "from-config", fake.apiKey)
	assert.Equal(t, llm.ProviderOpenAI, fake.provider)
	// two messages from Sam at one per chunk, plus the recommendation call
	assert.Len(t, fake.prompts, 3)
}

func TestAnalyze_APIKeyFromEnv(t *testing.T) {
	fake := useFakeClient(t)
	t.Setenv("OPENAI_API_KEY", "env-openai")
	chat := writeFile(t, "chat.txt", sampleChat)

	_, _, err := executeCommand(t, "analyze", "--chat", chat, "--participant", "Sam", "--provider", "openai")
	require.NoError(t, err)

	assert.Equal(t, "env-openai", fake.apiKey)
}

func TestAnalyze_VerbosePrintsProfile(t *testing.T) {
	useFakeClient(t)
	chat := writeFile(t, "chat.txt", sampleChat)

	_, stderr, err := executeCommand(t, "analyze", "--chat", chat, "--participant", "Sam", "--api-key", "k", "--verbose")
	require.NoError(t, err)

	assert.Contains(t, stderr, "SIGNAL PROFILE")
	assert.Contains(t, stderr, "GIFT IDEAS")
}

func TestAnalyze_FlagsValidation(t *testing.T) {
	chat := writeFile(t, "chat.txt", sampleChat)

	tests := []struct {
		name        string
		args        []string
		errorString string
	}{
		{
			name:        "missing chat",
			args:        []string{"analyze", "--participant", "Sam", "--api-key", "k"},
			errorString: "--chat must be provided",
		},
		{
			name:        "missing participant",
			args:        []string{"analyze", "--chat", chat, "--api-key", "k"},
			errorString: "--participant must be provided",
		},
		{
			name:        "chat file not found",
			args:        []string{"analyze", "--chat", "/nonexistent/chat.txt", "--participant", "Sam", "--api-key", "k"},
			errorString: "chat file not found",
		},
		{
			name:        "unknown mode",
			args:        []string{"analyze", "--chat", chat, "--participant", "Sam", "--mode", "everything", "--api-key", "k"},
			errorString: "unknown signal mode",
		},
		{
			name:        "unknown provider",
			args:        []string{"analyze", "--chat", chat, "--participant", "Sam", "--provider", "acme", "--api-key", "k"},
			errorString: "unknown provider",
		},
		{
			name:        "negative chunk size",
			args:        []string{"analyze", "--chat", chat, "--participant", "Sam", "--chunk-size", "-3", "--api-key", "k"},
			errorString: "chunk_size",
		},
		{
			name:        "unsupported format",
			args:        []string{"analyze", "--chat", chat, "--participant", "Sam", "--format", "sms", "--api-key", "k"},
			errorString: "unsupported chat format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := useFakeClient(t)

			_, _, err := executeCommand(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorString)
			assert.Empty(t, fake.prompts)
		})
	}
}

func TestAnalyze_MissingAPIKey(t *testing.T) {
	fake := useFakeClient(t)
	t.Setenv("GEMINI_API_KEY", "")
	chat := writeFile(t, "chat.txt", sampleChat)

	_, _, err := executeCommand(t, "analyze", "--chat", chat, "--participant", "Sam")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
	assert.Empty(t, fake.prompts)
}

func TestAnalyze_InvalidConfigFile(t *testing.T) {
	useFakeClient(t)
	cfgPath := writeFile(t, "config.json", `{"concurrency": -1}`)

	_, _, err := executeCommand(t, "analyze", "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concurrency")
}

func TestAnalyze_ExtractionFailureIsDiagnostic(t *testing.T) {
	fake := useFakeClient(t)
	fake.extractFn = func(string) (string, error) { return "not json at all", nil }
	chat := writeFile(t, "chat.txt", sampleChat)

	stdout, _, err := executeCommand(t, "analyze", "--chat", chat, "--participant", "Sam", "--api-key", "k")
	require.NoError(t, err)

	var result types.RecommendationResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &result))
	require.Len(t, result.Diagnostics, 1)
	assert.Equal(t, types.StageExtraction, result.Diagnostics[0].Stage)
	assert.Len(t, result.GiftIdeas, 2)
}
