package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jonathan/gift-recommender/internal/llm"
)

const sampleChat = `3/1/25, 09:16 - Messages and calls are end-to-end encrypted. No one outside of this chat can read them.
3/1/25, 09:16 - Sam: I really want to get into rock climbing
3/1/25, 09:17 - Alex: You should!
4/5/25, 18:02 - Sam: My hands are so dry lately
`

const cannedExtraction = `{
	"direct_wish_signals": [
		{"item": "rock climbing gear", "quote": "I really want to get into rock climbing", "date": "2025-03-01", "sentiment_strength": 4}
	],
	"problems": [
		{"quote": "My hands are so dry lately", "date": "2025-04-05", "severity": 2}
	],
	"enthusiasm_signals": [],
	"values": []
}`

const cannedRecommendations = "```json\n" + `{"recommendations": [
	{"name": "Intro bouldering class", "description": "A guided first session", "match_score": 5},
	{"name": "Repair hand balm", "description": "Balm for dry hands", "match_score": 4}
]}` + "\n```"

// fakeClient answers extraction and recommendation prompts with canned text
type fakeClient struct {
	mu        sync.Mutex
	prompts   []string
	apiKey    string
	provider  llm.Provider
	closed    bool
	extractFn func(prompt string) (string, error)
}

func (f *fakeClient) Complete(_ context.Context, prompt string, _ llm.CallOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	if strings.Contains(prompt, "DIRECT WISH SIGNALS") {
		return cannedRecommendations, nil
	}
	if f.extractFn != nil {
		return f.extractFn(prompt)
	}
	return cannedExtraction, nil
}

func (f *fakeClient) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// useFakeClient routes model calls to a fakeClient for the duration of the test
func useFakeClient(t *testing.T) *fakeClient {
	t.Helper()
	fake := &fakeClient{}
	original := newLLMClient
	newLLMClient = func(_ context.Context, cfg *llm.Config, apiKey string) (llm.Client, error) {
		fake.apiKey = apiKey
		fake.provider = cfg.Provider
		return fake, nil
	}
	t.Cleanup(func() { newLLMClient = original })
	return fake
}

// executeCommand runs the CLI in-process and returns stdout and stderr
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCmd()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
