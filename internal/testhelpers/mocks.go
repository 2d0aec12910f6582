// Package testhelpers provides shared test utilities for the study tool
// service.
package testhelpers

import (
	"context"
	"sync"
)

// MockCompleter implements semantic.Completer with a scripted reply.
type MockCompleter struct {
	mu      sync.Mutex
	Reply   string
	Err     error
	Calls   int
	Prompts []string
}

// Complete records the prompt and returns the scripted reply or error.
func (m *MockCompleter) Complete(_ context.Context, _ string, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls++
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// StaticSegmenter returns the same token list for every input.
type StaticSegmenter struct {
	Tokens []string
}

func (s StaticSegmenter) Segment(string) []string {
	return s.Tokens
}
