package main

// Notes:
// - Test infrastructure shared by the package tests: a recording converter,
//   an in-memory pool and an environment with captured output.

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	md2slides "github.com/alnah/go-md2slides"
)

// ---------------------------------------------------------------------------
// Mock Implementations - For unit testing
// ---------------------------------------------------------------------------

// mockConverter records inputs and returns a fixed result.
// A nil result with a nil err yields a small HTML/PDF pair.
type mockConverter struct {
	mu     sync.Mutex
	inputs []md2slides.Input
	result *md2slides.ConvertResult
	err    error
}

func (m *mockConverter) Convert(_ context.Context, input md2slides.Input) (*md2slides.ConvertResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inputs = append(m.inputs, input)

	res := m.result
	if res == nil && m.err == nil {
		res = &md2slides.ConvertResult{HTML: []byte("<html></html>"), Pages: 1}
		if !input.HTMLOnly {
			res.PDF = []byte("%PDF-1.4 mock")
		}
	}
	return res, m.err
}

func (m *mockConverter) calls() []md2slides.Input {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]md2slides.Input(nil), m.inputs...)
}

// mockPool hands out a single shared converter.
type mockPool struct {
	conv    CLIConverter
	initErr error
	size    int
	opts    []md2slides.Option
	closed  bool
}

func (p *mockPool) Acquire() CLIConverter { return p.conv }
func (p *mockPool) Release(CLIConverter)  {}
func (p *mockPool) InitError() error      { return p.initErr }
func (p *mockPool) Close() error          { p.closed = true; return nil }
func (p *mockPool) Size() int {
	if p.size < 1 {
		return 1
	}
	return p.size
}

// testEnv returns an environment with captured output, an empty process
// environment and a pool backed by conv.
func testEnv(pool *mockPool) (*Environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	env := &Environment{
		Now:     func() time.Time { return clock },
		Stdout:  &stdout,
		Stderr:  &stderr,
		Getenv:  func(string) string { return "" },
		Environ: func() []string { return nil },
		NewPool: func(size int, opts ...md2slides.Option) Pool {
			pool.size = size
			pool.opts = opts
			return pool
		},
	}
	return env, &stdout, &stderr
}

// mapGetenv returns a getenv backed by vars.
func mapGetenv(vars map[string]string) func(string) string {
	return func(key string) string { return vars[key] }
}

// assertContains fails the test if got does not contain every want.
func assertContains(t *testing.T, got string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q\ngot: %s", want, got)
		}
	}
}
