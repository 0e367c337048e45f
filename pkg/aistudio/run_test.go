package aistudio

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	qt "github.com/frankban/quicktest"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeGenerator struct {
	prompt string
	resp   json.RawMessage
	err    error
}

func (f *fakeGenerator) GenerateContent(_ context.Context, prompt string) (json.RawMessage, error) {
	f.prompt = prompt
	return f.resp, f.err
}

func TestRun(t *testing.T) {
	c := qt.New(t)

	c.Run("persists the response", func(c *qt.C) {
		core, logs := observer.New(zapcore.InfoLevel)
		gen := &fakeGenerator{resp: json.RawMessage(`{"candidates":[]}`)}
		out := filepath.Join(c.TempDir(), "results", "latest.json")

		got, err := Run(context.Background(), gen, zap.New(core), RunOptions{OutputPath: out})
		c.Assert(err, qt.IsNil)
		c.Check(string(got), qt.Equals, `{"candidates":[]}`)
		c.Check(gen.prompt, qt.Equals, DefaultPrompt)

		raw, err := os.ReadFile(out)
		c.Assert(err, qt.IsNil)
		c.Check(string(raw), qt.Equals, "{\n  \"candidates\": []\n}")
		c.Check(logs.FilterMessage("AI Studio response saved").Len(), qt.Equals, 1)
	})

	c.Run("persist failure only warns", func(c *qt.C) {
		core, logs := observer.New(zapcore.InfoLevel)
		blocker := filepath.Join(c.TempDir(), "file")
		c.Assert(os.WriteFile(blocker, []byte("x"), 0o600), qt.IsNil)

		gen := &fakeGenerator{resp: json.RawMessage(`{}`)}
		_, err := Run(context.Background(), gen, zap.New(core), RunOptions{Prompt: "p", OutputPath: filepath.Join(blocker, "out.json")})
		c.Assert(err, qt.IsNil)
		c.Check(gen.prompt, qt.Equals, "p")
		c.Check(logs.FilterLevelExact(zapcore.WarnLevel).Len(), qt.Equals, 1)
	})

	c.Run("failure is swallowed unless strict", func(c *qt.C) {
		core, logs := observer.New(zapcore.InfoLevel)
		gen := &fakeGenerator{err: fmt.Errorf("boom")}

		got, err := Run(context.Background(), gen, zap.New(core), RunOptions{})
		c.Assert(err, qt.IsNil)
		c.Check(got, qt.IsNil)
		c.Check(logs.FilterMessage("AI Studio request failed").Len(), qt.Equals, 1)

		_, err = Run(context.Background(), gen, zap.New(core), RunOptions{Strict: true})
		c.Assert(err, qt.ErrorMatches, "boom")
	})
}
