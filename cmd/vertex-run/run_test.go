package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/seeliang/google-cloud-engineering/pkg/vertex"
)

type fakeModel struct {
	params   vertex.ModelParams
	contents []*genai.Content
	err      error
}

func (m *fakeModel) GenerateContent(_ context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	m.contents = contents
	if m.err != nil {
		return nil, m.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: "pong"}}}}},
	}, nil
}

type fakeConnection struct {
	model *fakeModel
}

func (f *fakeConnection) GenerativeModel(params vertex.ModelParams) vertex.Model {
	f.model.params = params
	return f.model
}

type failingUploader struct {
	calls int
}

func (f *failingUploader) Upload(context.Context, string, []byte) error {
	f.calls++
	return fmt.Errorf("bucket unreachable")
}

func newRunner(c *qt.C, model *fakeModel) (*runner, string, *int) {
	dir := filepath.Join(c.TempDir(), "results")
	calls := 0
	return &runner{
		env: vertex.MapEnv{vertex.EnvProject: "env-project"},
		factory: func(_ context.Context, params vertex.ConnectionParams, _ *vertex.ResolvedConfig) (vertex.Connection, error) {
			calls++
			c.Check(params.Project, qt.Equals, "env-project")
			if model == nil {
				return nil, nil
			}
			return &fakeConnection{model: model}, nil
		},
		logger:    zap.NewNop(),
		reportDir: dir,
		now:       time.Now,
	}, dir, &calls
}

func writePayload(c *qt.C, content string) string {
	path := filepath.Join(c.TempDir(), "sample.json")
	c.Assert(os.WriteFile(path, []byte(content), 0o600), qt.IsNil)
	return path
}

func readReport(c *qt.C, dir string) (string, map[string]any) {
	entries, err := os.ReadDir(dir)
	c.Assert(err, qt.IsNil)
	c.Assert(entries, qt.HasLen, 1)

	raw, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	c.Assert(err, qt.IsNil)
	var decoded map[string]any
	c.Assert(json.Unmarshal(raw, &decoded), qt.IsNil)
	return entries[0].Name(), decoded
}

func TestRunner_Run(t *testing.T) {
	c := qt.New(t)

	c.Run("no request", func(c *qt.C) {
		r, dir, calls := newRunner(c, &fakeModel{})
		path := writePayload(c, `{"overrides": {"location": "europe-west4"}, "model": " gemini-pro "}`)

		c.Assert(r.run(context.Background(), path), qt.Equals, 0)
		c.Check(*calls, qt.Equals, 0)

		name, rep := readReport(c, dir)
		c.Check(name, qt.Matches, `sample-no-request-.*\.json`)
		c.Check(rep["inputFile"], qt.Equals, path)
		c.Check(rep["request"], qt.IsNil)
		cfg := rep["config"].(map[string]any)
		c.Check(cfg["project"], qt.Equals, "env-project")
		c.Check(cfg["location"], qt.Equals, "europe-west4")
		c.Check(cfg["model"], qt.Equals, "gemini-pro")
		c.Check(rep["overrides"].(map[string]any)["model"], qt.Equals, "gemini-pro")
	})

	c.Run("prompt string", func(c *qt.C) {
		model := &fakeModel{}
		r, dir, calls := newRunner(c, model)
		path := writePayload(c, `{"overrides": {"model": "explicit"}, "model": "ignored", "request": "ping"}`)

		c.Assert(r.run(context.Background(), path), qt.Equals, 0)
		c.Check(*calls, qt.Equals, 1)
		c.Check(model.params.Model, qt.Equals, "explicit")
		c.Assert(model.contents, qt.HasLen, 1)
		c.Check(model.contents[0].Parts[0].Text, qt.Equals, "ping")

		name, rep := readReport(c, dir)
		c.Check(name, qt.Matches, `sample-success-.*\.json`)
		c.Check(rep["request"], qt.Equals, "ping")
		c.Check(rep["error"], qt.IsNil)
		c.Check(rep["response"], qt.IsNotNil)
	})

	c.Run("non-string overrides fall through", func(c *qt.C) {
		model := &fakeModel{}
		r, dir, calls := newRunner(c, model)
		path := writePayload(c, `{"overrides": {"project": 42, "model": 7, "safetySettings": "x"}, "model": "payload-model", "request": "hi"}`)

		c.Assert(r.run(context.Background(), path), qt.Equals, 0)
		c.Check(*calls, qt.Equals, 1)
		c.Check(model.params.Model, qt.Equals, "payload-model")
		c.Check(model.params.SafetySettings, qt.DeepEquals, vertex.Defaults().SafetySettings)

		name, rep := readReport(c, dir)
		c.Check(name, qt.Matches, `sample-success-.*\.json`)
		c.Check(rep["config"].(map[string]any)["project"], qt.Equals, "env-project")
	})

	c.Run("contents object", func(c *qt.C) {
		model := &fakeModel{}
		r, _, _ := newRunner(c, model)
		path := writePayload(c, `{"request": {"contents": [{"role": "user", "parts": [{"text": "a"}, {"text": "b"}]}]}}`)

		c.Assert(r.run(context.Background(), path), qt.Equals, 0)
		c.Assert(model.contents, qt.HasLen, 1)
		c.Check(model.contents[0].Parts, qt.HasLen, 2)
	})

	c.Run("model failure", func(c *qt.C) {
		r, dir, _ := newRunner(c, &fakeModel{err: fmt.Errorf("quota exhausted")})
		path := writePayload(c, `{"request": "ping"}`)

		c.Assert(r.run(context.Background(), path), qt.Equals, 1)

		name, rep := readReport(c, dir)
		c.Check(name, qt.Matches, `sample-error-.*\.json`)
		c.Check(rep["error"], qt.DeepEquals, map[string]any{"name": "Error", "message": "quota exhausted"})
	})

	c.Run("factory without connection", func(c *qt.C) {
		r, dir, _ := newRunner(c, nil)
		path := writePayload(c, `{"request": "ping"}`)

		c.Assert(r.run(context.Background(), path), qt.Equals, 1)

		_, rep := readReport(c, dir)
		c.Check(rep["error"].(map[string]any)["name"], qt.Equals, "ContractViolationError")
	})

	c.Run("unsupported request", func(c *qt.C) {
		r, dir, calls := newRunner(c, &fakeModel{})
		path := writePayload(c, `{"request": {"prompt": "ping"}}`)

		c.Assert(r.run(context.Background(), path), qt.Equals, 1)
		c.Check(*calls, qt.Equals, 0)

		_, rep := readReport(c, dir)
		c.Check(rep["error"].(map[string]any)["name"], qt.Equals, "InvalidArgumentError")
	})

	c.Run("upload failure is not fatal", func(c *qt.C) {
		r, dir, _ := newRunner(c, &fakeModel{})
		u := &failingUploader{}
		r.uploader = u

		c.Assert(r.run(context.Background(), writePayload(c, `{"request": "ping"}`)), qt.Equals, 0)
		c.Check(u.calls, qt.Equals, 1)
		name, _ := readReport(c, dir)
		c.Check(name, qt.Matches, `sample-success-.*\.json`)
	})

	c.Run("unreadable payload", func(c *qt.C) {
		r, dir, _ := newRunner(c, &fakeModel{})

		c.Assert(r.run(context.Background(), writePayload(c, `{`)), qt.Equals, 1)
		_, err := os.Stat(dir)
		c.Check(os.IsNotExist(err), qt.IsTrue)
	})
}

func TestParseRequest(t *testing.T) {
	c := qt.New(t)

	for _, raw := range []string{"", "null", `""`, "false", "0", "  "} {
		_, ok, err := parseRequest(json.RawMessage(raw))
		c.Check(ok, qt.IsFalse, qt.Commentf("raw %q", raw))
		c.Check(err, qt.IsNil)
	}

	contents, ok, err := parseRequest(json.RawMessage(`"hello"`))
	c.Assert(err, qt.IsNil)
	c.Check(ok, qt.IsTrue)
	c.Check(contents[0].Role == genai.RoleUser, qt.IsTrue)
}
