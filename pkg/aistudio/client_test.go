package aistudio

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	qt "github.com/frankban/quicktest"

	apperrors "github.com/seeliang/google-cloud-engineering/pkg/errors"
)

func TestBuildRequestPayload(t *testing.T) {
	c := qt.New(t)

	raw, err := json.Marshal(BuildRequestPayload("hello"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(raw), qt.Equals, `{"contents":[{"parts":[{"text":"hello"}]}]}`)
}

func TestClient_GenerateContent(t *testing.T) {
	c := qt.New(t)

	var gotPath, gotKey, gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get(apiKeyHeader)
		gotAuth = r.Header.Get("Authorization")
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)

		switch gotKey {
		case "good":
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"hi"}]}}]}`))
		case "garbled":
			_, _ = w.Write([]byte(`oops`))
		default:
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`Forbidden`))
		}
	}))
	c.Cleanup(srv.Close)

	cfg := Config{BaseURL: srv.URL + "/v1beta/", Model: DefaultModel}

	c.Run("ok", func(c *qt.C) {
		cfg := cfg
		cfg.APIKey = "good"
		cfg.AuthToken = "tok"

		got, err := NewClient(cfg, srv.Client()).GenerateContent(context.Background(), "hello")
		c.Assert(err, qt.IsNil)
		c.Check(string(got), qt.Contains, `"text":"hi"`)
		c.Check(gotPath, qt.Equals, "/v1beta/models/gemini-2.0-flash:generateContent")
		c.Check(gotAuth, qt.Equals, "Bearer tok")
		c.Check(gotBody, qt.JSONEquals, BuildRequestPayload("hello"))
	})

	c.Run("rejected", func(c *qt.C) {
		cfg := cfg
		cfg.APIKey = "bad"

		_, err := NewClient(cfg, srv.Client()).GenerateContent(context.Background(), "hello")
		c.Assert(err, qt.ErrorMatches, ".*AI Studio request failed \\(403\\): Forbidden")
		c.Check(errors.Is(err, apperrors.ErrUpstream), qt.IsTrue)
		c.Check(gotAuth, qt.Equals, "")
	})

	c.Run("not json", func(c *qt.C) {
		cfg := cfg
		cfg.APIKey = "garbled"

		_, err := NewClient(cfg, srv.Client()).GenerateContent(context.Background(), "hello")
		c.Assert(err, qt.ErrorMatches, ".*not JSON: oops")
	})

	c.Run("empty prompt", func(c *qt.C) {
		_, err := NewClient(cfg, srv.Client()).GenerateContent(context.Background(), "  ")
		c.Check(errors.Is(err, apperrors.ErrInvalidArgument), qt.IsTrue)
	})
}
