package main

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/seeliang/google-cloud-engineering/pkg/errors"
	"github.com/seeliang/google-cloud-engineering/pkg/report"
	"github.com/seeliang/google-cloud-engineering/pkg/vertex"
)

// payload is the JSON document passed on the command line.
type payload struct {
	Overrides vertex.Overrides `json:"overrides"`
	Model     any              `json:"model"`
	Request   json.RawMessage  `json:"request"`
}

type runner struct {
	env       vertex.Env
	factory   vertex.ClientFactory
	logger    *zap.Logger
	reportDir string
	uploader  report.Uploader
	now       func() time.Time
}

// run executes the payload at path and returns the process exit code.
func (r *runner) run(ctx context.Context, path string) int {
	absPath, err := filepath.Abs(path)
	if err != nil {
		r.logger.Error("Failed to resolve input path", zap.String("path", path), zap.Error(err))
		return 1
	}

	p, err := readPayload(absPath)
	if err != nil {
		r.logger.Error("Failed to load JSON file", zap.String("path", absPath), zap.Error(err))
		return 1
	}

	overrides := p.Overrides
	if model, ok := p.Model.(string); ok && overrides.Model == "" && strings.TrimSpace(model) != "" {
		overrides.Model = strings.TrimSpace(model)
	}

	cfg := vertex.Resolve(nil, overrides, r.env)
	r.logger.Info("Resolved configuration", zap.Any("config", cfg))

	rep := report.New(absPath, r.now())
	rep.Config = cfg
	rep.Overrides = overrides
	if len(p.Request) > 0 {
		rep.Request = p.Request
	}
	w := report.NewWriter(r.reportDir, absPath)
	if r.uploader != nil {
		w.WithUploader(r.uploader)
	}

	contents, ok, err := parseRequest(p.Request)
	if !ok {
		r.logger.Info("No request payload supplied; skipping model invocation")
		return r.write(ctx, w, rep, report.LabelNoRequest)
	}

	var resp *genai.GenerateContentResponse
	if err == nil {
		resp, err = r.generate(ctx, overrides, contents)
	}
	if err != nil {
		rep.Error = &report.Error{Name: errors.Name(err), Message: err.Error()}
		r.logger.Error("Model invocation failed", zap.Error(err))
		r.write(ctx, w, rep, report.LabelError)
		return 1
	}

	rep.Response = resp
	r.logger.Info("Model response", zap.Any("response", resp))
	return r.write(ctx, w, rep, report.LabelSuccess)
}

// generate calls the model once with contents.
func (r *runner) generate(ctx context.Context, overrides vertex.Overrides, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	model, err := vertex.GetModel(ctx, overrides, vertex.WithEnv(r.env), vertex.WithClientFactory(r.factory))
	if err != nil {
		return nil, err
	}
	return model.GenerateContent(ctx, contents)
}

func (r *runner) write(ctx context.Context, w *report.Writer, rep *report.Report, label string) int {
	path, err := w.Write(ctx, rep, label)
	if stderrors.Is(err, report.ErrUpload) {
		r.logger.Warn("Failed to upload report", zap.String("path", path), zap.Error(err))
		err = nil
	}
	if err != nil {
		r.logger.Error("Failed to write report", zap.String("label", label), zap.Error(err))
		return 1
	}
	r.logger.Info("Report written", zap.String("label", label), zap.String("path", path))
	return 0
}

func readPayload(path string) (*payload, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return &p, nil
}

// parseRequest turns the request field into model contents. ok is false when
// the field is absent or empty. A string becomes a single user turn; an
// object must carry a contents array.
func parseRequest(raw json.RawMessage) (contents []*genai.Content, ok bool, err error) {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", `""`, "false", "0":
		return nil, false, nil
	}

	var prompt string
	if json.Unmarshal(trimmed, &prompt) == nil {
		return vertex.TextContents(prompt), true, nil
	}

	var req struct {
		Contents []*genai.Content `json:"contents"`
	}
	if err := json.Unmarshal(trimmed, &req); err != nil || len(req.Contents) == 0 {
		return nil, true, fmt.Errorf("%w: request must be a prompt string or an object with contents", errors.ErrInvalidArgument)
	}
	return req.Contents, true, nil
}
