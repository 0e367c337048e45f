package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/uuid"
)

// Labels for the outcome of a run.
const (
	LabelNoRequest = "no-request"
	LabelSuccess   = "success"
	LabelError     = "error"
)

// ErrUpload marks a report that was written locally but not uploaded.
var ErrUpload = fmt.Errorf("report upload failed")

// Error describes a failed model invocation.
type Error struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

// Report is the record of a single configuration run.
type Report struct {
	InputFile   string          `json:"inputFile"`
	GeneratedAt time.Time       `json:"generatedAt"`
	RunID       string          `json:"runId"`
	Config      any             `json:"config"`
	Overrides   any             `json:"overrides"`
	Request     json.RawMessage `json:"request"`
	Response    any             `json:"response"`
	Error       *Error          `json:"error"`
}

// New starts a report for inputFile.
func New(inputFile string, generatedAt time.Time) *Report {
	return &Report{
		InputFile:   inputFile,
		GeneratedAt: generatedAt.UTC(),
		RunID:       uuid.Must(uuid.NewV4()).String(),
	}
}

// Uploader keeps a remote copy of a written report.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) error
}

// Writer writes reports named after the input they were produced from.
type Writer struct {
	dir      string
	base     string
	now      func() time.Time
	uploader Uploader
}

// NewWriter returns a Writer placing reports for sourcePath in dir.
func NewWriter(dir, sourcePath string) *Writer {
	name := filepath.Base(sourcePath)
	return &Writer{
		dir:  dir,
		base: strings.TrimSuffix(name, filepath.Ext(name)),
		now:  time.Now,
	}
}

// WithUploader makes Write copy every report to u.
func (w *Writer) WithUploader(u Uploader) *Writer {
	w.uploader = u
	return w
}

// Write stores v as <base>-<label>-<timestamp>.json and returns the path.
// When the local write succeeds but the upload fails, the path is returned
// together with an error wrapping ErrUpload.
func (w *Writer) Write(ctx context.Context, v any, label string) (string, error) {
	name := fmt.Sprintf("%s-%s-%s.json", w.base, label, fileTimestamp(w.now()))
	path := filepath.Join(w.dir, name)

	data, err := encode(path, v)
	if err != nil {
		return "", err
	}
	if err := write(path, data); err != nil {
		return "", err
	}

	if w.uploader != nil {
		if err := w.uploader.Upload(ctx, name, data); err != nil {
			return path, fmt.Errorf("%w: %w", ErrUpload, err)
		}
	}
	return path, nil
}

// WriteJSON writes v as indented JSON, creating parent directories.
func WriteJSON(path string, v any) error {
	data, err := encode(path, v)
	if err != nil {
		return err
	}
	return write(path, data)
}

func encode(path string, v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", path, err)
	}
	return data, nil
}

func write(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// fileTimestamp formats t as a millisecond UTC timestamp safe for file names.
func fileTimestamp(t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return strings.NewReplacer(":", "-", ".", "-").Replace(ts)
}
