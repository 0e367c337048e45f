package web

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/seeliang/google-cloud-engineering/pkg/analyzer"
	"github.com/seeliang/google-cloud-engineering/pkg/errors"

	errorsx "github.com/instill-ai/x/errors"
)

const forwardTimeout = 30 * time.Second

// Forwarder posts text to the analyzer function.
type Forwarder struct {
	http *resty.Client
	url  string
}

// NewForwarder returns a Forwarder for the analyzer at url.
func NewForwarder(url string) *Forwarder {
	return &Forwarder{
		http: resty.New().SetTimeout(forwardTimeout),
		url:  url,
	}
}

// URL is the analyzer endpoint.
func (f *Forwarder) URL() string {
	return f.url
}

// Analyze returns the analyzer's stats for text.
func (f *Forwarder) Analyze(ctx context.Context, text string) (*analyzer.Stats, error) {
	resp, err := f.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"text": text}).
		Post(f.url)
	if err != nil {
		return nil, upstreamError(fmt.Sprintf("Analyzer request failed: %v", err))
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		return nil, upstreamError(fmt.Sprintf("Analyzer responded with %d: %s", resp.StatusCode(), body))
	}

	var stats analyzer.Stats
	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("{")) || json.Unmarshal(body, &stats) != nil {
		return nil, upstreamError(fmt.Sprintf("Analyzer response was not JSON: %s", body))
	}
	return &stats, nil
}

func upstreamError(msg string) error {
	return errorsx.AddMessage(fmt.Errorf("%w: %s", errors.ErrUpstream, msg), msg)
}

// errorMessage is the text shown to users for err.
func errorMessage(err error) string {
	if msg := errorsx.Message(err); msg != "" {
		return msg
	}
	return err.Error()
}
