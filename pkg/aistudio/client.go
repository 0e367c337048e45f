package aistudio

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/seeliang/google-cloud-engineering/pkg/errors"

	errorsx "github.com/instill-ai/x/errors"
)

// RequestTimeout bounds a single generateContent call.
const RequestTimeout = 30 * time.Second

const apiKeyHeader = "X-goog-api-key"

// Client calls the AI Studio generateContent endpoint.
type Client struct {
	http      *resty.Client
	baseURL   string
	model     string
	apiKey    string
	authToken string
}

// NewClient returns a Client for cfg. A nil httpClient selects resty's
// default transport.
func NewClient(cfg Config, httpClient *http.Client) *Client {
	var r *resty.Client
	if httpClient != nil {
		r = resty.NewWithClient(httpClient)
	} else {
		r = resty.New()
	}
	r.SetTimeout(RequestTimeout).
		SetHeader("Content-Type", "application/json")

	return &Client{
		http:      r,
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		model:     strings.Trim(cfg.Model, "/"),
		apiKey:    cfg.APIKey,
		authToken: cfg.AuthToken,
	}
}

type requestPart struct {
	Text string `json:"text"`
}

type requestContent struct {
	Parts []requestPart `json:"parts"`
}

// RequestPayload is the generateContent request body.
type RequestPayload struct {
	Contents []requestContent `json:"contents"`
}

// BuildRequestPayload wraps prompt as a single-turn request.
func BuildRequestPayload(prompt string) RequestPayload {
	return RequestPayload{
		Contents: []requestContent{{Parts: []requestPart{{Text: prompt}}}},
	}
}

// Endpoint returns the generateContent URL for the configured model.
func (c *Client) Endpoint() string {
	return fmt.Sprintf("%s/%s:generateContent", c.baseURL, c.model)
}

// GenerateContent sends prompt and returns the raw JSON response.
func (c *Client) GenerateContent(ctx context.Context, prompt string) (json.RawMessage, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, errorsx.AddMessage(
			fmt.Errorf("%w: empty prompt", errors.ErrInvalidArgument),
			"Prompt text is required.",
		)
	}

	req := c.http.R().
		SetContext(ctx).
		SetHeader(apiKeyHeader, c.apiKey).
		SetBody(BuildRequestPayload(prompt))
	if c.authToken != "" {
		req.SetAuthToken(c.authToken)
	}

	resp, err := req.Post(c.Endpoint())
	if err != nil {
		return nil, fmt.Errorf("%w: AI Studio request: %w", errors.ErrUpstream, err)
	}

	body := resp.Body()
	if resp.StatusCode() != http.StatusOK {
		return nil, errorsx.AddMessage(
			fmt.Errorf("%w: AI Studio request failed (%d): %s", errors.ErrUpstream, resp.StatusCode(), body),
			"The AI Studio request was rejected. Please check the API key and model.",
		)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: AI Studio response was not JSON: %s", errors.ErrUpstream, body)
	}

	return json.RawMessage(body), nil
}
