package vertex

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/seeliang/google-cloud-engineering/pkg/errors"

	errorsx "github.com/instill-ai/x/errors"
)

// DefaultClientFactory opens a Vertex AI connection with Application Default
// Credentials.
func DefaultClientFactory(ctx context.Context, params ConnectionParams, _ *ResolvedConfig) (Connection, error) {
	if params.Project == "" || params.Location == "" {
		return nil, errorsx.AddMessage(
			errors.ErrInvalidArgument,
			"Vertex AI configuration is missing project or location.",
		)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:  genai.BackendVertexAI,
		Project:  params.Project,
		Location: params.Location,
	})
	if err != nil {
		return nil, errorsx.AddMessage(
			fmt.Errorf("failed to create Vertex AI client: %w", err),
			"Unable to connect to Vertex AI. Please check your credentials.",
		)
	}

	return NewConnection(client.Models), nil
}

// generator is the subset of *genai.Models used by a model handle.
type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// NewConnection wraps the SDK's models service as a Connection.
func NewConnection(models generator) Connection {
	return &genaiConnection{models: models}
}

type genaiConnection struct {
	models generator
}

func (c *genaiConnection) GenerativeModel(params ModelParams) Model {
	config := params.GenerationConfig.toGenai()
	config.SafetySettings = toGenaiSafetySettings(params.SafetySettings)
	config.SystemInstruction = params.SystemInstruction.toGenai()

	return &genaiModel{
		models: c.models,
		name:   params.Model,
		config: config,
	}
}

type genaiModel struct {
	models generator
	name   string
	config *genai.GenerateContentConfig
}

func (m *genaiModel) GenerateContent(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error) {
	if len(contents) == 0 {
		return nil, errorsx.AddMessage(errors.ErrInvalidArgument, "Request contents are empty.")
	}

	resp, err := m.models.GenerateContent(ctx, m.name, contents, m.config)
	if err != nil {
		return nil, errorsx.AddMessage(
			fmt.Errorf("failed to generate content: %w", err),
			"Unable to generate content. Please try again.",
		)
	}
	return resp, nil
}

// TextContents wraps a prompt as a single user turn.
func TextContents(prompt string) []*genai.Content {
	return []*genai.Content{
		{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: prompt}},
		},
	}
}
