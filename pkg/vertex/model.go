package vertex

import (
	"context"
	"fmt"
	"reflect"

	"google.golang.org/genai"

	"github.com/seeliang/google-cloud-engineering/pkg/errors"

	errorsx "github.com/instill-ai/x/errors"
)

// RoleSystem is the role carried by system instructions.
const RoleSystem = "system"

// SystemInstruction is the wire shape of the instruction preamble.
type SystemInstruction struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// ConnectionParams identifies the provider endpoint a connection is opened
// against.
type ConnectionParams struct {
	Project  string `json:"project"`
	Location string `json:"location"`
}

// ModelParams is everything a connection needs to bind a model handle.
type ModelParams struct {
	Model             string            `json:"model"`
	SafetySettings    []SafetySetting   `json:"safetySettings"`
	GenerationConfig  GenerationConfig  `json:"generationConfig"`
	SystemInstruction SystemInstruction `json:"systemInstruction"`
}

// Model generates content with a bound configuration.
type Model interface {
	GenerateContent(ctx context.Context, contents []*genai.Content) (*genai.GenerateContentResponse, error)
}

// Connection is an open provider connection able to produce model handles.
type Connection interface {
	GenerativeModel(params ModelParams) Model
}

// ClientFactory opens a provider connection. It receives the resolved
// configuration in case it needs more than the connection parameters.
type ClientFactory func(ctx context.Context, params ConnectionParams, cfg *ResolvedConfig) (Connection, error)

type options struct {
	createClient ClientFactory
	env          Env
	defaults     *DefaultConfig
}

// Option configures GetModel.
type Option func(*options)

// WithClientFactory replaces DefaultClientFactory.
func WithClientFactory(f ClientFactory) Option {
	return func(o *options) {
		o.createClient = f
	}
}

// WithEnv resolves against env instead of a snapshot of the process
// environment.
func WithEnv(env Env) Option {
	return func(o *options) {
		o.env = env
	}
}

// WithDefaults resolves against d instead of the compiled-in defaults.
func WithDefaults(d *DefaultConfig) Option {
	return func(o *options) {
		o.defaults = d
	}
}

// GetModel resolves the configuration, opens a connection through the client
// factory and returns the model handle the connection produces for it.
//
// The factory is called exactly once. Its errors are returned as they are; a
// nil connection, or an interface holding a nil pointer, fails with
// errors.ErrContractViolation.
func GetModel(ctx context.Context, overrides Overrides, opts ...Option) (Model, error) {
	o := options{createClient: DefaultClientFactory}
	for _, opt := range opts {
		opt(&o)
	}
	if o.createClient == nil {
		o.createClient = DefaultClientFactory
	}
	if o.env == nil {
		o.env = OSEnv()
	}

	cfg := Resolve(o.defaults, overrides, o.env)

	conn, err := o.createClient(ctx, ConnectionParams{Project: cfg.Project, Location: cfg.Location}, cfg)
	if err != nil {
		return nil, err
	}
	if isNilConnection(conn) {
		return nil, errorsx.AddMessage(
			fmt.Errorf("%w: client factory returned no connection exposing GenerativeModel", errors.ErrContractViolation),
			"The model client could not be created. Please check the client factory.",
		)
	}

	return conn.GenerativeModel(ModelParams{
		Model:             cfg.Model,
		SafetySettings:    cfg.SafetySettings,
		GenerationConfig:  cfg.GenerationConfig,
		SystemInstruction: buildSystemInstruction(cfg.SystemInstructionParts),
	}), nil
}

func isNilConnection(conn Connection) bool {
	if conn == nil {
		return true
	}
	switch v := reflect.ValueOf(conn); v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func buildSystemInstruction(parts []Part) SystemInstruction {
	return SystemInstruction{
		Role:  RoleSystem,
		Parts: cloneParts(parts),
	}
}

func (s SystemInstruction) toGenai() *genai.Content {
	parts := make([]*genai.Part, len(s.Parts))
	for i, p := range s.Parts {
		parts[i] = &genai.Part{Text: p.Text}
	}
	return &genai.Content{
		Role:  RoleSystem,
		Parts: parts,
	}
}
