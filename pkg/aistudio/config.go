package aistudio

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/rawbytes"

	"github.com/seeliang/google-cloud-engineering/pkg/errors"
	"github.com/seeliang/google-cloud-engineering/pkg/vertex"

	errorsx "github.com/instill-ai/x/errors"
)

// Variables and files consulted by LoadConfig.
const (
	EnvAPIKey         = "GOOGLE_AI_STUDIO_API_KEY"
	EnvAuthToken      = "AI_API_AUTH_TOKEN"
	EnvBaseURL        = "AI_API_BASE_URL"
	EnvModel          = "AI_API_MODEL"
	EnvOutputPath     = "AI_API_OUTPUT_PATH"
	EnvCredentialPath = "GOOGLE_AI_STUDIO_CREDENTIAL_PATH"

	EnvFileName           = "env.local.json"
	DefaultCredentialPath = "../credential.json"
	DefaultOutputPath     = "results/latest-response.json"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "models/gemini-2.0-flash"
)

// Config holds the AI Studio connection settings.
type Config struct {
	APIKey     string
	AuthToken  string
	BaseURL    string
	Model      string
	OutputPath string
}

// LoadConfig assembles the configuration from env, env.local.json in cwd and
// the credential file. The API key and auth token are looked up in that
// order; base URL and model skip the credential file and fall back to the
// public defaults. Missing files count as empty, malformed ones are errors.
func LoadConfig(env vertex.Env, cwd string) (Config, error) {
	envFile, err := readJSONIfExists(filepath.Join(cwd, EnvFileName))
	if err != nil {
		return Config{}, err
	}

	credentialPath := filepath.Join(cwd, DefaultCredentialPath)
	if p, ok := env.Lookup(EnvCredentialPath); ok && p != "" {
		credentialPath = resolvePath(cwd, p)
	}
	credentials, err := readJSONIfExists(credentialPath)
	if err != nil {
		return Config{}, err
	}

	apiKey, _ := first(fromEnv(env, EnvAPIKey), fromFile(envFile, EnvAPIKey), fromFile(credentials, EnvAPIKey))
	if apiKey == "" {
		return Config{}, errorsx.AddMessage(
			fmt.Errorf("%w: missing %s", errors.ErrInvalidArgument, EnvAPIKey),
			fmt.Sprintf("Missing %s in environment, %s, or credential.json.", EnvAPIKey, EnvFileName),
		)
	}

	authToken, _ := first(fromEnv(env, EnvAuthToken), fromFile(envFile, EnvAuthToken), fromFile(credentials, EnvAuthToken))
	baseURL, ok := first(fromEnv(env, EnvBaseURL), fromFile(envFile, EnvBaseURL))
	if !ok {
		baseURL = DefaultBaseURL
	}
	model, ok := first(fromEnv(env, EnvModel), fromFile(envFile, EnvModel))
	if !ok {
		model = DefaultModel
	}
	outputPath, _ := first(fromEnv(env, EnvOutputPath), fromFile(envFile, EnvOutputPath))
	if outputPath == "" {
		outputPath = DefaultOutputPath
	}

	return Config{
		APIKey:     apiKey,
		AuthToken:  authToken,
		BaseURL:    baseURL,
		Model:      model,
		OutputPath: resolvePath(cwd, outputPath),
	}, nil
}

type source func() (string, bool)

// first returns the value of the first source that defines one. An empty
// string counts as defined.
func first(sources ...source) (string, bool) {
	for _, s := range sources {
		if v, ok := s(); ok {
			return v, true
		}
	}
	return "", false
}

func fromEnv(env vertex.Env, key string) source {
	return func() (string, bool) {
		if env == nil {
			return "", false
		}
		return env.Lookup(key)
	}
}

func fromFile(k *koanf.Koanf, key string) source {
	return func() (string, bool) {
		if !k.Exists(key) {
			return "", false
		}
		return k.String(key), true
	}
}

func readJSONIfExists(path string) (*koanf.Koanf, error) {
	k := koanf.New(".")

	raw, err := os.ReadFile(path)
	if stderrors.Is(err, fs.ErrNotExist) {
		return k, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := k.Load(rawbytes.Provider(raw), json.Parser()); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return k, nil
}

func resolvePath(cwd, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cwd, p)
}
