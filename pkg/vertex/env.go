package vertex

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables consulted by Resolve. The names are shared with the
// deployment environment and must not change.
const (
	EnvProject                = "GOOGLE_CLOUD_PROJECT"
	EnvLocation               = "VERTEX_LOCATION"
	EnvModel                  = "VERTEX_MODEL"
	EnvSystemInstructionParts = "VERTEX_SYSTEM_INSTRUCTION_PARTS"
	EnvSystemInstruction      = "VERTEX_SYSTEM_INSTRUCTION"
	EnvMaxOutputTokens        = "VERTEX_MAX_OUTPUT_TOKENS"
	EnvTemperature            = "VERTEX_TEMPERATURE"
	EnvTopP                   = "VERTEX_TOP_P"
	EnvTopK                   = "VERTEX_TOP_K"
)

// Env is a read-only view over environment variables.
type Env interface {
	Lookup(key string) (string, bool)
}

// MapEnv is an Env backed by a fixed set of values.
type MapEnv map[string]string

// Lookup implements Env.
func (m MapEnv) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// OSEnv takes a snapshot of the process environment. Later changes to the
// process environment are not visible through the returned view.
func OSEnv() MapEnv {
	environ := os.Environ()
	env := make(MapEnv, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env
}

// LoadEnvFile reads a dotenv file into a MapEnv. The process environment is
// left untouched.
func LoadEnvFile(path string) (MapEnv, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return MapEnv(values), nil
}

// Overlay returns a view where variables defined in top shadow those in base.
func Overlay(base, top Env) Env {
	return layeredEnv{top: top, base: base}
}

type layeredEnv struct {
	top, base Env
}

func (l layeredEnv) Lookup(key string) (string, bool) {
	if l.top != nil {
		if v, ok := l.top.Lookup(key); ok {
			return v, true
		}
	}
	if l.base != nil {
		return l.base.Lookup(key)
	}
	return "", false
}

// lookupTrimmed returns the trimmed value of key when it holds non-blank
// content.
func lookupTrimmed(env Env, key string) (string, bool) {
	if env == nil {
		return "", false
	}
	v, ok := env.Lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}
