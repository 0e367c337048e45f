// Package vertex resolves the Vertex AI generative model configuration from
// call-site overrides, environment variables and compiled-in defaults, and
// binds model handles to it.
package vertex

import (
	"encoding/json"
	"strings"
)

// ResolvedConfig is the configuration a model handle is built from. Every
// slice and pointer in it is freshly allocated by Resolve.
type ResolvedConfig struct {
	Project                string           `json:"project"`
	Location               string           `json:"location"`
	Model                  string           `json:"model"`
	SystemInstructionParts []Part           `json:"systemInstructionParts"`
	SafetySettings         []SafetySetting  `json:"safetySettings"`
	GenerationConfig       GenerationConfig `json:"generationConfig"`
}

// Overrides is the caller-supplied part of the configuration. Zero values
// fall through to the environment and the defaults.
//
// SystemInstruction is the legacy spelling of SystemInstructionParts and is
// only consulted when the latter is absent. GenerationConfig accepts numbers
// or numeric strings for maxOutputTokens, temperature, topP and topK.
type Overrides struct {
	Project                string          `json:"project,omitempty"`
	Location               string          `json:"location,omitempty"`
	Model                  string          `json:"model,omitempty"`
	SystemInstructionParts Instruction     `json:"systemInstructionParts,omitzero"`
	SystemInstruction      Instruction     `json:"systemInstruction,omitzero"`
	SafetySettings         []SafetySetting `json:"safetySettings,omitempty"`
	GenerationConfig       map[string]any  `json:"generationConfig,omitempty"`
}

// UnmarshalJSON decodes each field on its own. A field of the wrong type is
// dropped instead of failing the document, so it falls through to the
// environment and the defaults like any other absent value.
func (o *Overrides) UnmarshalJSON(data []byte) error {
	var raw struct {
		Project                json.RawMessage `json:"project"`
		Location               json.RawMessage `json:"location"`
		Model                  json.RawMessage `json:"model"`
		SystemInstructionParts Instruction     `json:"systemInstructionParts"`
		SystemInstruction      Instruction     `json:"systemInstruction"`
		SafetySettings         json.RawMessage `json:"safetySettings"`
		GenerationConfig       json.RawMessage `json:"generationConfig"`
	}
	*o = Overrides{}
	if err := json.Unmarshal(data, &raw); err != nil {
		// Not an object: nothing is overridden.
		return nil
	}

	o.Project = lenientString(raw.Project)
	o.Location = lenientString(raw.Location)
	o.Model = lenientString(raw.Model)
	o.SystemInstructionParts = raw.SystemInstructionParts
	o.SystemInstruction = raw.SystemInstruction
	if json.Unmarshal(raw.SafetySettings, &o.SafetySettings) != nil {
		o.SafetySettings = nil
	}
	if json.Unmarshal(raw.GenerationConfig, &o.GenerationConfig) != nil {
		o.GenerationConfig = nil
	}
	return nil
}

func lenientString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) != nil {
		return ""
	}
	return s
}

// Resolve merges overrides, env and defaults into a new ResolvedConfig.
//
// Strings resolve override, then environment, then default. The system
// instruction is the first usable of: overrides.SystemInstructionParts,
// overrides.SystemInstruction, the JSON parts in VERTEX_SYSTEM_INSTRUCTION_PARTS,
// the string in VERTEX_SYSTEM_INSTRUCTION, the default parts. Generation
// parameters start from the defaults, then the environment, then overrides.
//
// Resolve never fails: unusable values are treated as absent. A nil defaults
// uses the compiled-in configuration and a nil env is empty.
func Resolve(defaults *DefaultConfig, overrides Overrides, env Env) *ResolvedConfig {
	if defaults == nil {
		defaults = builtin
	}

	safety := defaults.SafetySettings
	if len(overrides.SafetySettings) > 0 {
		safety = overrides.SafetySettings
	}

	cfg := &ResolvedConfig{
		Project:                resolveString(overrides.Project, env, EnvProject, defaults.Project),
		Location:               resolveString(overrides.Location, env, EnvLocation, defaults.Location),
		Model:                  resolveString(overrides.Model, env, EnvModel, defaults.Model),
		SystemInstructionParts: resolveSystemInstructionParts(overrides, env, defaults),
		SafetySettings:         cloneSafetySettings(safety),
		GenerationConfig:       defaults.GenerationConfig.Clone(),
	}

	applyGenerationEnv(&cfg.GenerationConfig, env)
	applyGenerationOverrides(&cfg.GenerationConfig, overrides.GenerationConfig)

	return cfg
}

// BuildConfig resolves overrides against the compiled-in defaults and the
// current process environment.
func BuildConfig(overrides Overrides) *ResolvedConfig {
	return Resolve(builtin, overrides, OSEnv())
}

func resolveString(override string, env Env, envKey, fallback string) string {
	if v := strings.TrimSpace(override); v != "" {
		return v
	}
	if v, ok := lookupTrimmed(env, envKey); ok {
		return v
	}
	return fallback
}

func resolveSystemInstructionParts(overrides Overrides, env Env, defaults *DefaultConfig) []Part {
	var envParts, envText Instruction
	if env != nil {
		if raw, ok := env.Lookup(EnvSystemInstructionParts); ok {
			envParts = parseInstructionString(raw)
		}
		if raw, ok := env.Lookup(EnvSystemInstruction); ok {
			envText = Text(raw)
		}
	}

	candidates := []Instruction{
		overrides.SystemInstructionParts,
		overrides.SystemInstruction,
		envParts,
		envText,
		Parts(defaults.SystemInstructionParts...),
	}
	for _, candidate := range candidates {
		if parts := candidate.normalize(); parts != nil {
			return cloneParts(parts)
		}
	}

	// Only reachable with hand-built defaults lacking parts.
	return cloneParts(builtin.SystemInstructionParts)
}
