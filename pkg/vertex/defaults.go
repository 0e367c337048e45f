package vertex

import (
	_ "embed"
	"fmt"

	"github.com/go-playground/validator"
	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
)

//go:embed defaults.yaml
var defaultsAsset []byte

// DefaultConfig is the compiled-in configuration every resolution falls back
// to.
type DefaultConfig struct {
	Project                string           `koanf:"project" validate:"required"`
	Location               string           `koanf:"location" validate:"required"`
	Model                  string           `koanf:"model" validate:"required"`
	SystemInstructionParts []Part           `koanf:"systeminstructionparts" validate:"required,min=1,dive"`
	GenerationConfig       GenerationConfig `koanf:"generationconfig"`
	SafetySettings         []SafetySetting  `koanf:"safetysettings" validate:"dive"`
}

// builtin is loaded once and never mutated. Everything handed out of the
// package is a copy.
var builtin = mustLoadDefaults(defaultsAsset)

func mustLoadDefaults(raw []byte) *DefaultConfig {
	d, err := LoadDefaults(raw)
	if err != nil {
		panic(err)
	}
	return d
}

// LoadDefaults parses a YAML default-configuration document. Symbolic safety
// enum names are resolved to API values.
func LoadDefaults(raw []byte) (*DefaultConfig, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("parsing default configuration: %w", err)
	}

	var d DefaultConfig
	if err := k.Unmarshal("", &d); err != nil {
		return nil, fmt.Errorf("decoding default configuration: %w", err)
	}

	if err := validator.New().Struct(&d); err != nil {
		return nil, fmt.Errorf("validating default configuration: %w", err)
	}
	if !d.GenerationConfig.finite() {
		return nil, fmt.Errorf("validating default configuration: generation parameters must be finite")
	}

	d.SafetySettings = cloneSafetySettings(d.SafetySettings)
	return &d, nil
}

// Defaults returns a copy of the compiled-in configuration.
func Defaults() *DefaultConfig {
	return builtin.Clone()
}

// Clone returns a deep copy of d.
func (d *DefaultConfig) Clone() *DefaultConfig {
	return &DefaultConfig{
		Project:                d.Project,
		Location:               d.Location,
		Model:                  d.Model,
		SystemInstructionParts: cloneParts(d.SystemInstructionParts),
		GenerationConfig:       d.GenerationConfig.Clone(),
		SafetySettings:         cloneSafetySettings(d.SafetySettings),
	}
}
