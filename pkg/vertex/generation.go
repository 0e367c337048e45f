package vertex

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"google.golang.org/genai"
)

// GenerationConfig holds the sampling and length parameters sent with every
// request. Nil fields are left to the provider's defaults.
type GenerationConfig struct {
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty" koanf:"maxoutputtokens"`
	Temperature     *float64 `json:"temperature,omitempty" koanf:"temperature"`
	TopP            *float64 `json:"topP,omitempty" koanf:"topp"`
	TopK            *int     `json:"topK,omitempty" koanf:"topk"`
}

// Clone returns a copy that shares no pointers with g.
func (g GenerationConfig) Clone() GenerationConfig {
	return GenerationConfig{
		MaxOutputTokens: clonePtr(g.MaxOutputTokens),
		Temperature:     clonePtr(g.Temperature),
		TopP:            clonePtr(g.TopP),
		TopK:            clonePtr(g.TopK),
	}
}

func (g GenerationConfig) finite() bool {
	for _, v := range []*float64{g.Temperature, g.TopP} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return false
		}
	}
	return true
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// generationParam describes one recognized generation key.
type generationParam struct {
	key     string
	envKey  string
	integer bool
	set     func(g *GenerationConfig, v float64)
}

var generationParams = []generationParam{
	{
		key:     "maxOutputTokens",
		envKey:  EnvMaxOutputTokens,
		integer: true,
		set:     func(g *GenerationConfig, v float64) { n := int(v); g.MaxOutputTokens = &n },
	},
	{
		key:    "temperature",
		envKey: EnvTemperature,
		set:    func(g *GenerationConfig, v float64) { g.Temperature = &v },
	},
	{
		key:    "topP",
		envKey: EnvTopP,
		set:    func(g *GenerationConfig, v float64) { g.TopP = &v },
	},
	{
		key:     "topK",
		envKey:  EnvTopK,
		integer: true,
		set:     func(g *GenerationConfig, v float64) { n := int(v); g.TopK = &n },
	},
}

func applyGenerationEnv(g *GenerationConfig, env Env) {
	if env == nil {
		return
	}
	for _, p := range generationParams {
		raw, ok := env.Lookup(p.envKey)
		if !ok {
			continue
		}
		if v, ok := parseNumeric(raw, p.integer); ok {
			p.set(g, v)
		}
	}
}

// applyGenerationOverrides copies the recognized keys of overrides into g.
// Unknown keys and values that don't parse to a finite number are ignored.
func applyGenerationOverrides(g *GenerationConfig, overrides map[string]any) {
	for _, p := range generationParams {
		raw, ok := overrides[p.key]
		if !ok {
			continue
		}
		if v, ok := parseNumeric(raw, p.integer); ok {
			p.set(g, v)
		}
	}
}

// parseNumeric converts numbers and numeric strings to a finite float64,
// truncating toward zero when integer is set. Integers must fit in 32 bits,
// the width the provider accepts.
func parseNumeric(value any, integer bool) (float64, bool) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int8:
		f = float64(v)
	case int16:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case uint:
		f = float64(v)
	case uint8:
		f = float64(v)
	case uint16:
		f = float64(v)
	case uint32:
		f = float64(v)
	case uint64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		parsed, ok := parseNumberString(s)
		if !ok {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if integer {
		f = math.Trunc(f)
		if f > math.MaxInt32 || f < math.MinInt32 {
			return 0, false
		}
	}
	return f, true
}

// parseNumberString accepts decimal numbers and unsigned 0x, 0o and 0b
// integer literals.
func parseNumberString(s string) (float64, bool) {
	if len(s) > 2 && s[0] == '0' && strings.ContainsRune("xXoObB", rune(s[1])) {
		if strings.Contains(s, "_") {
			return 0, false
		}
		n, err := strconv.ParseUint(s, 0, 64)
		if err != nil {
			return 0, false
		}
		return float64(n), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// toGenai converts to the SDK's request config. TopK travels as a
// float on the wire.
func (g GenerationConfig) toGenai() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{}
	if g.MaxOutputTokens != nil {
		cfg.MaxOutputTokens = int32(*g.MaxOutputTokens)
	}
	if g.Temperature != nil {
		cfg.Temperature = genai.Ptr(float32(*g.Temperature))
	}
	if g.TopP != nil {
		cfg.TopP = genai.Ptr(float32(*g.TopP))
	}
	if g.TopK != nil {
		cfg.TopK = genai.Ptr(float32(*g.TopK))
	}
	return cfg
}
