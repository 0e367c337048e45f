package vertex

import (
	"strings"

	"github.com/iancoleman/strcase"
	"google.golang.org/genai"
)

// SafetySetting is a harm category / block threshold pair.
type SafetySetting struct {
	Category  genai.HarmCategory       `json:"category" koanf:"category" validate:"required"`
	Threshold genai.HarmBlockThreshold `json:"threshold" koanf:"threshold" validate:"required"`
}

const (
	harmCategoryPrefix  = "HARM_CATEGORY_"
	harmThresholdPrefix = "HARM_BLOCK_THRESHOLD_"
)

// Symbolic names accepted for harm categories, keyed by their short form.
var harmCategoryNames = map[string]genai.HarmCategory{
	"UNSPECIFIED":       genai.HarmCategoryUnspecified,
	"HATE_SPEECH":       genai.HarmCategoryHateSpeech,
	"DANGEROUS_CONTENT": genai.HarmCategoryDangerousContent,
	"HARASSMENT":        genai.HarmCategoryHarassment,
	"SEXUALLY_EXPLICIT": genai.HarmCategorySexuallyExplicit,
	"CIVIC_INTEGRITY":   genai.HarmCategoryCivicIntegrity,
}

// Symbolic names accepted for block thresholds, keyed by their short form.
var harmThresholdNames = map[string]genai.HarmBlockThreshold{
	"UNSPECIFIED":      genai.HarmBlockThresholdUnspecified,
	"LOW_AND_ABOVE":    genai.HarmBlockThresholdBlockLowAndAbove,
	"MEDIUM_AND_ABOVE": genai.HarmBlockThresholdBlockMediumAndAbove,
	"ONLY_HIGH":        genai.HarmBlockThresholdBlockOnlyHigh,
	"NONE":             genai.HarmBlockThresholdBlockNone,
	"OFF":              genai.HarmBlockThresholdOff,
}

// ResolveHarmCategory maps a category given either as an API value
// ("HARM_CATEGORY_HARASSMENT") or as a symbolic name ("HARASSMENT",
// "hateSpeech", "HarmCategoryDangerousContent") to the API value.
// Unrecognized values are returned unchanged so the provider can judge them.
func ResolveHarmCategory(v genai.HarmCategory) genai.HarmCategory {
	return resolveEnum(v, harmCategoryPrefix, harmCategoryNames)
}

// ResolveHarmBlockThreshold is the threshold counterpart of
// ResolveHarmCategory.
func ResolveHarmBlockThreshold(v genai.HarmBlockThreshold) genai.HarmBlockThreshold {
	return resolveEnum(v, harmThresholdPrefix, harmThresholdNames)
}

func resolveEnum[T ~string](value T, prefix string, names map[string]T) T {
	if value == "" {
		return value
	}
	if isEnumValue(value, names) {
		return value
	}
	if resolved, ok := names[string(value)]; ok {
		return resolved
	}

	key := strcase.ToScreamingSnake(strings.TrimSpace(string(value)))
	for _, candidate := range []string{key, strings.TrimPrefix(key, prefix)} {
		if isEnumValue(T(candidate), names) {
			return T(candidate)
		}
		if resolved, ok := names[candidate]; ok {
			return resolved
		}
	}

	return value
}

func isEnumValue[T ~string](value T, names map[string]T) bool {
	for _, v := range names {
		if v == value {
			return true
		}
	}
	return false
}

// cloneSafetySettings copies settings into a new slice, resolving symbolic
// enum names on the way.
func cloneSafetySettings(settings []SafetySetting) []SafetySetting {
	out := make([]SafetySetting, len(settings))
	for i, s := range settings {
		out[i] = SafetySetting{
			Category:  ResolveHarmCategory(s.Category),
			Threshold: ResolveHarmBlockThreshold(s.Threshold),
		}
	}
	return out
}

func toGenaiSafetySettings(settings []SafetySetting) []*genai.SafetySetting {
	if len(settings) == 0 {
		return nil
	}
	out := make([]*genai.SafetySetting, len(settings))
	for i, s := range settings {
		out[i] = &genai.SafetySetting{
			Category:  s.Category,
			Threshold: s.Threshold,
		}
	}
	return out
}
