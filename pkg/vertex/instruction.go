package vertex

import (
	"encoding/json"
	"strings"
)

// Part is a single text segment of a system instruction.
type Part struct {
	Text string `json:"text" koanf:"text" validate:"required"`
}

// Instruction holds a system instruction in any of the shapes callers may
// supply it in: a plain string, a list of parts, or an object carrying a
// `parts` list. The zero value is an absent instruction.
type Instruction struct {
	text  string
	parts []Part
}

// Text returns an Instruction holding a plain string.
func Text(s string) Instruction {
	return Instruction{text: s}
}

// Parts returns an Instruction holding a list of parts.
func Parts(parts ...Part) Instruction {
	return Instruction{parts: parts}
}

// TextParts returns an Instruction with one part per text.
func TextParts(texts ...string) Instruction {
	parts := make([]Part, 0, len(texts))
	for _, t := range texts {
		parts = append(parts, Part{Text: t})
	}
	return Instruction{parts: parts}
}

// IsZero reports whether the instruction carries neither parts nor text.
func (i Instruction) IsZero() bool {
	return len(i.parts) == 0 && i.text == ""
}

// normalize returns the parts this instruction stands for, or nil when it
// doesn't hold a usable value. A non-empty list wins over the text form; the
// text form is trimmed and wrapped as a single part.
func (i Instruction) normalize() []Part {
	if len(i.parts) > 0 {
		return i.parts
	}
	if t := strings.TrimSpace(i.text); t != "" {
		return []Part{{Text: t}}
	}
	return nil
}

// UnmarshalJSON accepts a string, an array of parts or an object with a
// `parts` array. Any other shape decodes as an absent instruction instead of
// failing, so a malformed instruction falls through to the next source.
func (i *Instruction) UnmarshalJSON(data []byte) error {
	*i = parseInstruction(data)
	return nil
}

// MarshalJSON writes the parts list when present, otherwise the text.
func (i Instruction) MarshalJSON() ([]byte, error) {
	if len(i.parts) > 0 {
		return json.Marshal(i.parts)
	}
	if i.text != "" {
		return json.Marshal(i.text)
	}
	return []byte("null"), nil
}

func parseInstruction(data []byte) Instruction {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		return Instruction{text: text}
	}

	var parts []Part
	if err := json.Unmarshal(data, &parts); err == nil {
		return Instruction{parts: parts}
	}

	var wrapped struct {
		Parts []Part `json:"parts"`
	}
	if err := json.Unmarshal(data, &wrapped); err == nil {
		return Instruction{parts: wrapped.Parts}
	}

	return Instruction{}
}

// parseInstructionString decodes a JSON document held in an environment
// variable. Blank or unparsable values are absent.
func parseInstructionString(raw string) Instruction {
	if strings.TrimSpace(raw) == "" {
		return Instruction{}
	}
	if !json.Valid([]byte(raw)) {
		return Instruction{}
	}
	return parseInstruction([]byte(raw))
}

func cloneParts(parts []Part) []Part {
	out := make([]Part, len(parts))
	copy(out, parts)
	return out
}
