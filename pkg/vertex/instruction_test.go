package vertex

import (
	"encoding/json"
	"testing"

	qt "github.com/frankban/quicktest"
)

func TestInstruction_UnmarshalJSON(t *testing.T) {
	c := qt.New(t)

	testcases := []struct {
		name string
		in   string
		want []Part
	}{
		{name: "string", in: `"  Hello.  "`, want: []Part{{Text: "Hello."}}},
		{name: "array", in: `[{"text":"a"},{"text":"b"}]`, want: []Part{{Text: "a"}, {Text: "b"}}},
		{name: "object with parts", in: `{"role":"system","parts":[{"text":"c"}]}`, want: []Part{{Text: "c"}}},
		{name: "empty array", in: `[]`},
		{name: "blank string", in: `"   "`},
		{name: "null", in: `null`},
		{name: "number", in: `42`},
		{name: "object without parts", in: `{"text":"no"}`},
		{name: "array of wrong shape", in: `[1, 2]`},
	}

	for _, tc := range testcases {
		c.Run(tc.name, func(c *qt.C) {
			var in Instruction
			c.Assert(json.Unmarshal([]byte(tc.in), &in), qt.IsNil)
			c.Assert(in.normalize(), qt.DeepEquals, tc.want)
		})
	}

	c.Run("malformed instruction doesn't fail the enclosing document", func(c *qt.C) {
		var o Overrides
		err := json.Unmarshal([]byte(`{"model":"m","systemInstructionParts":{"parts":"nope"}}`), &o)
		c.Assert(err, qt.IsNil)
		c.Assert(o.Model, qt.Equals, "m")
		c.Assert(o.SystemInstructionParts.IsZero(), qt.IsTrue)
	})
}

func TestInstruction_MarshalJSON(t *testing.T) {
	c := qt.New(t)

	raw, err := json.Marshal(TextParts("a", "b"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(raw), qt.Equals, `[{"text":"a"},{"text":"b"}]`)

	raw, err = json.Marshal(Text("plain"))
	c.Assert(err, qt.IsNil)
	c.Assert(string(raw), qt.Equals, `"plain"`)

	raw, err = json.Marshal(Overrides{Model: "m"})
	c.Assert(err, qt.IsNil)
	c.Assert(string(raw), qt.Equals, `{"model":"m"}`)
}

func TestParseInstructionString(t *testing.T) {
	c := qt.New(t)

	c.Assert(parseInstructionString("").IsZero(), qt.IsTrue)
	c.Assert(parseInstructionString("plain text, not JSON").IsZero(), qt.IsTrue)
	c.Assert(parseInstructionString(`[{"text":"x"}]`).normalize(), qt.DeepEquals, []Part{{Text: "x"}})
}
