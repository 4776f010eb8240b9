// Package jsonvalue is the reference Value Capability adapter (component
// J): a concrete, swappable implementation of pkg/value.Capability over
// tidwall/gjson (reads), tidwall/sjson (incremental container mutation),
// and tidwall/pretty (JSON serialization). It is used by the CLI and by
// the engine's own test suite; the core engine packages never import it.
package jsonvalue

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/keurnel/lattice/pkg/value"
)

// handle is the concrete Value: a JSON text fragment. Containers are
// mutated in place by Append/Set (sjson rewrites the text and the handle's
// raw field is updated), so two handles compare reference-equal exactly
// when they are the same *handle pointer — the basis for Capability.Equal's
// array/object identity comparison.
type handle struct {
	raw string
}

// Capability implements value.Capability. It carries no state; every
// operation works directly off the JSON text stored in each handle.
type Capability struct{}

// New returns a ready-to-use reference Capability.
func New() *Capability { return &Capability{} }

func h(v value.Value) *handle { return v.(*handle) }

func (c *Capability) Parse(jsonStr string) (value.Value, error) {
	if !gjson.Valid(jsonStr) {
		return nil, fmt.Errorf("jsonvalue: invalid JSON")
	}
	return &handle{raw: jsonStr}, nil
}

// Print serializes v to a compact JSON string via pretty.Ugly. The two
// non-finite-number sentinels (see NewNumber) are not valid JSON and are
// passed through verbatim — a documented limitation of this reference
// adapter, not of the core engine (see DESIGN.md).
func (c *Capability) Print(v value.Value) (string, error) {
	raw := h(v).raw
	switch raw {
	case "NaN", "Infinity", "-Infinity":
		return raw, nil
	}
	return string(pretty.Ugly([]byte(raw))), nil
}

func (c *Capability) Free(value.Value) {}

func (c *Capability) Clone(v value.Value) value.Value {
	return &handle{raw: h(v).raw}
}

func (c *Capability) NewNull() value.Value { return &handle{raw: "null"} }
func (c *Capability) NewBool(b bool) value.Value {
	if b {
		return &handle{raw: "true"}
	}
	return &handle{raw: "false"}
}

// NewNumber formats finite numbers as JSON text. NaN and +/-Inf (reachable
// through division, `**`, etc.) have no JSON representation; they are
// stored as bare sentinel tokens recognised by TypeOf/AsNumber/Print.
func (c *Capability) NewNumber(n float64) value.Value {
	switch {
	case math.IsNaN(n):
		return &handle{raw: "NaN"}
	case math.IsInf(n, 1):
		return &handle{raw: "Infinity"}
	case math.IsInf(n, -1):
		return &handle{raw: "-Infinity"}
	default:
		return &handle{raw: strconv.FormatFloat(n, 'g', -1, 64)}
	}
}

func (c *Capability) NewString(s string) value.Value {
	return &handle{raw: quoteJSON(s)}
}

func (c *Capability) NewArray() value.Value  { return &handle{raw: "[]"} }
func (c *Capability) NewObject() value.Value { return &handle{raw: "{}"} }

func (c *Capability) TypeOf(v value.Value) value.Type {
	raw := h(v).raw
	switch raw {
	case "null":
		return value.Null
	case "true", "false":
		return value.Bool
	case "NaN", "Infinity", "-Infinity":
		return value.Number
	}
	res := gjson.Parse(raw)
	switch res.Type {
	case gjson.True, gjson.False:
		return value.Bool
	case gjson.Number:
		return value.Number
	case gjson.String:
		return value.String
	case gjson.JSON:
		if res.IsArray() {
			return value.Array
		}
		return value.Object
	default:
		return value.Null
	}
}

func (c *Capability) AsBool(v value.Value) bool { return gjson.Parse(h(v).raw).Bool() }

func (c *Capability) AsNumber(v value.Value) float64 {
	switch h(v).raw {
	case "NaN":
		return math.NaN()
	case "Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	default:
		return gjson.Parse(h(v).raw).Num
	}
}

func (c *Capability) AsString(v value.Value) string { return gjson.Parse(h(v).raw).String() }

func (c *Capability) Len(v value.Value) int {
	switch c.TypeOf(v) {
	case value.String:
		return len(c.AsString(v))
	case value.Array:
		return len(gjson.Parse(h(v).raw).Array())
	case value.Object:
		return len(c.Keys(v))
	default:
		return 0
	}
}

func (c *Capability) GetIndex(v value.Value, i int) (value.Value, bool) {
	switch c.TypeOf(v) {
	case value.Array:
		arr := gjson.Parse(h(v).raw).Array()
		if i < 0 || i >= len(arr) {
			return nil, false
		}
		return &handle{raw: arr[i].Raw}, true
	case value.String:
		s := c.AsString(v)
		if i < 0 || i >= len(s) {
			return nil, false
		}
		return &handle{raw: quoteJSON(string(s[i]))}, true
	default:
		return nil, false
	}
}

func (c *Capability) GetKey(v value.Value, key string) (value.Value, bool) {
	var found *handle
	gjson.Parse(h(v).raw).ForEach(func(k, val gjson.Result) bool {
		if k.String() == key {
			found = &handle{raw: val.Raw}
			return false
		}
		return true
	})
	if found == nil {
		return nil, false
	}
	return found, true
}

func (c *Capability) Keys(v value.Value) []string {
	var keys []string
	gjson.Parse(h(v).raw).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	return keys
}

func (c *Capability) Append(array, elem value.Value) value.Value {
	ha, he := h(array), h(elem)
	newRaw, err := sjson.SetRaw(ha.raw, "-1", he.raw)
	if err != nil {
		return ha
	}
	ha.raw = newRaw
	return ha
}

func (c *Capability) Set(object value.Value, key string, val value.Value) value.Value {
	ho, hv := h(object), h(val)
	newRaw, err := sjson.SetRaw(ho.raw, escapePathKey(key), hv.raw)
	if err != nil {
		return ho
	}
	ho.raw = newRaw
	return ho
}

func (c *Capability) Equal(a, b value.Value) bool {
	ta, tb := c.TypeOf(a), c.TypeOf(b)
	if ta != tb {
		return false
	}
	switch ta {
	case value.Null:
		return true
	case value.Bool:
		return c.AsBool(a) == c.AsBool(b)
	case value.Number:
		return c.AsNumber(a) == c.AsNumber(b)
	case value.String:
		return c.AsString(a) == c.AsString(b)
	default: // Array, Object: identity only.
		return h(a) == h(b)
	}
}

func quoteJSON(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

// escapePathKey escapes gjson/sjson path metacharacters in an object key so
// that arbitrary JSON keys (which may themselves contain '.', '*', etc.)
// round-trip through sjson's dotted path syntax correctly.
func escapePathKey(key string) string {
	if !strings.ContainsAny(key, ".*?#|\\") {
		return key
	}
	var sb strings.Builder
	sb.Grow(len(key) + 4)
	for _, r := range key {
		switch r {
		case '.', '*', '?', '#', '|', '\\':
			sb.WriteByte('\\')
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
