package plan

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Plan is a best-effort structured object extracted from planner free text.
// Field access falls back to the schema default when the field is absent,
// so callers never see a missing key.
type Plan struct {
	schema   Schema
	values   map[string]any
	degraded bool
}

// Pre-compiled patterns for salvaging JSON from completion text. Planners
// routinely wrap objects in markdown fences or leave trailing commas.
var (
	fencedObjectPattern  = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(\\{.*\\})\\s*```")
	bareObjectPattern    = regexp.MustCompile(`(?s)\{[\s\S]*\}`)
	trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)
)

// Extract produces a Plan from raw completion text. It is a total function:
// any input, including garbage, yields a schema-shaped Plan.
//
// The strict pass salvages a JSON object (stripping markdown fences and
// trailing commas) and decodes it. If that fails, each schema field gets an
// individual regex pass over the raw text; fields still missing take their
// defaults at point of use.
func Extract(raw string, schema Schema) Plan {
	if values, ok := strictParse(raw); ok {
		return Plan{schema: schema, values: values}
	}
	return Plan{schema: schema, values: salvageFields(raw, schema), degraded: true}
}

func strictParse(raw string) (map[string]any, bool) {
	candidate := raw
	if m := fencedObjectPattern.FindStringSubmatch(raw); len(m) > 1 {
		candidate = m[1]
	} else if m := bareObjectPattern.FindString(raw); m != "" {
		candidate = m
	}
	candidate = trailingCommaPattern.ReplaceAllString(candidate, "$1")

	var values map[string]any
	if err := json.Unmarshal([]byte(candidate), &values); err != nil {
		return nil, false
	}
	return values, true
}

// salvageFields runs the per-field regex pass. Key match is case-sensitive.
func salvageFields(raw string, schema Schema) map[string]any {
	values := make(map[string]any, len(schema.Fields))
	for _, f := range schema.Fields {
		key := regexp.QuoteMeta(f.Name)
		switch f.Kind {
		case String:
			re := regexp.MustCompile(`"` + key + `"\s*:\s*"([^"]+)"`)
			if m := re.FindStringSubmatch(raw); len(m) > 1 {
				values[f.Name] = m[1]
			}
		case Int:
			re := regexp.MustCompile(`"` + key + `"\s*:\s*(\d+)`)
			if m := re.FindStringSubmatch(raw); len(m) > 1 {
				if n, err := strconv.Atoi(m[1]); err == nil {
					values[f.Name] = n
				}
			}
		case Bool:
			re := regexp.MustCompile(`"` + key + `"\s*:\s*(true|false)`)
			if m := re.FindStringSubmatch(raw); len(m) > 1 {
				values[f.Name] = m[1] == "true"
			} else if strings.Contains(strings.ToLower(raw), "true") {
				// Planner said yes somewhere but mangled the JSON.
				values[f.Name] = true
			}
		case Object:
			// Best-effort single-level balanced object after the quoted key.
			re := regexp.MustCompile(`"` + key + `"\s*:\s*(\{[^{}]*\})`)
			if m := re.FindStringSubmatch(raw); len(m) > 1 {
				var obj map[string]any
				if err := json.Unmarshal([]byte(trailingCommaPattern.ReplaceAllString(m[1], "$1")), &obj); err == nil {
					values[f.Name] = obj
					continue
				}
			}
			values[f.Name] = map[string]any{}
		}
	}
	return values
}

// Degraded reports whether the strict parse failed and regex salvage was
// used. Surfaced to logs only, never to the user.
func (p Plan) Degraded() bool { return p.degraded }

// Schema returns the schema this plan was extracted against.
func (p Plan) Schema() Schema { return p.schema }

// String returns the named field as a string, or the schema default when
// the field is absent or not a string. Values are not validated against any
// enumeration here; dispatch switches treat unknown values as the default
// branch.
func (p Plan) String(name string) string {
	if v, ok := p.values[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultString(p.schema, name)
}

// Bool returns the named field as a bool, or the schema default.
func (p Plan) Bool(name string) bool {
	if v, ok := p.values[name]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	f, ok := p.schema.Field(name)
	if !ok {
		return false
	}
	b, _ := f.Default.(bool)
	return b
}

// Int returns the named field as an int, or the schema default. JSON
// numbers arrive as float64 from the strict pass.
func (p Plan) Int(name string) int {
	if v, ok := p.values[name]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		}
	}
	f, ok := p.schema.Field(name)
	if !ok {
		return 0
	}
	n, _ := f.Default.(int)
	return n
}

// Object returns the named field as a nested map, or an empty map.
func (p Plan) Object(name string) map[string]any {
	if v, ok := p.values[name]; ok {
		if m, ok := v.(map[string]any); ok {
			return m
		}
	}
	return map[string]any{}
}

// Values returns the extracted fields with schema defaults filled in for
// anything missing. The result is a fresh map, safe for the caller to log
// or record as a step output.
func (p Plan) Values() map[string]any {
	out := make(map[string]any, len(p.schema.Fields))
	for _, f := range p.schema.Fields {
		switch f.Kind {
		case String:
			out[f.Name] = p.String(f.Name)
		case Bool:
			out[f.Name] = p.Bool(f.Name)
		case Int:
			out[f.Name] = p.Int(f.Name)
		case Object:
			out[f.Name] = p.Object(f.Name)
		}
	}
	return out
}

// Decode maps the plan onto a typed struct using mapstructure. The raw
// extracted values are decoded first so weak typing can absorb a planner
// quoting numbers or booleans; anything that still cannot convert falls
// back to the schema-coerced view, so decoding into a schema-shaped target
// never fails on planner noise.
func (p Plan) Decode(target any) error {
	if err := p.decodeInto(target, p.rawWithDefaults()); err == nil {
		return nil
	}
	return p.decodeInto(target, p.Values())
}

// rawWithDefaults keeps extracted values untouched and fills schema
// defaults only for missing fields.
func (p Plan) rawWithDefaults() map[string]any {
	out := make(map[string]any, len(p.schema.Fields))
	for _, f := range p.schema.Fields {
		if v, ok := p.values[f.Name]; ok {
			out[f.Name] = v
			continue
		}
		out[f.Name] = f.Default
	}
	return out
}

func (p Plan) decodeInto(target any, values map[string]any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
		TagName:          "plan",
	})
	if err != nil {
		return fmt.Errorf("plan decoder: %w", err)
	}
	if err := dec.Decode(values); err != nil {
		return fmt.Errorf("decode %s: %w", p.schema.Name, err)
	}
	return nil
}

func defaultString(s Schema, name string) string {
	f, ok := s.Field(name)
	if !ok {
		return ""
	}
	str, _ := f.Default.(string)
	return str
}
