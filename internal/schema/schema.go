// Package schema normalizes raw LLM output against static default tables.
//
// Every pass of the extraction pipeline has a fixed set of required fields
// with typed defaults. Normalization guarantees the contract callers rely
// on: a returned record always carries the full key set of its schema, with
// typed empty defaults standing in for anything the model failed to produce.
package schema

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"job-assistant/internal/domain"
)

//go:embed defaults.yaml
var defaultsFS embed.FS

// Schema is one record kind's required field set with per-field defaults.
type Schema struct {
	Kind     domain.RecordKind
	defaults domain.Record
}

var tables map[domain.RecordKind]domain.Record

func init() {
	raw, err := defaultsFS.ReadFile("defaults.yaml")
	if err != nil {
		panic(fmt.Sprintf("schema: read defaults: %v", err))
	}
	var decoded map[domain.RecordKind]domain.Record
	if err := yaml.Unmarshal(raw, &decoded); err != nil {
		panic(fmt.Sprintf("schema: parse defaults: %v", err))
	}
	// Canonicalize through JSON so defaults use the same value types
	// (float64 numbers, map[string]any) as parsed LLM responses. Keeps
	// normalization idempotent.
	buf, err := json.Marshal(decoded)
	if err != nil {
		panic(fmt.Sprintf("schema: canonicalize defaults: %v", err))
	}
	if err := json.Unmarshal(buf, &tables); err != nil {
		panic(fmt.Sprintf("schema: canonicalize defaults: %v", err))
	}
}

// For returns the schema for the given record kind.
func For(kind domain.RecordKind) Schema {
	d, ok := tables[kind]
	if !ok {
		panic(fmt.Sprintf("schema: unknown kind %q", kind))
	}
	return Schema{Kind: kind, defaults: d}
}

// Defaults returns a deep copy of the schema's full default record.
func (s Schema) Defaults() domain.Record {
	return deepCopyMap(s.defaults)
}

// Keys returns the schema's required field names.
func (s Schema) Keys() []string {
	keys := make([]string, 0, len(s.defaults))
	for k := range s.defaults {
		keys = append(keys, k)
	}
	return keys
}

// UnionDefaults returns one record holding the defaults of all given kinds.
// Pass schemas are disjoint by construction, so ordering does not matter.
func UnionDefaults(kinds ...domain.RecordKind) domain.Record {
	out := domain.Record{}
	for _, k := range kinds {
		MergeInto(out, For(k).Defaults())
	}
	return out
}

// MergeInto copies src's fields into dst, later writes winning on collision.
func MergeInto(dst, src domain.Record) {
	for k, v := range src {
		dst[k] = v
	}
}

// Normalize extracts the JSON object embedded in raw and conforms it to the
// schema. On success the returned record contains every schema key, with
// parsed values preserved, container types coerced, and absent keys at
// their defaults. When raw holds no parseable object it returns
// domain.ErrExtractionFailed; the caller substitutes the full default
// record rather than propagating a partial one.
func Normalize(raw string, s Schema) (domain.Record, error) {
	body, ok := sliceJSONObject(raw)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in response", domain.ErrExtractionFailed)
	}
	var parsed domain.Record
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrExtractionFailed, err)
	}
	conform(parsed, s.defaults)
	return parsed, nil
}

// sliceJSONObject strips code-fence markers and slices from the first '{'
// to the last '}'. Returns false when either brace is absent.
func sliceJSONObject(raw string) (string, bool) {
	raw = strings.ReplaceAll(raw, "```json", "")
	raw = strings.ReplaceAll(raw, "```", "")
	raw = strings.TrimSpace(raw)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return raw[start : end+1], true
}

// conform fills missing keys with defaults and coerces container-type
// mismatches in place. Keys the model added beyond the schema are kept.
func conform(rec domain.Record, defaults domain.Record) {
	for key, def := range defaults {
		val, present := rec[key]
		if !present || val == nil {
			rec[key] = deepCopyValue(def)
			continue
		}
		switch d := def.(type) {
		case []any:
			if _, isList := val.([]any); !isList {
				// scalar or mapping where a sequence belongs: wrap it
				rec[key] = []any{val}
			}
		case map[string]any:
			sub, isMap := val.(map[string]any)
			if !isMap {
				// nonsensical coercion: reset to default
				rec[key] = deepCopyMap(d)
				continue
			}
			conform(sub, d)
		}
	}
}

func deepCopyMap(m domain.Record) domain.Record {
	out := make(domain.Record, len(m))
	for k, v := range m {
		out[k] = deepCopyValue(v)
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return deepCopyMap(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = deepCopyValue(e)
		}
		return out
	default:
		return v
	}
}
