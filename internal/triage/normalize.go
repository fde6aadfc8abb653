package triage

import "strings"

// alwaysListKeys never have their single-element arrays collapsed: a
// one-item diet list is still a list to the renderer.
var alwaysListKeys = map[string]struct{}{
	"diet":             {},
	"yoga":             {},
	"exercise":         {},
	"lifestyleChanges": {},
	"herbalTreatments": {},
	"homeRemedies":     {},
}

// Normalize reduces an arbitrarily wrapped workflow payload to a flat
// key-value mapping. The upstream engine wraps results inconsistently:
// singleton arrays, {json: ...}, {body: ...}, {data: ...} envelopes, and
// keys with stray whitespace all occur in practice. Normalize is total;
// malformed input yields an empty mapping, never an error.
func Normalize(raw any) map[string]any {
	switch v := raw.(type) {
	case []any:
		if len(v) == 0 {
			return map[string]any{}
		}
		// Only the first element carries the result; the rest is noise.
		return Normalize(v[0])
	case map[string]any:
		if inner, ok := unwrapField(v, "json"); ok {
			return Normalize(inner)
		}
		if inner, ok := unwrapField(v, "body"); ok {
			return Normalize(inner)
		}
		// A "data" envelope is only unwrapped when the object does not
		// already carry domain keys, so a legitimate field literally
		// named "data" survives.
		if _, hasDiet := v["diet"]; !hasDiet {
			if _, hasDiagnosis := v["diagnosis"]; !hasDiagnosis {
				if inner, ok := unwrapField(v, "data"); ok {
					return Normalize(inner)
				}
			}
		}
		cleaned := make(map[string]any, len(v))
		for key, value := range v {
			cleanKey := strings.TrimSpace(key)
			if arr, ok := value.([]any); ok {
				if len(arr) == 1 {
					if s, ok := arr[0].(string); ok {
						if _, reserved := alwaysListKeys[cleanKey]; !reserved {
							value = s
						}
					}
				}
			}
			cleaned[cleanKey] = value
		}
		return cleaned
	default:
		return map[string]any{}
	}
}

func unwrapField(obj map[string]any, key string) (any, bool) {
	inner, ok := obj[key]
	if !ok || inner == nil {
		return nil, false
	}
	return inner, true
}
