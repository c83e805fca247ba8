package plans

import (
	"math"
	"strings"
)

// Normalize folds an arbitrarily-shaped plan payload into the canonical shape:
// one entry per canonical section, object sections merged from their legacy
// synonym keys, array sections concatenated from theirs.
//
// Three storage conventions existed at different times: sections at the top
// level, under a "data" wrapper, and under a "sections" wrapper. The root view
// overlays them with "sections" winning over "data" winning over top level.
//
// Normalize is total: any non-object input, and any malformed value where an
// object or array was expected, is coerced to an empty value instead of
// failing. Normalizing an already-normalized payload returns an equal result.
func Normalize(raw any) map[string]any {
	root := rootView(asObject(raw))

	out := make(map[string]any, len(objectSectionSources)+len(arraySectionSources)+1)
	for _, key := range ObjectSectionKeys() {
		out[key] = mergeSources(root, objectSectionSources[key])
	}
	for _, key := range ArraySectionKeys() {
		out[key] = concatSources(root, arraySectionSources[key])
	}
	out[SectionMedical] = normalizeMedical(root)
	return out
}

// rootView overlays raw, raw.data, and raw.sections in increasing precedence.
func rootView(raw map[string]any) map[string]any {
	root := make(map[string]any, len(raw))
	for k, v := range raw {
		root[k] = v
	}
	if data, ok := raw["data"].(map[string]any); ok {
		for k, v := range data {
			root[k] = v
		}
	}
	if sections, ok := raw["sections"].(map[string]any); ok {
		for k, v := range sections {
			root[k] = v
		}
	}
	return root
}

// mergeSources shallow-merges the object values found under the source keys,
// in order: a key collision is won by the later source.
func mergeSources(root map[string]any, sources []string) map[string]any {
	merged := map[string]any{}
	for _, source := range sources {
		value, ok := root[source]
		if !ok {
			continue
		}
		for k, v := range asObject(value) {
			merged[k] = v
		}
	}
	return merged
}

// concatSources concatenates every source array, preserving duplicates across
// legacy keys and dropping falsy entries.
func concatSources(root map[string]any, sources []string) []any {
	out := []any{}
	for _, source := range sources {
		for _, item := range asArray(root[source]) {
			if isFalsy(item) {
				continue
			}
			out = append(out, item)
		}
	}
	return out
}

// isFalsy reports whether a decoded JSON value is null, false, "", or 0.
func isFalsy(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case bool:
		return !v
	case string:
		return v == ""
	case float64:
		return v == 0
	case int:
		return v == 0
	case int64:
		return v == 0
	default:
		return false
	}
}

// normalizeMedical merges the healthcare synonym keys, then assembles the
// nested care_preferences sub-object from its own synonym set. The nested
// object survives renormalization through the "medical" source itself.
func normalizeMedical(root map[string]any) map[string]any {
	medical := mergeSources(root, medicalSources)

	found := false
	care := map[string]any{}
	if existing, ok := medical["care_preferences"].(map[string]any); ok {
		for k, v := range existing {
			care[k] = v
		}
	}
	for _, source := range carePreferenceSources {
		value, ok := root[source]
		if !ok {
			continue
		}
		found = true
		for k, v := range asObject(value) {
			care[k] = v
		}
	}
	if found || len(care) > 0 {
		medical["care_preferences"] = care
	}
	return medical
}

// HasMeaningfulData reports whether a value counts as real user input. An
// explicit false is treated as an untouched toggle, not entered data. Strings
// must be non-blank after trimming; arrays and objects must contain at least
// one meaningful element, at any depth.
func HasMeaningfulData(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return strings.TrimSpace(v) != ""
	case float64:
		return !math.IsNaN(v)
	case float32:
		return !math.IsNaN(float64(v))
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return true
	case []any:
		for _, item := range v {
			if HasMeaningfulData(item) {
				return true
			}
		}
		return false
	case map[string]any:
		for _, item := range v {
			if HasMeaningfulData(item) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func asObject(value any) map[string]any {
	if m, ok := value.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}

func asArray(value any) []any {
	if a, ok := value.([]any); ok {
		return a
	}
	return nil
}
