package plans

import "strings"

// CompletionSections lists the UI progress sections in display order.
var CompletionSections = []string{
	"personal",
	"contacts",
	"healthcare",
	"carepreferences",
	"advancedirective",
	"travel",
	"funeral",
	"insurance",
	"property",
	"pets",
	"messages",
	"digital",
	"preplanning",
}

// SectionCompletion derives a per-section "has meaningful data" flag from a
// plan record. Payload keys are not fully reliable, so each section ORs
// several independent signals: denormalized profile columns, known raw payload
// keys (legacy writers), and a generic check over the normalized section. The
// policy is maximally permissive on purpose: under-reporting progress confuses
// users more than over-reporting it, so every disjunct below is load-bearing.
func SectionCompletion(plan Plan) map[string]bool {
	payload := plan.Payload
	if payload == nil {
		payload = map[string]any{}
	}
	norm := Normalize(payload)

	out := make(map[string]bool, len(CompletionSections))

	out["personal"] = strings.TrimSpace(plan.Profile.FullName) != "" ||
		textAt(payload, "personal", "full_name") ||
		textAt(payload, "about_you", "full_name") ||
		sectionHasData(norm, SectionAbout)

	out["contacts"] = arrayLen(norm[SectionContacts]) > 0 ||
		arrayAt(payload, "emergency_contacts") ||
		textAt(payload, "contacts_notes") ||
		sectionHasData(norm, SectionContacts)

	out["healthcare"] = textAt(payload, "healthcare_notes") ||
		strictMeaningful(payload["healthcare"]) ||
		strictMeaningful(payload["medical_info"]) ||
		sectionHasData(norm, SectionMedical)

	out["carepreferences"] = textAt(payload, "care_preferences_notes") ||
		strictMeaningful(payload["care_preferences"]) ||
		strictMeaningful(objectAt(norm, SectionMedical)["care_preferences"])

	out["advancedirective"] = textAt(payload, "advance_directive_notes") ||
		strictMeaningful(payload["advance_care"]) ||
		strictMeaningful(payload["advance_directive"]) ||
		sectionHasData(norm, SectionAdvanceDirective)

	out["travel"] = textAt(payload, "travel_notes") ||
		strictMeaningful(payload["travel_wishes"]) ||
		sectionHasData(norm, SectionTravel)

	out["funeral"] = textAt(payload, "funeral_wishes_notes") ||
		strictMeaningful(payload["funeral"]) ||
		sectionHasData(norm, SectionWishes)

	out["insurance"] = arrayAt(payload, "policies") ||
		textAt(payload, "insurance_notes") ||
		strictMeaningful(payload["insurance_info"]) ||
		sectionHasData(norm, SectionInsurance)

	out["property"] = arrayAt(payload, "assets_list") ||
		textAt(payload, "property_notes") ||
		strictMeaningful(payload["assets"]) ||
		sectionHasData(norm, SectionProperty)

	out["pets"] = arrayLen(norm[SectionPets]) > 0 ||
		arrayAt(payload, "pet_info") ||
		textAt(payload, "pet_notes")

	out["messages"] = arrayLen(norm[SectionMessages]) > 0 ||
		arrayAt(payload, "letters") ||
		textAt(payload, "messages_notes")

	out["digital"] = textAt(payload, "digital_notes") ||
		strictMeaningful(payload["digital_assets"]) ||
		sectionHasData(norm, SectionDigital)

	out["preplanning"] = textAt(payload, "preplanning_notes") ||
		strictMeaningful(payload["preplanning"]) ||
		sectionHasData(norm, SectionNotes)

	return out
}

// sectionHasData is the generic fallback: any strictly meaningful value
// anywhere inside the normalized section.
func sectionHasData(norm map[string]any, sectionKey string) bool {
	return strictMeaningful(norm[sectionKey])
}

// strictMeaningful is the completion variant of HasMeaningfulData: it
// additionally rejects the literal string "unsure" and boolean false, so a
// section is not marked complete just because the user touched a placeholder
// control. Kept separate from HasMeaningfulData on purpose; the two predicates
// serve different consumers and have diverged historically.
func strictMeaningful(value any) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		t := strings.TrimSpace(v)
		return t != "" && !strings.EqualFold(t, "unsure")
	case float64:
		return v == v // NaN is not meaningful
	case int, int64:
		return true
	case []any:
		for _, item := range v {
			if strictMeaningful(item) {
				return true
			}
		}
		return false
	case map[string]any:
		for _, item := range v {
			if strictMeaningful(item) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func textAt(payload map[string]any, path ...string) bool {
	var current any = payload
	for _, key := range path {
		m, ok := current.(map[string]any)
		if !ok {
			return false
		}
		current = m[key]
	}
	s, ok := current.(string)
	return ok && strings.TrimSpace(s) != ""
}

func arrayAt(payload map[string]any, key string) bool {
	return arrayLen(payload[key]) > 0
}

func arrayLen(value any) int {
	a, ok := value.([]any)
	if !ok {
		return 0
	}
	return len(a)
}

func objectAt(m map[string]any, key string) map[string]any {
	return asObject(m[key])
}
