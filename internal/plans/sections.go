package plans

// Canonical payload section keys. Every normalized payload has exactly one
// entry per key in this list.
const (
	SectionAbout            = "about"
	SectionContacts         = "contacts"
	SectionWishes           = "wishes"
	SectionInsurance        = "insurance"
	SectionFinancial        = "financial"
	SectionProperty         = "property"
	SectionPets             = "pets"
	SectionDigital          = "digital"
	SectionMessages         = "messages"
	SectionMedical          = "medical"
	SectionAdvanceDirective = "advance_directive"
	SectionTravel           = "travel"
	SectionLegacy           = "legacy"
	SectionNotes            = "notes"
)

// objectSectionSources maps each object-valued canonical section to the legacy
// keys it is merged from, in increasing precedence (the last listed key wins on
// collision). Each list ends with a key that survives normalization so that
// normalizing twice is a no-op. This table is the single source of truth for
// legacy key aliasing; SectionPayloadKey derives from it as well.
var objectSectionSources = map[string][]string{
	SectionAbout:            {"personal", "about_you", "personal_information", SectionAbout, "personal_profile"},
	SectionWishes:           {"funeral", "funeral_wishes", "service_preferences", SectionWishes},
	SectionInsurance:        {"insurance_info", "policies_info", SectionInsurance},
	SectionFinancial:        {"finances", "bank_info", SectionFinancial},
	SectionProperty:         {"assets", "property_info", SectionProperty},
	SectionDigital:          {"digital_assets", "online_accounts", SectionDigital},
	SectionAdvanceDirective: {"advance_care", "advance_directives", SectionAdvanceDirective},
	SectionTravel:           {"travel_wishes", "travel_plans", SectionTravel},
	SectionLegacy:           {"legacy_wishes", "obituary", SectionLegacy},
	SectionNotes:            {"general_notes", "final_notes", SectionNotes},
}

// arraySectionSources maps each array-valued canonical section to its legacy
// source keys. Sources are concatenated in order; duplicates across legacy keys
// are intentionally preserved (users dedupe manually).
var arraySectionSources = map[string][]string{
	SectionContacts: {"emergency_contacts", "key_contacts", SectionContacts},
	SectionPets:     {"pet_info", "animals", SectionPets},
	SectionMessages: {"letters", "farewell_messages", SectionMessages},
}

// medical is object-valued but carries a nested care_preferences sub-object
// assembled from its own synonym set.
var (
	medicalSources        = []string{"healthcare", "medical_info", "health_profile", SectionMedical}
	carePreferenceSources = []string{"care_prefs", "carepreferences", "care_preferences"}
)

// uiSectionAliases converts a UI-facing section identifier into the payload key
// targeted by the section-clear feature. UI identifiers that already equal a
// payload key pass through via the SectionPayloadKey fallback.
var uiSectionAliases = map[string]string{
	"personal":          SectionAbout,
	"about-you":         SectionAbout,
	"healthcare":        SectionMedical,
	"carepreferences":   "care_preferences",
	"care-preferences":  "care_preferences",
	"advancedirective":  SectionAdvanceDirective,
	"advance-directive": SectionAdvanceDirective,
	"funeral":           SectionWishes,
	"preplanning":       SectionNotes,
}

// SectionPayloadKey resolves a UI section identifier to the payload key used
// for clearing. Unrecognized identifiers are returned unchanged.
func SectionPayloadKey(uiSectionID string) string {
	if key, ok := uiSectionAliases[uiSectionID]; ok {
		return key
	}
	return uiSectionID
}

// EmptySectionPayload returns the well-formed "nothing entered yet" value for a
// payload key. Downstream readers rely on the named sub-keys existing even when
// null, so each known section has a fixed shape. Every call returns a fresh
// value; callers may mutate the result freely.
func EmptySectionPayload(sectionKey string) any {
	switch sectionKey {
	case "address":
		return map[string]any{
			"line1":          nil,
			"line2":          nil,
			"city":           nil,
			"state":          nil,
			"postal_code":    nil,
			"country":        nil,
			"residence_type": nil,
			"ownership":      nil,
			"last_updated":   nil,
		}
	case "revisions", "signature":
		return []any{}
	case SectionContacts, SectionPets, SectionMessages:
		return []any{}
	case SectionAbout:
		return map[string]any{
			"full_name":      nil,
			"preferred_name": nil,
			"date_of_birth":  nil,
			"phone":          nil,
			"email":          nil,
			"last_updated":   nil,
		}
	case SectionWishes:
		return map[string]any{
			"service_type": nil,
			"disposition":  nil,
			"location":     nil,
			"officiant":    nil,
			"music":        nil,
			"readings":     nil,
			"notes":        nil,
			"last_updated": nil,
		}
	case SectionMedical:
		return map[string]any{
			"physician":        nil,
			"conditions":       nil,
			"medications":      nil,
			"allergies":        nil,
			"care_preferences": map[string]any{},
			"last_updated":     nil,
		}
	case "care_preferences":
		return map[string]any{
			"setting":      nil,
			"comfort":      nil,
			"visitors":     nil,
			"spiritual":    nil,
			"last_updated": nil,
		}
	case SectionAdvanceDirective:
		return map[string]any{
			"has_directive":     nil,
			"document_location": nil,
			"healthcare_proxy":  nil,
			"notes":             nil,
			"last_updated":      nil,
		}
	case SectionInsurance:
		return map[string]any{
			"provider":     nil,
			"policy_count": nil,
			"agent":        nil,
			"notes":        nil,
			"last_updated": nil,
		}
	case SectionFinancial:
		return map[string]any{
			"institutions": nil,
			"advisor":      nil,
			"notes":        nil,
			"last_updated": nil,
		}
	case SectionProperty:
		return map[string]any{
			"primary_residence": nil,
			"vehicles":          nil,
			"notes":             nil,
			"last_updated":      nil,
		}
	case SectionDigital:
		return map[string]any{
			"password_manager": nil,
			"accounts":         nil,
			"notes":            nil,
			"last_updated":     nil,
		}
	case SectionTravel:
		return map[string]any{
			"repatriation": nil,
			"notes":        nil,
			"last_updated": nil,
		}
	case SectionLegacy:
		return map[string]any{
			"obituary_wishes": nil,
			"charities":       nil,
			"notes":           nil,
			"last_updated":    nil,
		}
	default:
		return map[string]any{"last_updated": nil}
	}
}

// ObjectSectionKeys returns the object-valued canonical section keys in a
// stable order.
func ObjectSectionKeys() []string {
	return []string{
		SectionAbout,
		SectionWishes,
		SectionInsurance,
		SectionFinancial,
		SectionProperty,
		SectionDigital,
		SectionAdvanceDirective,
		SectionTravel,
		SectionLegacy,
		SectionNotes,
	}
}

// ArraySectionKeys returns the array-valued canonical section keys in a stable
// order.
func ArraySectionKeys() []string {
	return []string{SectionContacts, SectionPets, SectionMessages}
}
