package plans

import "testing"

func TestSectionCompletionEmptyPlan(t *testing.T) {
	out := SectionCompletion(Plan{})
	if len(out) != len(CompletionSections) {
		t.Fatalf("expected %d sections, got %d", len(CompletionSections), len(out))
	}
	for section, done := range out {
		if done {
			t.Fatalf("expected section %q incomplete for empty plan", section)
		}
	}
}

func TestSectionCompletionPersonalFromProfile(t *testing.T) {
	plan := Plan{Profile: Profile{FullName: "Ana Flores"}}
	out := SectionCompletion(plan)
	if !out["personal"] {
		t.Fatalf("expected personal complete from profile column alone")
	}
}

func TestSectionCompletionFuneralDisjuncts(t *testing.T) {
	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"notes key", map[string]any{"funeral_wishes_notes": "cremation please"}},
		{"raw funeral object", map[string]any{"funeral": map[string]any{"service_type": "memorial"}}},
		{"normalized wishes", map[string]any{"wishes": map[string]any{"disposition": "burial"}}},
		{"legacy synonym", map[string]any{"service_preferences": map[string]any{"music": "jazz"}}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out := SectionCompletion(Plan{Payload: tc.payload})
			if !out["funeral"] {
				t.Fatalf("expected funeral complete via %s", tc.name)
			}
		})
	}
}

func TestSectionCompletionUnsureIsNotProgress(t *testing.T) {
	plan := Plan{Payload: map[string]any{
		"funeral": map[string]any{"service_type": "unsure"},
	}}
	out := SectionCompletion(plan)
	if out["funeral"] {
		t.Fatalf("expected 'unsure' placeholder to not count as progress")
	}

	plan = Plan{Payload: map[string]any{
		"funeral": map[string]any{"service_type": "Unsure "},
	}}
	if SectionCompletion(plan)["funeral"] {
		t.Fatalf("expected case-insensitive 'unsure' rejection")
	}
}

func TestSectionCompletionFalseToggleIsNotProgress(t *testing.T) {
	plan := Plan{Payload: map[string]any{
		"advance_directive": map[string]any{"has_directive": false},
	}}
	out := SectionCompletion(plan)
	if out["advancedirective"] {
		t.Fatalf("expected untouched false toggle to not count as progress")
	}

	plan = Plan{Payload: map[string]any{
		"advance_directive": map[string]any{"has_directive": true},
	}}
	if !SectionCompletion(plan)["advancedirective"] {
		t.Fatalf("expected true toggle to count as progress")
	}
}

func TestSectionCompletionArraySections(t *testing.T) {
	plan := Plan{Payload: map[string]any{
		"emergency_contacts": []any{map[string]any{"name": "Ben"}},
		"pet_info":           []any{map[string]any{"name": "Rex"}},
		"letters":            []any{map[string]any{"to": "family"}},
	}}
	out := SectionCompletion(plan)
	for _, section := range []string{"contacts", "pets", "messages"} {
		if !out[section] {
			t.Fatalf("expected %q complete via legacy array key", section)
		}
	}
}

func TestSectionCompletionCarePreferencesNested(t *testing.T) {
	plan := Plan{Payload: map[string]any{
		"care_preferences": map[string]any{"setting": "home"},
	}}
	out := SectionCompletion(plan)
	if !out["carepreferences"] {
		t.Fatalf("expected carepreferences complete via nested data")
	}
	if !out["healthcare"] {
		t.Fatalf("expected healthcare complete since care preferences nest under medical")
	}
}

func TestSectionCompletionIndependentSections(t *testing.T) {
	plan := Plan{Payload: map[string]any{
		"digital_assets": map[string]any{"password_manager": "1password"},
	}}
	out := SectionCompletion(plan)
	if !out["digital"] {
		t.Fatalf("expected digital complete")
	}
	for _, section := range []string{"personal", "funeral", "travel", "insurance"} {
		if out[section] {
			t.Fatalf("expected %q unaffected by digital data", section)
		}
	}
}
