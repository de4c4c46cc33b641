package prompts

import (
	"strings"
	"testing"

	"life-story-companion/internal/domain/model"
)

func newLib(t *testing.T) *Library {
	t.Helper()
	lib, err := NewLibrary(DefaultFS())
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	return lib
}

func TestGet(t *testing.T) {
	lib := newLib(t)

	base, err := lib.Get("system", "base")
	if err != nil {
		t.Fatalf("Get(system, base): %v", err)
	}
	if base == "" || strings.HasSuffix(base, "\n") {
		t.Fatalf("base prompt empty or untrimmed: %q", base)
	}

	if _, err := lib.Get("system", "nope"); err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if _, err := lib.Get("nope", "base"); err == nil {
		t.Fatalf("expected error for unknown file")
	}
}

func TestRenderInterpolation(t *testing.T) {
	lib := newLib(t)

	out, err := lib.Render("system", "with_summary", map[string]string{
		"base":    "PERSONA",
		"summary": "They grew up in Aarhus.",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(out, "PERSONA") || !strings.Contains(out, "They grew up in Aarhus.") {
		t.Fatalf("render missing variables: %q", out)
	}
	if strings.Contains(out, "{base}") || strings.Contains(out, "{summary}") {
		t.Fatalf("render left placeholders: %q", out)
	}
}

func TestSummaryInstructions(t *testing.T) {
	lib := newLib(t)
	out, err := lib.Render("summary", "instructions", map[string]string{
		"summary":         "old summary",
		"user_message":    "the user said this",
		"assistant_reply": "the companion said that",
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	for _, want := range []string{"old summary", "the user said this", "the companion said that"} {
		if !strings.Contains(out, want) {
			t.Fatalf("summary prompt missing %q", want)
		}
	}
}

func TestSafetyResponsePerCategory(t *testing.T) {
	lib := newLib(t)
	wants := map[model.SafetyCategory]string{
		model.CategoryMedical:       "healthcare professional",
		model.CategoryLegal:         "qualified lawyer",
		model.CategoryCrisis:        "70 201 201",
		model.CategoryInappropriate: "supportive companion",
	}
	for category, want := range wants {
		text, err := lib.SafetyResponse(category)
		if err != nil {
			t.Fatalf("SafetyResponse(%s): %v", category, err)
		}
		if !strings.Contains(text, want) {
			t.Fatalf("SafetyResponse(%s) missing %q: %q", category, want, text)
		}
	}

	if _, err := lib.SafetyResponse(model.SafetyCategory("gibberish")); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}
