package language

import "testing"

func TestResolveRegisteredLabels(t *testing.T) {
	tests := []struct {
		label string
		want  Codes
	}{
		{"English", Codes{"en-IN", "en", "en-IN"}},
		{"Hindi (हिन्दी)", Codes{"hi-IN", "hi", "hi-IN"}},
		{"Kannada (ಕನ್ನಡ)", Codes{"kn-IN", "kn", "kn-IN"}},
		{"Tamil (தமிழ்)", Codes{"ta-IN", "ta", "ta-IN"}},
		{"Telugu (తెలుగు)", Codes{"te-IN", "te", "te-IN"}},
		{"Malayalam (മലയാളം)", Codes{"ml-IN", "ml", "ml-IN"}},
		{"Bengali (বাংলা)", Codes{"bn-IN", "bn", "bn-IN"}},
		{"Gujarati (ગુજરાતી)", Codes{"gu-IN", "gu", "gu-IN"}},
		{"Marathi (मराठी)", Codes{"mr-IN", "mr", "mr-IN"}},
		{"Urdu (اردو)", Codes{"ur-IN", "ur", "ur-IN"}},
		{"Punjabi (ਪੰਜਾਬੀ)", Codes{"pa-IN", "pa", "pa-IN"}},
	}
	for _, tt := range tests {
		got, found := Resolve(tt.label)
		if !found {
			t.Errorf("Resolve(%q): expected found", tt.label)
		}
		if got != tt.want {
			t.Errorf("Resolve(%q) = %+v, want %+v", tt.label, got, tt.want)
		}
	}
}

func TestResolvePrimaryTokenOnly(t *testing.T) {
	// The token before the first space drives the match, so a bare
	// primary name works without the native-script parenthetical.
	got, found := Resolve("Hindi")
	if !found || got.Translate != "hi" {
		t.Errorf("Resolve(\"Hindi\") = %+v found=%v, want hi triplet", got, found)
	}
}

func TestResolveUnknownFallsBackToEnglish(t *testing.T) {
	english := Codes{"en-IN", "en", "en-IN"}
	for _, label := range []string{"Klingon", "Spanish (Español)", "hindi"} {
		got, found := Resolve(label)
		if found {
			t.Errorf("Resolve(%q): expected found=false", label)
		}
		if got != english {
			t.Errorf("Resolve(%q) = %+v, want English fallback", label, got)
		}
	}
}

func TestResolveIsPure(t *testing.T) {
	a, af := Resolve("Tamil (தமிழ்)")
	b, bf := Resolve("Tamil (தமிழ்)")
	if a != b || af != bf {
		t.Errorf("Resolve not idempotent: %+v/%v vs %+v/%v", a, af, b, bf)
	}
}

func TestLabelsOrder(t *testing.T) {
	labels := Labels()
	if len(labels) != 11 {
		t.Fatalf("expected 11 registered languages, got %d", len(labels))
	}
	if labels[0] != "English" {
		t.Errorf("expected English first (it is the fallback), got %q", labels[0])
	}
}
