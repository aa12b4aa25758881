// Package language maps the human-readable language labels offered by
// the frontend to the provider-specific codes each hosted service wants:
// a BCP-47 code for speech recognition, an ISO-639-1 code for
// translation, and a BCP-47 voice code for synthesis.
package language

import "strings"

// Codes is the triplet of provider codes for one language.
type Codes struct {
	STT       string // speech-to-text recognition code
	Translate string // translation target code
	TTS       string // text-to-speech voice code
}

type entry struct {
	label string
	codes Codes
}

// registry is ordered: Resolve takes the first label whose key starts
// with the requested primary token, and English is the fallback.
var registry = []entry{
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

// Labels returns the registered language labels in registration order.
func Labels() []string {
	out := make([]string, len(registry))
	for i, e := range registry {
		out[i] = e.label
	}
	return out
}

// Resolve maps a language label such as "Hindi (हिन्दी)" to its code
// triplet. The token before the first space is matched as a prefix
// against the registered labels. Unknown labels fall back to English;
// found reports whether the label actually matched, so callers can tell
// "requested English" from "unrecognized label".
func Resolve(label string) (codes Codes, found bool) {
	primary, _, _ := strings.Cut(label, " ")
	for _, e := range registry {
		if strings.HasPrefix(e.label, primary) {
			return e.codes, true
		}
	}
	return registry[0].codes, false
}
