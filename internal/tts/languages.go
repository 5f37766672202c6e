package tts

import "sort"

var languages = map[string]struct{}{
	"de": {},
	"en": {},
	"es": {},
	"fr": {},
	"it": {},
	"nl": {},
	"ru": {},
	"sv": {},
	"sw": {},
}

// Languages returns the supported TTS languages in sorted order.
func Languages() []string {
	out := make([]string, 0, len(languages))
	for l := range languages {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

func Supported(lang string) bool {
	_, ok := languages[lang]
	return ok
}
