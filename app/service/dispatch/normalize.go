package dispatch

import "strings"

// Removed in order as plain substrings, so "solve" also eats the middle of
// "dissolve". Rules match on the lowercase text and only the actions that
// need a subject use the cleaned form.
var fillers = []string{
	"friday",
	"please",
	"can you",
	"i need to",
	"would you",
	"tell me",
	"find me",
	"show me",
	"i want to",
	"solve",
	"figure out",
	"get me",
	"i mean",
	"the result of",
}

func Normalize(raw string) string {
	text := strings.ToLower(raw)
	for _, filler := range fillers {
		text = strings.TrimSpace(strings.ReplaceAll(text, filler, ""))
	}

	return text
}

// Utterance is one unit of input in the three forms the rules look at.
type Utterance struct {
	// Trimmed input, case preserved
	Raw string
	// Lowercase Raw
	Text string
	// Normalize(Raw)
	Clean string
}

func NewUtterance(raw string) Utterance {
	raw = strings.TrimSpace(raw)

	return Utterance{
		Raw:   raw,
		Text:  strings.ToLower(raw),
		Clean: Normalize(raw),
	}
}
