package dispatch

import (
	_ "embed"
	"strings"
)

//go:embed help.md
var helpDocument string

func helpText(assistant string) string {
	return strings.TrimSpace(strings.ReplaceAll(helpDocument, "{assistant}", strings.ToUpper(assistant)))
}

// HelpExamples returns every example command quoted in the help text.
func HelpExamples() []string {
	var examples []string

	parts := strings.Split(helpDocument, "`")
	for i := 1; i < len(parts); i += 2 {
		if parts[i] != "/commands" {
			examples = append(examples, parts[i])
		}
	}

	return examples
}
