package dialogue

import (
	"math/rand/v2"
	"strings"
	"time"
)

// Random is the source used to pick a response. *rand.Rand satisfies it.
type Random interface {
	IntN(n int) int
}

type globalRandom struct{}

func (globalRandom) IntN(n int) int {
	return rand.IntN(n)
}

// GlobalRandom draws from the process-wide generator.
var GlobalRandom Random = globalRandom{}

// Pick returns a uniformly chosen option, or "" when options is empty.
func Pick(r Random, options []string) string {
	if len(options) == 0 {
		return ""
	}

	return options[r.IntN(len(options))]
}

// Vars fill the placeholders of a response at the moment it is chosen.
type Vars struct {
	User      string
	Assistant string
	Creator   string
	Now       time.Time
}

func (v Vars) Render(text string) string {
	return strings.NewReplacer(
		"{user}", v.User,
		"{assistant}", v.Assistant,
		"{creator}", v.Creator,
		"{weekday}", v.Now.Weekday().String(),
		"{tomorrow}", v.Now.AddDate(0, 0, 1).Weekday().String(),
		"{yesterday}", v.Now.AddDate(0, 0, -1).Weekday().String(),
	).Replace(text)
}
