package reminder

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const DefaultMessage = "Your reminder is complete."

var ErrNoDuration = errors.New("no duration found")

var (
	durationPattern = regexp.MustCompile(`(?i)(\d+)\s+(seconds?|minutes?|hours?)`)
	durationPhrase  = regexp.MustCompile(`(?i)(?:\b(?:in|after|for)\s+)?\d+\s+(?:seconds?|minutes?|hours?)\b`)
	messagePattern  = regexp.MustCompile(`(?i)remind me (?:to|that)(.*)`)
)

// Request is a parsed "remind me" or timer utterance.
type Request struct {
	Amount  int
	Unit    string
	Delay   time.Duration
	Message string
}

// Parse reads the first "<n> <unit>" pair and the text after "remind me
// to|that" with the duration phrase cut out.
func Parse(text string) (Request, error) {
	m := durationPattern.FindStringSubmatch(text)
	if m == nil {
		return Request{}, ErrNoDuration
	}

	amount, err := strconv.Atoi(m[1])
	if err != nil {
		return Request{}, ErrNoDuration
	}

	unit := strings.ToLower(m[2])

	var step time.Duration
	switch {
	case strings.HasPrefix(unit, "second"):
		step = time.Second
	case strings.HasPrefix(unit, "minute"):
		step = time.Minute
	default:
		step = time.Hour
	}

	if amount > int(math.MaxInt64/step) {
		return Request{}, ErrNoDuration
	}

	return Request{
		Amount:  amount,
		Unit:    unit,
		Delay:   time.Duration(amount) * step,
		Message: message(text),
	}, nil
}

func message(text string) string {
	m := messagePattern.FindStringSubmatch(text)
	if m == nil {
		return DefaultMessage
	}

	body := strings.Join(strings.Fields(durationPhrase.ReplaceAllString(m[1], "")), " ")
	if body == "" {
		return DefaultMessage
	}

	return body
}
