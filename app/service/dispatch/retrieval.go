package dispatch

import (
	"context"
	"errors"
	"fmt"
	"friday/app/client/host"
	"friday/app/client/knowledge"
	"log/slog"
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/elliotchance/pie/v2"
)

var (
	knowledgeWords = strings.NewReplacer("what is", "", "who is", "", "wikipedia", "")
	webWords       = strings.NewReplacer("search google for", "", "search the web for", "", "search for", "", "find info on", "", "search", "", "google", "")
	mediaWords     = strings.NewReplacer("on youtube", "", "play video of", "", "play video", "", "youtube", "")

	callPattern = regexp.MustCompile(`call\s+([\w\s]+)`)
	nonDigits   = regexp.MustCompile(`\D`)
)

const minPhoneDigits = 8

func (s *Service) planKnowledge(u Utterance) Action {
	subject := trimQuery(knowledgeWords.Replace(u.Clean))

	return func(ctx context.Context, emit Emit) {
		if subject == "" {
			emit(Reply{Text: "What should I look up? Try something like 'who is Albert Einstein'."})
			return
		}

		emit(Reply{Text: fmt.Sprintf("Let's check the knowledge base! Looking up Wikipedia for: **%s**...", subject)})

		ctx, cancel := context.WithTimeout(ctx, s.cfg.Knowledge.Timeout)
		defer cancel()

		summary, err := s.knowledge.Summary(ctx, subject)
		switch {
		case errors.Is(err, knowledge.ErrNotFound):
			emit(Reply{Text: "My search of Wikipedia didn't match that exact query. Perhaps try a slightly different phrasing?"})
		case err != nil:
			slog.Warn("Knowledge lookup failed", "subject", subject, "error", err)
			emit(Reply{
				Text:    "Uh oh, I'm having trouble reaching Wikipedia. It seems like a network or connection issue. Maybe try searching Google instead?",
				IsError: true,
			})
		default:
			emit(Reply{Text: firstParagraph(summary), FullText: summary})
		}
	}
}

func (s *Service) planCodeSearch(u Utterance) Action {
	query := trimQuery(u.Clean)

	return s.openSearch(s.cfg.Search.CodeURL, query,
		fmt.Sprintf("Searching for programming snippets related to **%s** on Google. Opening the browser for you now.", query))
}

func (s *Service) planWebSearch(u Utterance) Action {
	query := trimQuery(webWords.Replace(u.Clean))

	return s.openSearch(s.cfg.Search.WebURL, query,
		fmt.Sprintf("Let's check the web! Searching Google right now for: **%s**. Your browser is opening.", query))
}

func (s *Service) planMediaSearch(u Utterance) Action {
	query := trimQuery(mediaWords.Replace(u.Text))

	return s.openSearch(s.cfg.Search.VideoURL, query,
		fmt.Sprintf("Awesome! Getting search results for **%s** on YouTube. Opening your browser now.", query))
}

func (s *Service) openSearch(prefix, query, announce string) Action {
	target := prefix + url.QueryEscape(query)

	return func(_ context.Context, emit Emit) {
		emit(Reply{Text: announce})

		if err := s.host.OpenURL(target); err != nil {
			slog.Warn("Failed to open browser", "url", target, "error", err)
			emit(Reply{Text: "I couldn't open your browser. Is a default browser configured?", IsError: true})
		}
	}
}

func (s *Service) planPower(u Utterance) Action {
	action := powerAction(u.Text)

	return func(ctx context.Context, emit Emit) {
		question := fmt.Sprintf("This command controls your host computer. Are you absolutely sure you want to %s the host computer now? (yes/no)", action)
		emit(Reply{Text: question})

		ok, err := s.confirm.Ask(ctx, question)
		if err != nil {
			slog.Warn("Power confirmation aborted", "action", action, "error", err)
			ok = false
		}

		if !ok {
			emit(Reply{Text: fmt.Sprintf("%s cancelled. We're staying active!", capitalize(string(action)))})
			return
		}

		emit(Reply{Text: fmt.Sprintf("Confirmed! Executing %s in 1 second. Goodbye!", action)})

		if err = s.host.Power(ctx, action); err != nil {
			slog.Error("Power command failed", "action", action, "error", err)
			emit(Reply{Text: fmt.Sprintf("I couldn't %s the host computer.", action), IsError: true})
		}
	}
}

func powerAction(text string) host.PowerAction {
	switch {
	case containsAny(text, []string{"shutdown", "power off"}):
		return host.PowerShutdown
	case containsAny(text, []string{"restart", "reboot"}):
		return host.PowerRestart
	default:
		return host.PowerLogOff
	}
}

func (s *Service) planCall(u Utterance) Action {
	name := ""
	if m := callPattern.FindStringSubmatch(u.Text); m != nil {
		name = strings.TrimSpace(m[1])
	}

	number := s.lookupContact(name)
	if number == "" {
		if digits := nonDigits.ReplaceAllString(u.Text, ""); len(digits) >= minPhoneDigits {
			number = digits
			if name == "" {
				name = "the specified number"
			}
		}
	}

	if number == "" {
		return func(_ context.Context, emit Emit) {
			emit(Reply{
				Text:    fmt.Sprintf("I couldn't find a number for **'%s'**. Please confirm the person's name or manually type the number.", name),
				IsError: true,
			})
		}
	}

	return func(_ context.Context, emit Emit) {
		emit(Reply{Text: fmt.Sprintf("Initiating call to **%s** at %s.", name, number)})

		if err := s.host.Dial(number); err != nil {
			slog.Warn("Failed to start call", "number", number, "error", err)
			emit(Reply{Text: "I ran into an issue launching the call service.", IsError: true})
		}
	}
}

// lookupContact returns the number of the first contact, in key order, whose
// key occurs in name.
func (s *Service) lookupContact(name string) string {
	if name == "" {
		return ""
	}

	keys := pie.Sort(pie.Keys(s.cfg.Contacts))
	idx := pie.FindFirstUsing(keys, func(key string) bool {
		return strings.Contains(name, strings.ToLower(key))
	})
	if idx < 0 {
		return ""
	}

	return s.cfg.Contacts[keys[idx]]
}

// trimQuery drops the spaces and punctuation left behind by word removal.
func trimQuery(text string) string {
	return strings.TrimFunc(text, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
}

func capitalize(text string) string {
	if text == "" {
		return text
	}

	return strings.ToUpper(text[:1]) + text[1:]
}
