package dispatch

import (
	"context"
	"errors"
	"fmt"
	"friday/app/service/calculator"
	"friday/app/service/notes"
	"friday/app/service/reminder"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
)

var (
	noteMarkers  = regexp.MustCompile(`(?i)take a note|write this down|write down`)
	noteLeadIn   = regexp.MustCompile(`(?i)^(?:that\b|:)\s*`)
	numberRange  = regexp.MustCompile(`(\d+)\s+to\s+(\d+)`)
	defaultRange = [2]int{1, 100}
)

func (s *Service) planCalculate(u Utterance) Action {
	return func(_ context.Context, emit Emit) {
		result, err := calculator.Calculate(u.Text)
		switch {
		case errors.Is(err, calculator.ErrEmpty):
			emit(Reply{Text: "Please state the calculation clearly, like '10 plus 5 times 2'."})
		case errors.Is(err, calculator.ErrDivideByZero):
			emit(Reply{Text: "Oh dear, I can't divide by zero! Please try another equation.", IsError: true})
		case err != nil:
			emit(Reply{Text: "I had trouble calculating that. Could you simplify the numbers or operators?", IsError: true})
		default:
			emit(Reply{Text: fmt.Sprintf("Calculated! The result is **%s**", result.String())})
		}
	}
}

func (s *Service) planReminder(u Utterance) Action {
	return func(_ context.Context, emit Emit) {
		req, err := reminder.Parse(u.Raw)
		if err != nil {
			emit(Reply{Text: fmt.Sprintf("I need a time, %s. Please tell me the duration, like 'in 5 minutes'.", s.cfg.Assistant.User)})
			return
		}

		emit(Reply{Text: fmt.Sprintf("Reminder set! I'll ping you in **%d %s** to remind you about **%s**.", req.Amount, req.Unit, req.Message)})
		s.reminders.Schedule(req.Delay, req.Message)
	}
}

func (s *Service) planTakeNote(u Utterance) Action {
	body := noteBody(u.Raw)

	return func(_ context.Context, emit Emit) {
		_, err := s.notes.Append(body)
		switch {
		case errors.Is(err, notes.ErrEmptyNote):
			emit(Reply{Text: "I need a message to save. What should I write down?"})
		case err != nil:
			slog.Error("Failed to save note", "error", err)
			emit(Reply{Text: "Oh no, I could not write the note due to a file system error.", IsError: true})
		default:
			emit(Reply{Text: fmt.Sprintf("Note saved successfully: **%s**", body)})
		}
	}
}

func noteBody(raw string) string {
	body := strings.TrimSpace(noteMarkers.ReplaceAllString(raw, ""))
	return strings.TrimSpace(noteLeadIn.ReplaceAllString(body, ""))
}

func (s *Service) planReadNotes(Utterance) Action {
	return func(_ context.Context, emit Emit) {
		content, err := s.notes.ReadAll()
		if err != nil {
			slog.Error("Failed to read notes", "error", err)
			emit(Reply{Text: "Oh no, I could not read your notes due to a file system error.", IsError: true})
			return
		}

		if strings.TrimSpace(content) == "" {
			emit(Reply{Text: fmt.Sprintf("You have no notes yet, %s. Time to save your first thought!", s.cfg.Assistant.User)})
			return
		}

		emit(Reply{
			Text:     fmt.Sprintf("Here are your saved notes, %s:", s.cfg.Assistant.User),
			FullText: "**--- YOUR SAVED NOTES ---**\n\n" + strings.TrimSpace(content),
		})
	}
}

func (s *Service) planClipboard(u Utterance) Action {
	text := u.Clean

	return func(_ context.Context, emit Emit) {
		if err := s.host.CopyText(text); err != nil {
			slog.Warn("Clipboard write failed", "error", err)
			emit(Reply{Text: "I couldn't reach your clipboard.", IsError: true})
			return
		}

		emit(Reply{Text: fmt.Sprintf("Successfully copied **'%s'** to your clipboard!", text)})
	}
}

func (s *Service) planTime(Utterance) Action {
	return say("The time is exactly " + s.now().Format("03:04 PM"))
}

func (s *Service) planDate(Utterance) Action {
	return say(fmt.Sprintf("Today's date is %s.", s.now().Format("Monday, January 2 of 2006")))
}

func (s *Service) planRandomNumber(u Utterance) Action {
	lo, hi, explicit := parseRange(u.Text)
	n := lo + s.random.IntN(hi-lo+1)

	if !explicit {
		return say(fmt.Sprintf("Generating a random number between %d and %d: **%d**", lo, hi, n))
	}

	return say(fmt.Sprintf("Your random number between %d and %d is: **%d**", lo, hi, n))
}

func parseRange(text string) (lo, hi int, explicit bool) {
	m := numberRange.FindStringSubmatch(text)
	if m == nil {
		return defaultRange[0], defaultRange[1], false
	}

	a, errA := strconv.Atoi(m[1])
	b, errB := strconv.Atoi(m[2])
	if errA != nil || errB != nil || max(a, b)-min(a, b) >= 1<<31 {
		return defaultRange[0], defaultRange[1], false
	}

	return min(a, b), max(a, b), true
}

func (s *Service) planUnrecognized(u Utterance) Action {
	query := u.Clean

	return func(_ context.Context, emit Emit) {
		if _, err := s.queryLog.Record(query); err != nil {
			slog.Error("Failed to log unrecognized query", "query", query, "error", err)
			emit(Reply{Text: "I couldn't record that query for later review.", IsError: true})
		}

		emit(Reply{Text: fmt.Sprintf("Hmm, I'm not familiar with that command, %s. Maybe try rephrasing? I can still do web searches or check my command list for you!", s.cfg.Assistant.User)})
	}
}
