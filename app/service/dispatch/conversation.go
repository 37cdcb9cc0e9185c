package dispatch

import (
	"context"
	"fmt"
	"friday/app/service/dialogue"
	"strings"
)

func (s *Service) planQuietToggle(u Utterance) Action {
	s.state.awaitingConfirmation = false

	user := s.cfg.Assistant.User

	if containsAny(u.Text, wakePhrases) {
		if !s.state.quietMode {
			return say(fmt.Sprintf("I'm already talking, %s. What can I do for you?", user))
		}

		s.state.quietMode = false
		return say(fmt.Sprintf("Quiet Mode deactivated. Welcome back, %s! How can I assist you now?", user))
	}

	if s.state.quietMode {
		return say("Quiet Mode is already on. I'm still listening silently.")
	}

	s.state.quietMode = true
	return say("Understood. Activating Quiet Mode. I will listen silently.")
}

// The flag is one-shot, whatever the answer was.
func (s *Service) planConfirmation(u Utterance) Action {
	s.state.awaitingConfirmation = false

	if !containsAny(u.Text, affirmatives) {
		return say(s.vars().Render(s.table.Decline()))
	}

	disclosure := s.vars().Render(s.table.Disclosure())
	return func(_ context.Context, emit Emit) {
		emit(Reply{
			Text:     firstParagraph(disclosure),
			FullText: disclosure,
		})
	}
}

func (s *Service) planDialogue(u Utterance) Action {
	entry, _ := s.table.Match(u.Text)
	if entry.ArmsConfirmation {
		s.state.awaitingConfirmation = true
	}

	return say(s.vars().Render(dialogue.Pick(s.random, entry.Responses)))
}

func (s *Service) planHelp(Utterance) Action {
	help := helpText(s.cfg.Assistant.Name)

	return func(_ context.Context, emit Emit) {
		emit(Reply{
			Text:     "I've just loaded a comprehensive list of all my commands and features into the conversation log. Take a look!",
			FullText: help,
		})
	}
}

func (s *Service) planExit(Utterance) Action {
	return say(fmt.Sprintf("System exiting. Take care, %s!", s.cfg.Assistant.User))
}

func (s *Service) planJoke(Utterance) Action {
	return say(dialogue.Pick(s.random, s.table.Jokes()))
}

func firstParagraph(text string) string {
	head, _, _ := strings.Cut(text, "\n\n")
	return head
}
