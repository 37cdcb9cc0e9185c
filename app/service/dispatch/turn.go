package dispatch

import "context"

// Reply is one message from the assistant. Text is the short form used for
// display and speech, FullText the verbatim long form when there is one.
type Reply struct {
	Text     string
	FullText string
	IsError  bool
}

type Emit func(Reply)

// Action performs the side effects of a planned turn. It never touches State.
type Action func(ctx context.Context, emit Emit)

// Turn is the outcome of planning one utterance.
type Turn struct {
	// Name of the rule that matched, "unrecognized" when none did
	Rule string
	// A rule matched and no further rules apply
	Handled bool
	// The session ends after this turn
	Exit bool

	action Action
}

func (t Turn) Run(ctx context.Context, emit Emit) {
	if t.action == nil {
		return
	}

	t.action(ctx, emit)
}

func say(text string) Action {
	return func(_ context.Context, emit Emit) {
		emit(Reply{Text: text})
	}
}
