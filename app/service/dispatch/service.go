package dispatch

import (
	"context"
	"friday/app/client/host"
	"friday/app/client/knowledge"
	"friday/app/config"
	"friday/app/service/confirm"
	"friday/app/service/dialogue"
	"friday/app/service/notes"
	"friday/app/service/querylog"
	"friday/app/service/reminder"
	"time"

	"github.com/elliotchance/pie/v2"
	"github.com/samber/do"
)

const ruleUnrecognized = "unrecognized"

type NoteStore interface {
	Append(body string) (string, error)
	ReadAll() (string, error)
}

type QueryLog interface {
	Record(query string) (int, error)
}

type Knowledge interface {
	Summary(ctx context.Context, subject string) (string, error)
}

type Host interface {
	OpenURL(url string) error
	Dial(number string) error
	CopyText(text string) error
	Power(ctx context.Context, action host.PowerAction) error
}

type Reminders interface {
	Schedule(delay time.Duration, message string)
}

type Confirmer interface {
	Ask(ctx context.Context, question string) (bool, error)
}

// Deps are the collaborators of the dispatcher. Random and Now default to the
// process generator and the wall clock.
type Deps struct {
	Config    *config.Config
	State     *State
	Table     *dialogue.Table
	Notes     NoteStore
	QueryLog  QueryLog
	Knowledge Knowledge
	Host      Host
	Reminders Reminders
	Confirm   Confirmer
	Random    dialogue.Random
	Now       func() time.Time
}

type Service struct {
	cfg       *config.Config
	state     *State
	table     *dialogue.Table
	notes     NoteStore
	queryLog  QueryLog
	knowledge Knowledge
	host      Host
	reminders Reminders
	confirm   Confirmer
	random    dialogue.Random
	now       func() time.Time
}

func New(di *do.Injector) (*Service, error) {
	return NewService(Deps{
		Config:    do.MustInvoke[*config.Config](di),
		State:     do.MustInvoke[*State](di),
		Table:     do.MustInvoke[*dialogue.Table](di),
		Notes:     do.MustInvoke[*notes.Store](di),
		QueryLog:  do.MustInvoke[*querylog.Log](di),
		Knowledge: do.MustInvoke[*knowledge.Client](di),
		Host:      do.MustInvoke[*host.Client](di),
		Reminders: do.MustInvoke[*reminder.Service](di),
		Confirm:   do.MustInvoke[*confirm.Gate](di),
	}), nil
}

func NewService(deps Deps) *Service {
	if deps.State == nil {
		deps.State = &State{}
	}
	if deps.Random == nil {
		deps.Random = dialogue.GlobalRandom
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Service{
		cfg:       deps.Config,
		state:     deps.State,
		table:     deps.Table,
		notes:     deps.Notes,
		queryLog:  deps.QueryLog,
		knowledge: deps.Knowledge,
		host:      deps.Host,
		reminders: deps.Reminders,
		confirm:   deps.Confirm,
		random:    deps.Random,
		now:       deps.Now,
	}
}

func (s *Service) State() *State {
	return s.state
}

// RuleNames lists the rules in evaluation order.
func (s *Service) RuleNames() []string {
	return pie.Map(rules, func(r rule) string {
		return r.name
	})
}

// Plan picks the rule for raw and applies its state change. Planning is
// serialized, the returned turn may run concurrently with later plans.
func (s *Service) Plan(raw string) Turn {
	u := NewUtterance(raw)

	s.state.mu.Lock()
	defer s.state.mu.Unlock()

	for _, r := range rules {
		if !r.match(s, u) {
			continue
		}

		return Turn{
			Rule:    r.name,
			Handled: !r.exit,
			Exit:    r.exit,
			action:  r.plan(s, u),
		}
	}

	return Turn{
		Rule:   ruleUnrecognized,
		action: s.planUnrecognized(u),
	}
}

// Dispatch plans raw and runs the turn before returning.
func (s *Service) Dispatch(ctx context.Context, raw string, emit Emit) Turn {
	turn := s.Plan(raw)
	turn.Run(ctx, emit)

	return turn
}

func (s *Service) vars() dialogue.Vars {
	return dialogue.Vars{
		User:      s.cfg.Assistant.User,
		Assistant: s.cfg.Assistant.Name,
		Creator:   s.cfg.Assistant.Creator,
		Now:       s.now(),
	}
}
