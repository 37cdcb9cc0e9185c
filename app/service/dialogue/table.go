package dialogue

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/elliotchance/pie/v2"
	"github.com/go-playground/validator/v10"
	"github.com/samber/do"
	"gopkg.in/yaml.v3"
)

//go:embed dialogue.yaml
var defaultDocument []byte

type Entry struct {
	Name             string   `yaml:"name" validate:"required"`
	Triggers         []string `yaml:"triggers" validate:"required,min=1,dive,required"`
	Responses        []string `yaml:"responses" validate:"required,min=1,dive,required"`
	ArmsConfirmation bool     `yaml:"arms_confirmation"`
}

type document struct {
	Disclosure string   `yaml:"disclosure" validate:"required"`
	Decline    string   `yaml:"decline" validate:"required"`
	Entries    []Entry  `yaml:"entries" validate:"required,min=1,dive"`
	Jokes      []string `yaml:"jokes" validate:"required,min=1,dive,required"`
}

// Table is the read-only conversational data set. It is safe for concurrent use.
type Table struct {
	doc document
}

var loadDefault = sync.OnceValues(func() (*Table, error) {
	return Parse(defaultDocument)
})

func New(_ *do.Injector) (*Table, error) {
	return Default()
}

// Default returns the embedded table, parsed once per process.
func Default() (*Table, error) {
	return loadDefault()
}

func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse dialogue table: %w", err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(doc); err != nil {
		return nil, fmt.Errorf("failed to validate dialogue table: %w", err)
	}

	arming := pie.Filter(doc.Entries, func(e Entry) bool {
		return e.ArmsConfirmation
	})
	if len(arming) > 1 {
		return nil, fmt.Errorf("dialogue table: %d entries arm confirmation, at most one allowed", len(arming))
	}

	for i, entry := range doc.Entries {
		for j, trigger := range entry.Triggers {
			doc.Entries[i].Triggers[j] = strings.ToLower(strings.TrimSpace(trigger))
		}
	}

	return &Table{doc: doc}, nil
}

// Match returns the first entry, in table order, that has a trigger contained
// in text. text is expected to be lowercase already.
func (t *Table) Match(text string) (Entry, bool) {
	idx := pie.FindFirstUsing(t.doc.Entries, func(e Entry) bool {
		return pie.Any(e.Triggers, func(trigger string) bool {
			return strings.Contains(text, trigger)
		})
	})
	if idx < 0 {
		return Entry{}, false
	}

	return t.doc.Entries[idx], true
}

func (t *Table) Entries() []Entry {
	return append([]Entry(nil), t.doc.Entries...)
}

func (t *Table) Jokes() []string {
	return append([]string(nil), t.doc.Jokes...)
}

func (t *Table) Disclosure() string {
	return t.doc.Disclosure
}

func (t *Table) Decline() string {
	return t.doc.Decline
}
