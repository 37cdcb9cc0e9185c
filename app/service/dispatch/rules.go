package dispatch

import (
	"strings"

	"github.com/elliotchance/pie/v2"
)

// Match and plan run with the state lock held.
type rule struct {
	name  string
	match func(s *Service, u Utterance) bool
	plan  func(s *Service, u Utterance) Action
	exit  bool
}

var (
	wakePhrases  = []string{"wake up friday", "speak again", "stop quiet mode", "turn off sleep mode", "start talking"}
	quietPhrases = []string{"sleep mode on", "be quiet", "shhh", "go to quiet", "silent mode"}
	// Substrings, so "ha" also hits "thanks" and "what".
	affirmatives = []string{"yes", "ya", "yeah", "yep", "ha", "sure", "totally"}
	exitPhrases  = []string{"goodbye", "exit", "shut down friday"}
	powerWords   = []string{"shutdown", "restart", "log off", "power off", "reboot", "sign out"}
)

// First match wins. Overlaps between tiers are settled by this order alone.
var rules = []rule{
	{name: "quiet-mode", match: matchQuietToggle, plan: (*Service).planQuietToggle},
	{name: "confirmation", match: awaitingConfirmation, plan: (*Service).planConfirmation},
	{name: "help", match: isHelpCommand, plan: (*Service).planHelp},
	{name: "exit", match: keywords(exitPhrases...), plan: (*Service).planExit, exit: true},

	{name: "knowledge", match: keywords("wikipedia", "who is", "what is"), plan: (*Service).planKnowledge},
	{name: "code-search", match: keywords("code for", "snippet", "programming"), plan: (*Service).planCodeSearch},
	{name: "web-search", match: keywords("search", "google", "find info on"), plan: (*Service).planWebSearch},
	{name: "media-search", match: keywords("youtube", "video", "music"), plan: (*Service).planMediaSearch},

	{name: "power", match: keywords(powerWords...), plan: (*Service).planPower},

	{name: "dialogue", match: matchDialogue, plan: (*Service).planDialogue},

	{name: "telephony", match: keywords("call", "phone"), plan: (*Service).planCall},

	{name: "calculator", match: keywords("calculate", "solve", "compute"), plan: (*Service).planCalculate},
	{name: "reminder", match: keywords("set a timer", "start timer", "set timer", "remind me"), plan: (*Service).planReminder},
	{name: "take-note", match: keywords("take a note", "write down", "write this down"), plan: (*Service).planTakeNote},
	{name: "read-notes", match: keywords("read notes", "show notes"), plan: (*Service).planReadNotes},
	{name: "clipboard", match: keywords("copy to clipboard", "copy this"), plan: (*Service).planClipboard},
	{name: "joke", match: keywords("joke"), plan: (*Service).planJoke},
	{name: "time", match: matchTime, plan: (*Service).planTime},
	{name: "date", match: keywords("date"), plan: (*Service).planDate},
	{name: "random-number", match: keywords("random number"), plan: (*Service).planRandomNumber},

	{name: "run-script", match: keywords("run script", "execute code"), plan: unavailable("Running external scripts is unavailable in this build. Use **Code Search** to find solutions or snippets.")},
	{name: "file-search", match: keywords("find file", "locate file", "search file"), plan: unavailable("File search is unavailable in this build. Try searching the **Web** for your file name instead.")},
	{name: "camera", match: keywords("camera"), plan: unavailable("Camera access is unavailable in this build. Please use your device's native camera app.")},
	{name: "app-launch", match: keywords("open", "launch", "show me"), plan: unavailable("Opening local files is unavailable in this build. Please use your device's native app launcher or file manager.")},
}

func containsAny(text string, phrases []string) bool {
	return pie.Any(phrases, func(phrase string) bool {
		return strings.Contains(text, phrase)
	})
}

func keywords(phrases ...string) func(*Service, Utterance) bool {
	return func(_ *Service, u Utterance) bool {
		return containsAny(u.Text, phrases)
	}
}

func matchQuietToggle(_ *Service, u Utterance) bool {
	return containsAny(u.Text, wakePhrases) || containsAny(u.Text, quietPhrases)
}

func awaitingConfirmation(s *Service, _ Utterance) bool {
	return s.state.awaitingConfirmation
}

func isHelpCommand(_ *Service, u Utterance) bool {
	return u.Raw == "/commands"
}

func matchDialogue(s *Service, u Utterance) bool {
	_, ok := s.table.Match(u.Text)
	return ok
}

func matchTime(_ *Service, u Utterance) bool {
	return strings.Contains(u.Text, "time") && !strings.Contains(u.Text, "date")
}

func unavailable(text string) func(*Service, Utterance) Action {
	return func(*Service, Utterance) Action {
		return say(text)
	}
}
