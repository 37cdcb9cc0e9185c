package config

import (
	"errors"
	"io/fs"
	"net"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yaml"

type Config struct {
	Assistant Assistant         `yaml:"assistant"`
	Files     Files             `yaml:"files"`
	Contacts  map[string]string `yaml:"contacts" validate:"dive,keys,required,endkeys,numeric"`
	Search    Search            `yaml:"search"`
	Knowledge Knowledge         `yaml:"knowledge"`
	Voice     Voice             `yaml:"voice"`
	SpeechKit SpeechKit         `yaml:"speech_kit"`
	Speech    Speech            `yaml:"speech"`
	Power     Power             `yaml:"power"`
	HTTP      HTTP              `yaml:"http"`
	Log       Log               `yaml:"log"`
}

type Assistant struct {
	// Name the assistant introduces itself with
	Name string `yaml:"name" example:"FRIDAY" validate:"required"`
	// Name of the user the assistant talks to
	User string `yaml:"user" example:"Rahul" validate:"required"`
	// Full name used in the creator disclosure
	Creator string `yaml:"creator" example:"Rahul Bisht" validate:"required"`
	// Word that activates continuous voice mode
	WakeWord string `yaml:"wake_word" example:"friday" validate:"required"`
}

type Files struct {
	// Append-only notes log
	Notes string `yaml:"notes" example:"data/friday_notes.txt" validate:"required"`
	// Append-only log of unrecognized queries
	QueryLog string `yaml:"query_log" example:"data/query_error.txt" validate:"required"`
}

type Search struct {
	// Prefix for web searches, the escaped query is appended
	WebURL string `yaml:"web_url" example:"https://www.google.com/search?q=" validate:"required,url"`
	// Prefix for code snippet searches
	CodeURL string `yaml:"code_url" example:"https://www.google.com/search?q=code+snippet+" validate:"required,url"`
	// Prefix for video searches
	VideoURL string `yaml:"video_url" example:"https://www.youtube.com/results?search_query=" validate:"required,url"`
}

type Knowledge struct {
	// User agent sent to the Wikipedia API
	UserAgent string `yaml:"user_agent" example:"friday-assistant/1.0" validate:"required"`
	// Upper bound for a single lookup
	Timeout time.Duration `yaml:"timeout" example:"15s" validate:"gt=0"`
}

type Voice struct {
	// Time given to say the wake word after voice mode is switched on
	WakeTimeout time.Duration `yaml:"wake_timeout" example:"5s" validate:"gt=0"`
	// Time given to a single command listen attempt
	ListenTimeout time.Duration `yaml:"listen_timeout" example:"3s" validate:"gt=0"`
	// ffmpeg input format of the microphone
	InputFormat string `yaml:"input_format" example:"pulse" validate:"required"`
	// ffmpeg input device of the microphone
	InputDevice string `yaml:"input_device" example:"default" validate:"required"`
}

type SpeechKit struct {
	// Service account key of the Yandex Cloud account
	KeyFile string `yaml:"key_file" example:"service-account-key.json"`
	// Recognition language
	Language string `yaml:"language" example:"en-US" validate:"required"`
	// Recognition model
	Model string `yaml:"model" example:"general" validate:"required"`
}

type Speech struct {
	// TTS command, the text is passed as the last argument. Empty disables speech
	Command []string `yaml:"command" example:"[espeak, -s, 170]"`
}

type Power struct {
	// Run host power commands. When false they are only logged
	Execute bool `yaml:"execute" example:"false"`
}

type HTTP struct {
	// Listen address of the web shell, loopback only
	Listen string `yaml:"listen" example:"127.0.0.1:8484" validate:"required,hostname_port,loopback"`
}

type Log struct {
	// Console log level
	Level string `yaml:"level" example:"info" validate:"omitempty,oneof=debug info warn error"`
	// Optional JSON log file
	File string `yaml:"file" example:"data/friday.log"`
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load(path string) (*Config, error) {
	var result Config

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, oops.Errorf("failed to read config file: %w", err)
	default:
		if err = yaml.Unmarshal(data, &result); err != nil {
			return nil, oops.Errorf("failed to parse YAML config: %w", err)
		}
	}

	applyDefaults(&result)

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.RegisterValidation("loopback", isLoopback); err != nil {
		return nil, oops.Errorf("failed to register validation: %w", err)
	}
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

func applyDefaults(c *Config) {
	if c.Assistant.Name == "" {
		c.Assistant.Name = "FRIDAY"
	}
	if c.Assistant.User == "" {
		c.Assistant.User = "Rahul"
	}
	if c.Assistant.Creator == "" {
		c.Assistant.Creator = "Rahul Bisht"
	}
	if c.Assistant.WakeWord == "" {
		c.Assistant.WakeWord = "friday"
	}

	if c.Files.Notes == "" {
		c.Files.Notes = "data/friday_notes.txt"
	}
	if c.Files.QueryLog == "" {
		c.Files.QueryLog = "data/query_error.txt"
	}

	if c.Contacts == nil {
		c.Contacts = map[string]string{
			"mom":   "9876543210",
			"david": "5551234567",
			"work":  "5559998888",
			"jane":  "5551112222",
		}
	}

	if c.Search.WebURL == "" {
		c.Search.WebURL = "https://www.google.com/search?q="
	}
	if c.Search.CodeURL == "" {
		c.Search.CodeURL = "https://www.google.com/search?q=code+snippet+"
	}
	if c.Search.VideoURL == "" {
		c.Search.VideoURL = "https://www.youtube.com/results?search_query="
	}

	if c.Knowledge.UserAgent == "" {
		c.Knowledge.UserAgent = "friday-assistant/1.0"
	}
	if c.Knowledge.Timeout == 0 {
		c.Knowledge.Timeout = 15 * time.Second
	}

	if c.Voice.WakeTimeout == 0 {
		c.Voice.WakeTimeout = 5 * time.Second
	}
	if c.Voice.ListenTimeout == 0 {
		c.Voice.ListenTimeout = 3 * time.Second
	}
	if c.Voice.InputFormat == "" {
		c.Voice.InputFormat = "pulse"
	}
	if c.Voice.InputDevice == "" {
		c.Voice.InputDevice = "default"
	}

	if c.SpeechKit.Language == "" {
		c.SpeechKit.Language = "en-US"
	}
	if c.SpeechKit.Model == "" {
		c.SpeechKit.Model = "general"
	}

	if c.HTTP.Listen == "" {
		c.HTTP.Listen = "127.0.0.1:8484"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// isLoopback accepts host:port pairs whose host is localhost or a loopback IP.
func isLoopback(fl validator.FieldLevel) bool {
	host, _, err := net.SplitHostPort(fl.Field().String())
	if err != nil {
		return false
	}

	if host == "localhost" {
		return true
	}

	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
