package notes

import (
	"errors"
	"fmt"
	"friday/app/config"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samber/do"
	"github.com/samber/oops"
	"github.com/spf13/afero"
)

const timeLayout = "2006-01-02 15:04"

var ErrEmptyNote = errors.New("note body is empty")

// Store is an append-only, line oriented notes log. Embedded newlines are
// written as is, so such a note reads back as several lines.
type Store struct {
	fs   afero.Fs
	path string
	now  func() time.Time

	mu sync.Mutex
}

func New(di *do.Injector) (*Store, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewStore(afero.NewOsFs(), cfg.Files.Notes), nil
}

func NewStore(fs afero.Fs, path string) *Store {
	return &Store{
		fs:   fs,
		path: path,
		now:  time.Now,
	}
}

// Append writes one timestamped record and returns it without the newline.
func (s *Store) Append(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return "", ErrEmptyNote
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.fs.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return "", oops.In("notes").With("path", s.path).Wrapf(err, "failed to create notes dir")
	}

	file, err := s.fs.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return "", oops.In("notes").With("path", s.path).Wrapf(err, "failed to open notes file")
	}
	defer file.Close()

	record := fmt.Sprintf("%s: %s", s.now().Format(timeLayout), body)
	if _, err = file.WriteString(record + "\n"); err != nil {
		return "", oops.In("notes").With("path", s.path).Wrapf(err, "failed to write note")
	}

	slog.Debug("Note saved", "path", s.path, "length", len(body))

	return record, nil
}

// ReadAll returns the whole log verbatim. A missing file reads as empty.
func (s *Store) ReadAll() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := afero.ReadFile(s.fs, s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", oops.In("notes").With("path", s.path).Wrapf(err, "failed to read notes file")
	}

	return string(data), nil
}
