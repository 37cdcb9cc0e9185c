package querylog

import (
	"errors"
	"fmt"
	"friday/app/config"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samber/do"
	"github.com/samber/oops"
	"github.com/spf13/afero"
)

// Log keeps the queries nobody understood, one numbered line each.
type Log struct {
	fs   afero.Fs
	path string

	mu sync.Mutex
}

func New(di *do.Injector) (*Log, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return NewLog(afero.NewOsFs(), cfg.Files.QueryLog), nil
}

func NewLog(fs afero.Fs, path string) *Log {
	return &Log{
		fs:   fs,
		path: path,
	}
}

// Record appends query and returns the number it was stored under.
func (l *Log) Record(query string) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := afero.ReadFile(l.fs, l.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return 0, oops.In("querylog").With("path", l.path).Wrapf(err, "failed to read query log")
	}

	number := countLines(string(data)) + 1

	if err = l.fs.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return 0, oops.In("querylog").With("path", l.path).Wrapf(err, "failed to create query log dir")
	}

	file, err := l.fs.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, oops.In("querylog").With("path", l.path).Wrapf(err, "failed to open query log")
	}
	defer file.Close()

	if _, err = fmt.Fprintf(file, "%d. %s\n", number, query); err != nil {
		return 0, oops.In("querylog").With("path", l.path).Wrapf(err, "failed to write query log")
	}

	return number, nil
}

func countLines(content string) int {
	if content == "" {
		return 0
	}

	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}

	return n
}
