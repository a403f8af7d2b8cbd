package visibility

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/wippyai/lifecycle/errors"
)

// FileFlagConfig holds the parameters for a FileFlag.
type FileFlagConfig struct {
	// Logger receives watcher diagnostics. Nil uses the package Logger().
	Logger *zap.Logger

	// Path is the flag file. Its trimmed content "hidden" means hidden;
	// any other content, or a missing file, means visible.
	Path string
}

// FileFlag is an Environment backed by a file on disk. The parent directory
// is watched so editors that replace the file by rename are followed.
// Run must be called to deliver changes.
type FileFlag struct {
	flag    *Flag
	fsw     *fsnotify.Watcher
	logger  *zap.Logger
	path    string
	started atomic.Bool
}

// NewFileFlag reads the initial state from cfg.Path and starts watching its
// directory.
func NewFileFlag(cfg FileFlagConfig) (*FileFlag, error) {
	if cfg.Path == "" {
		return nil, errors.InvalidInput(errors.PhaseWatch, "flag file path is empty")
	}

	abs, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("visibility: resolve flag path: %w", err)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("visibility: create fsnotify watcher: %w", err)
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close() //nolint:errcheck // best-effort cleanup
		return nil, fmt.Errorf("visibility: watch %s: %w", filepath.Dir(abs), err)
	}

	log := cfg.Logger
	if log == nil {
		log = Logger()
	}

	return &FileFlag{
		flag:   NewFlag(readFlag(abs)),
		fsw:    fsw,
		logger: log,
		path:   abs,
	}, nil
}

// Visible reports the last state read from the file.
func (f *FileFlag) Visible() bool {
	return f.flag.Visible()
}

// Subscribe registers fn for state changes.
func (f *FileFlag) Subscribe(fn func(visible bool)) func() {
	return f.flag.Subscribe(fn)
}

// Path returns the absolute flag file path.
func (f *FileFlag) Path() string {
	return f.path
}

// Run blocks until ctx is cancelled, re-reading the flag file on every event
// that touches it. It returns nil on cancellation and the watcher error if
// the event stream fails. Run must be called exactly once.
func (f *FileFlag) Run(ctx context.Context) error {
	if !f.started.CompareAndSwap(false, true) {
		return fmt.Errorf("visibility: Run called more than once")
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-f.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			visible := readFlag(f.path)
			f.logger.Debug("visibility flag file changed",
				zap.String("path", f.path),
				zap.String("op", event.Op.String()),
				zap.Bool("visible", visible))
			f.flag.Set(visible)

		case err, ok := <-f.fsw.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("visibility: watcher error: %w", err)
		}
	}
}

// Close stops watching. Pending Run calls return.
func (f *FileFlag) Close() error {
	return f.fsw.Close()
}

// WriteFlag stores the given state in the flag file.
func WriteFlag(path string, visible bool) error {
	content := "visible\n"
	if !visible {
		content = "hidden\n"
	}
	return os.WriteFile(path, []byte(content), 0o644)
}

func readFlag(path string) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		return true
	}
	return !strings.EqualFold(strings.TrimSpace(string(data)), "hidden")
}
