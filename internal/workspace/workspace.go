// Package workspace manages the per-run scratch directory.
//
// Each run owns a uniquely named directory under the configured temp root,
// guarded by a lock file so no two processes can ever share one. Release
// removes the directory on every exit path unless retention was requested.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"arxiv2epub/internal/logging"
)

// Workspace is an exclusively owned scratch directory.
type Workspace struct {
	dir    string
	lock   *flock.Flock
	keep   bool
	logger *slog.Logger
}

// Acquire creates a fresh workspace under tempRoot for the given identifier
// stem and takes its lock.
func Acquire(tempRoot, stem string, keep bool, logger *slog.Logger) (*Workspace, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if strings.TrimSpace(tempRoot) == "" {
		return nil, fmt.Errorf("temp root required")
	}
	if err := os.MkdirAll(tempRoot, 0o755); err != nil {
		return nil, fmt.Errorf("create temp root %q: %w", tempRoot, err)
	}

	name := fmt.Sprintf("arxiv2epub-%s-%s", stem, uuid.NewString()[:8])
	dir := filepath.Join(tempRoot, name)
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace %q: %w", dir, err)
	}

	lock := flock.New(dir + ".lock")
	ok, err := lock.TryLock()
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("acquire workspace lock: %w", err)
	}
	if !ok {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("workspace %q is held by another run", dir)
	}

	logger.Debug("workspace acquired", logging.String("dir", dir), logging.Bool("keep", keep))
	return &Workspace{dir: dir, lock: lock, keep: keep, logger: logger}, nil
}

// Dir returns the workspace root.
func (w *Workspace) Dir() string {
	return w.dir
}

// ArchivePath returns where the downloaded e-print is persisted.
func (w *Workspace) ArchivePath() string {
	return filepath.Join(w.dir, "eprint")
}

// SourceDir returns the directory the archive is extracted into.
func (w *Workspace) SourceDir() string {
	return filepath.Join(w.dir, "source")
}

// Release unlocks and removes the workspace. Safe to call exactly once on
// every exit path; removal is skipped when retention was requested.
func (w *Workspace) Release() {
	if w == nil {
		return
	}
	lockPath := w.lock.Path()
	if err := w.lock.Unlock(); err != nil {
		w.logger.Warn("workspace unlock failed", logging.String("dir", w.dir), logging.Error(err))
	}
	_ = os.Remove(lockPath)

	if w.keep {
		w.logger.Info("workspace retained for inspection", logging.String("dir", w.dir))
		return
	}
	if err := os.RemoveAll(w.dir); err != nil {
		w.logger.Warn("workspace removal failed", logging.String("dir", w.dir), logging.Error(err))
		return
	}
	w.logger.Debug("workspace removed", logging.String("dir", w.dir))
}
