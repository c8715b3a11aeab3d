package artifact

import (
	"log/slog"

	"github.com/Vandragoni-projetos/sinergia-gerador-pdf-app/internal/ioutils"
)

// Saver persists a validated artifact. Save reports success and never
// panics; failures are logged by the implementation.
type Saver interface {
	Save(a *Artifact, filename string) bool
}

// DirSaver writes artifacts into a directory, creating it when missing.
type DirSaver struct {
	dir   string
	label string
}

// NewDirSaver returns a saver for dir. label is how the location is shown
// to the user; it defaults to dir.
func NewDirSaver(dir, label string) *DirSaver {
	if label == "" {
		label = dir
	}
	return &DirSaver{dir: dir, label: label}
}

// Location returns the user-facing name of the target directory.
func (s *DirSaver) Location() string {
	return s.label
}

// Dir returns the target directory.
func (s *DirSaver) Dir() string {
	return s.dir
}

// Save writes a under filename. An existing file is never overwritten; a
// numbered name is chosen instead.
func (s *DirSaver) Save(a *Artifact, filename string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("saving artifact panicked", "file", filename, "panic", r)
			ok = false
		}
	}()

	if a == nil || len(a.Data) == 0 {
		slog.Error("nothing to save", "file", filename)
		return false
	}
	if err := ioutils.EnsureDir(s.dir); err != nil {
		slog.Error("failed to create output directory", "dir", s.dir, "error", err)
		return false
	}

	path := ioutils.UniquePath(s.dir, ioutils.SanitizeFileName(filename))
	if err := ioutils.WriteFileAtomic(path, a.Data); err != nil {
		slog.Error("failed to write artifact", "path", path, "error", err)
		return false
	}

	slog.Debug("artifact saved", "path", path, "bytes", len(a.Data))
	return true
}
