package plan

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/vmunix/vpress/internal/policy"
)

// Recognized video file extensions (lowercase, with leading dot).
var videoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".flv":  true,
	".wmv":  true,
	".webm": true,
}

// IsVideo reports whether path has a recognized video extension.
func IsVideo(path string) bool {
	return videoExtensions[strings.ToLower(filepath.Ext(path))]
}

// Walker plans one run: a single top-down traversal of InputRoot that
// mirrors directories under OutputRoot, links non-video files through,
// and emits a Task per video file.
type Walker struct {
	InputRoot  string
	OutputRoot string

	// Global is the resolved default argument set; nil means
	// no-compression.
	Global *policy.ArgSet

	// Index holds the override lookup built by policy.BuildIndex.
	Index policy.Index

	Log *slog.Logger
}

// Plan traverses the input tree and returns the transcode tasks in
// lexical order. Directory mirroring and non-video pass-through links
// happen as side effects during the walk, parents before children, so
// every task's destination directory exists before any task runs.
func (w *Walker) Plan() ([]Task, error) {
	if w.Log == nil {
		w.Log = slog.Default()
	}

	// Index keys are absolute, so the walk has to be too.
	in, err := filepath.Abs(w.InputRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve input root: %w", err)
	}
	out, err := filepath.Abs(w.OutputRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve output root: %w", err)
	}

	seen := map[string]bool{}
	if resolved, err := filepath.EvalSymlinks(in); err == nil {
		seen[resolved] = true
	}
	return w.walk(in, out, seen)
}

func (w *Walker) walk(dir, outDir string, seen map[string]bool) ([]Task, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("mirror directory %s: %w", outDir, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var tasks []Task
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		// Stat (not the entry's own type) so symlinked directories
		// and files are followed. An entry that cannot be stat'd —
		// a dangling symlink, a file removed mid-walk — is not a
		// regular file; skip it rather than abort the run.
		info, err := os.Stat(path)
		if err != nil {
			w.Log.Warn("skipping unreadable entry", "path", path, "error", err)
			continue
		}

		if info.IsDir() {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil {
				w.Log.Warn("skipping unreadable directory", "path", path, "error", err)
				continue
			}
			if seen[resolved] {
				w.Log.Warn("skipping already-visited directory", "path", path, "target", resolved)
				continue
			}
			seen[resolved] = true

			sub, err := w.walk(path, filepath.Join(outDir, entry.Name()), seen)
			if err != nil {
				return nil, err
			}
			tasks = append(tasks, sub...)
			continue
		}

		if !IsVideo(path) {
			if err := linkThrough(path, filepath.Join(outDir, entry.Name())); err != nil {
				return nil, err
			}
			continue
		}

		args := w.resolve(path, dir)
		w.Log.Debug("planned video", "source", path, "transcode", args != nil)
		tasks = append(tasks, Task{Source: path, DestDir: outDir, Args: args})
	}
	return tasks, nil
}

// resolve picks the effective argument set for one video: an index
// entry for the file itself wins, then an entry for its immediate
// parent directory, then the global default. Only the direct parent is
// consulted; deeper ancestors are already covered because BuildIndex
// pre-populates every descendant directory of a directory spec.
func (w *Walker) resolve(file, parent string) *policy.ArgSet {
	if args, ok := w.Index[file]; ok {
		return args
	}
	if args, ok := w.Index[parent]; ok {
		return args
	}
	return w.Global
}

// linkThrough places a symlink to src at dst, replacing any existing
// entry so repeated runs converge on the same tree.
func linkThrough(src, dst string) error {
	if _, err := os.Lstat(dst); err == nil {
		if err := os.Remove(dst); err != nil {
			return fmt.Errorf("replace %s: %w", dst, err)
		}
	}
	if err := os.Symlink(src, dst); err != nil {
		return fmt.Errorf("link %s: %w", dst, err)
	}
	return nil
}
