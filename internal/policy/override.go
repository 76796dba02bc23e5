package policy

import (
	"os"
	"path/filepath"
)

// Override pairs a path with the policy that should apply there. The
// path may name a file or a directory (meaning every video under it,
// recursively), and may be absolute or relative.
type Override struct {
	Path    string
	Request Request
}

// Index maps absolute paths (files or directories) to resolved argument
// sets. A nil value means no-compression. Built once per run; read-only
// afterwards, so it is safe to share across workers.
type Index map[string]*ArgSet

// BuildIndex expands overrides into a lookup index. For a file spec a
// single entry is inserted; for a directory spec one entry is inserted
// for the directory itself and for every directory nested beneath it,
// following symlinks. Later overrides overwrite earlier ones at the
// same key, so when two directory specs overlap the one appearing later
// in the list wins for the overlapping region regardless of nesting
// depth. A path that exists nowhere is indexed relative to inputRoot
// without complaint; it simply never matches anything during the walk.
func BuildIndex(overrides []Override, inputRoot string) Index {
	idx := make(Index, len(overrides))
	for _, o := range overrides {
		path := normalizePath(o.Path, inputRoot)
		args := o.Request.Resolve()

		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			idx[path] = args
			continue
		}

		idx[path] = args
		for _, dir := range subdirectories(path) {
			idx[dir] = args
		}
	}
	return idx
}

// normalizePath resolves a spec path to an absolute path: absolute
// paths pass through, paths that exist relative to the working
// directory resolve there, everything else is joined with inputRoot.
func normalizePath(path, inputRoot string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	if _, err := os.Stat(path); err == nil {
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
	}
	return filepath.Join(inputRoot, path)
}

// subdirectories enumerates every directory transitively nested under
// root, following symlinks, in lexical order. Each resolved directory
// is visited once, so symlink cycles terminate.
func subdirectories(root string) []string {
	seen := map[string]bool{}
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		seen[resolved] = true
	}
	return subdirsInto(root, seen)
}

func subdirsInto(root string, seen map[string]bool) []string {
	var dirs []string

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil
	}

	for _, entry := range entries {
		path := filepath.Join(root, entry.Name())
		info, err := os.Stat(path)
		if err != nil || !info.IsDir() {
			continue
		}
		resolved, err := filepath.EvalSymlinks(path)
		if err != nil || seen[resolved] {
			continue
		}
		seen[resolved] = true
		dirs = append(dirs, path)
		dirs = append(dirs, subdirsInto(path, seen)...)
	}
	return dirs
}
