// Package plan walks the input tree, mirrors its structure into the
// output tree, and turns every video file into a transcode task.
package plan

import "github.com/vmunix/vpress/internal/policy"

// Task is one file's transcode-or-link decision. Args nil means the
// file is linked into place instead of transcoded. Immutable once
// created; each task owns disjoint source and destination paths.
type Task struct {
	Source  string
	DestDir string
	Args    *policy.ArgSet
}
