// Package transcode invokes the external transcoder for a single task.
package transcode

import (
	"context"
	"fmt"

	"github.com/vmunix/vpress/internal/policy"
)

// Transcoder turns one source file into one output file. A nil args
// means the source is linked into destDir under its original name; the
// external binary is never invoked for that case. threads is a hint
// forwarded to the transcoder, 0 meaning "let it choose". On success
// the produced path is returned.
type Transcoder interface {
	Transcode(ctx context.Context, source, destDir string, args *policy.ArgSet, threads int) (string, error)
}

// ExecError is a transcoder invocation that exited non-zero. Diagnostic
// holds the captured stderr; callers report it but never inspect it.
type ExecError struct {
	Source     string
	Diagnostic string
	Err        error
}

func (e *ExecError) Error() string {
	return fmt.Sprintf("transcode %s: %v", e.Source, e.Err)
}

func (e *ExecError) Unwrap() error { return e.Err }
