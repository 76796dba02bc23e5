package scheduler

import (
	"fmt"
	"strings"
)

// Failure records one task whose no-compression fallback also failed.
type Failure struct {
	Source     string
	DestDir    string
	Diagnostic string
}

// BatchError aggregates every fallback failure in a run. It is the only
// fatal error the scheduler produces; first-attempt failures are always
// absorbed by the fallback retry.
type BatchError struct {
	Failures []Failure
}

func (e *BatchError) Error() string {
	sources := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		sources[i] = f.Source
	}
	return fmt.Sprintf("%d task(s) failed after no-compression fallback: %s",
		len(e.Failures), strings.Join(sources, ", "))
}
