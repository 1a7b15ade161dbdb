// Package gemerr defines the build's error-kind taxonomy as sentinel
// values wrapped with github.com/pkg/errors context, plus a skipped-files
// accumulator that makes locally recovered errors observable to callers of
// the data-parallel harness.
package gemerr

import (
	"sync"

	"github.com/pkg/errors"
)

// Kind is one of the five error classes this package recognizes. It is not
// a Go error type itself — callers match with errors.Is against the
// sentinels below, which is how the taxonomy composes with
// github.com/pkg/errors wrapping.
type Kind string

const (
	KindMalformedVocabulary Kind = "malformed_vocabulary"
	KindBackendUnavailable  Kind = "backend_unavailable"
	KindExternalService     Kind = "external_service"
	KindScanInterrupted     Kind = "scan_interrupted"
	KindArgument            Kind = "argument"
)

// Sentinel errors for each taxonomy member. Wrap with errors.Wrap/Wrapf to
// attach context; unwrap with errors.Is to classify.
var (
	// ErrMalformedVocabulary: DocFreq invariants violated; fatal to the operation.
	ErrMalformedVocabulary = errors.New("malformed vocabulary")
	// ErrBackendUnavailable: transport failure to the backend store.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrExternalService: AST or feature-extraction service failure, locally recovered.
	ErrExternalService = errors.New("external service error")
	// ErrScanInterrupted: a report scan aborted partway through.
	ErrScanInterrupted = errors.New("scan interrupted")
	// ErrArgument: CLI or configuration error.
	ErrArgument = errors.New("argument error")
)

// kindOf maps a Kind to its sentinel.
func kindOf(k Kind) error {
	switch k {
	case KindMalformedVocabulary:
		return ErrMalformedVocabulary
	case KindBackendUnavailable:
		return ErrBackendUnavailable
	case KindExternalService:
		return ErrExternalService
	case KindScanInterrupted:
		return ErrScanInterrupted
	case KindArgument:
		return ErrArgument
	default:
		return errors.New("unknown error kind")
	}
}

// ExitCode maps err to its process exit code: argument errors are a usage
// mistake (2), backend unavailability is the
// distinguished 142 ("128 + SIGALRM(14)", the same convention a process
// killed by its backend dependency timing out would report), malformed
// vocabulary is 3, and anything else (including nil) falls back to the
// ordinary success/failure binary.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, ErrArgument):
		return 2
	case errors.Is(err, ErrMalformedVocabulary):
		return 3
	case errors.Is(err, ErrBackendUnavailable):
		return 142
	default:
		return 1
	}
}

// Counters is a per-run skipped_files[error_class] accumulator. It is safe
// for concurrent use, since row computations may run in parallel on the
// data-parallel harness.
type Counters struct {
	mu      sync.Mutex
	skipped map[Kind]int
}

// NewCounters returns an empty accumulator.
func NewCounters() *Counters {
	return &Counters{skipped: make(map[Kind]int)}
}

// Skip records one file skipped due to k and returns a wrapped error
// describing why, so callers can log and continue the build.
func (c *Counters) Skip(k Kind, reason string) error {
	c.mu.Lock()
	c.skipped[k]++
	c.mu.Unlock()
	return errors.Wrap(kindOf(k), reason)
}

// Snapshot returns a point-in-time copy of the skip counts, keyed by error
// class, for the report footer.
func (c *Counters) Snapshot() map[Kind]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[Kind]int, len(c.skipped))
	for k, v := range c.skipped {
		out[k] = v
	}
	return out
}

// Total returns the sum of all skip counts.
func (c *Counters) Total() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := 0
	for _, v := range c.skipped {
		total += v
	}
	return total
}
