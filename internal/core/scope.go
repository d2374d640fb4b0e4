package core

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Scope bounds one verification scope around a single owning goroutine. It
// owns a fresh root double, tracks swapped-in replacements so they can be
// restored at exit, and aggregates pop errors raised on other goroutines.
type Scope struct {
	id     string
	double *Double
	logger *zap.Logger

	mu       sync.Mutex
	restores []func()
}

// NewScope creates a verification scope with its own root double. The scope
// id is only used to correlate trace logs.
func NewScope(opts ...Option) *Scope {
	cfg := newConfig(opts)

	return &Scope{
		id:     uuid.NewString(),
		double: New(opts...),
		logger: cfg.logger,
	}
}

// Double returns the root double owned by this scope.
func (s *Scope) Double() *Double {
	return s.double
}

// Swap installs replacement at target for the duration of the scope, saving
// the previous value. Swaps are restored in reverse order when Run exits,
// whether the body returned cleanly, returned an error, or panicked. State
// is scoped to this Scope object, never process-global, so nested scopes
// compose.
func Swap[T any](s *Scope, target *T, replacement T) {
	previous := *target
	*target = replacement

	s.mu.Lock()
	s.restores = append(s.restores, func() { *target = previous })
	s.mu.Unlock()
}

// Run executes body against the scope's double and enforces the exit
// protocol:
//
//   - pop errors recorded on goroutines other than the one running Run are
//     aggregated into a QMockErrorsInThreads, with any body error attached
//     as its cause;
//   - with no cross-goroutine errors, a body error propagates unchanged;
//   - with a clean body, the queue must be empty.
//
// Pop errors on the owning goroutine are never aggregated here: they already
// surfaced synchronously inside the body. A body error pre-empts the
// empty-queue check entirely.
func (s *Scope) Run(body func(*Double) error) error {
	owner := goroutineID()

	s.logger.Debug("verification scope started",
		zap.String("scope_id", s.id), zap.Uint64("owner_goroutine", owner))

	defer s.restoreAll()

	bodyErr := body(s.double)

	var threadErrs []PopError

	for _, rec := range s.double.Queue().PopErrors() {
		if rec.GoroutineID != owner {
			threadErrs = append(threadErrs, rec)
		}
	}

	if len(threadErrs) > 0 {
		s.logger.Debug("verification scope collected cross-goroutine errors",
			zap.String("scope_id", s.id), zap.Int("count", len(threadErrs)))

		return &QMockErrorsInThreads{Errors: threadErrs, Cause: bodyErr}
	}

	if bodyErr != nil {
		return bodyErr
	}

	return s.double.Queue().AssertEmpty()
}

// Run creates a scope, executes body in it, and returns the scope outcome.
func Run(body func(*Double) error, opts ...Option) error {
	return NewScope(opts...).Run(body)
}

func (s *Scope) restoreAll() {
	s.mu.Lock()
	restores := s.restores
	s.restores = nil
	s.mu.Unlock()

	for i := len(restores) - 1; i >= 0; i-- {
		restores[i]()
	}
}
