package familycode

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"tribeboard/pkg/logger"
)

// Config tunes one Service instance. Zero values fall back to the
// defaults below.
type Config struct {
	// MaxAttempts bounds the number of genuine collisions (local or
	// confirmed remote) tolerated before Generate gives up. Must stay
	// small and finite.
	MaxAttempts int

	// CheckRemote controls whether the remote store is consulted at all.
	CheckRemote bool

	// RemoteFailureThreshold is the number of consecutive unreachable
	// results after which the call downgrades to local-only checking.
	RemoteFailureThreshold int

	// BackoffBase and BackoffCap bound the exponential delay applied
	// between consecutive unreachable results.
	BackoffBase time.Duration
	BackoffCap  time.Duration
}

const (
	defaultMaxAttempts            = 5
	defaultRemoteFailureThreshold = 3
	defaultBackoffBase            = 100 * time.Millisecond
	defaultBackoffCap             = 2 * time.Second
)

// Service produces family codes verified unique against the local store
// and, when reachable, the remote store. It holds no state between calls
// and never writes to either store; committing a returned code is the
// caller's responsibility.
type Service struct {
	local  LocalStore
	remote RemoteStore
	cfg    Config
	log    logger.Logger
	intN   func(n int) int
}

type Option func(*Service)

// WithRandSource replaces the pseudorandom source used for candidate
// draws. Tests use this with a deterministically seeded source.
func WithRandSource(r *rand.Rand) Option {
	return func(s *Service) {
		s.intN = r.Intn
	}
}

func NewService(local LocalStore, remote RemoteStore, cfg Config, log logger.Logger, opts ...Option) *Service {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.RemoteFailureThreshold <= 0 {
		cfg.RemoteFailureThreshold = defaultRemoteFailureThreshold
	}
	if cfg.BackoffBase <= 0 {
		cfg.BackoffBase = defaultBackoffBase
	}
	if cfg.BackoffCap <= 0 {
		cfg.BackoffCap = defaultBackoffCap
	}
	if remote == nil {
		cfg.CheckRemote = false
	}

	s := &Service{
		local:  local,
		remote: remote,
		cfg:    cfg,
		log:    log,
		intN:   rand.Intn,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate draws candidates until one is confirmed unique or MaxAttempts
// genuine collisions have been consumed. An unreachable remote does not
// consume an attempt: it backs off and, past RemoteFailureThreshold
// consecutive failures, the rest of the call runs local-only and the
// result carries Degraded=true. Local store errors propagate unchanged.
func (s *Service) Generate(ctx context.Context) (Result, error) {
	checkRemote := s.cfg.CheckRemote
	degraded := false
	unreachableStreak := 0
	used := 0
	drawn := 0

	for used < s.cfg.MaxAttempts {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		candidate := s.newCandidate()
		drawn++
		if !ValidateFormat(candidate) {
			return Result{}, fmt.Errorf("generated malformed code %q", candidate)
		}

		taken, err := s.local.ExistsByCode(ctx, candidate)
		if err != nil {
			return Result{}, fmt.Errorf("local code lookup: %w", err)
		}
		if taken {
			used++
			s.observe(Attempt{Candidate: candidate, Outcome: OutcomeLocalCollision, Index: drawn})
			continue
		}

		if !checkRemote {
			s.observe(Attempt{Candidate: candidate, Outcome: OutcomeUnique, Index: drawn})
			return Result{Code: candidate, Degraded: degraded, Attempts: drawn}, nil
		}

		lookup, err := s.remote.ExistsByCode(ctx, candidate)
		if err != nil {
			return Result{}, err
		}

		switch lookup {
		case RemoteNotFound:
			s.observe(Attempt{Candidate: candidate, Outcome: OutcomeUnique, Index: drawn})
			return Result{Code: candidate, Degraded: degraded, Attempts: drawn}, nil

		case RemoteFound:
			used++
			unreachableStreak = 0
			s.observe(Attempt{Candidate: candidate, Outcome: OutcomeRemoteCollision, Index: drawn})

		case RemoteUnreachable:
			unreachableStreak++
			s.observe(Attempt{Candidate: candidate, Outcome: OutcomeRemoteUnreachable, Index: drawn})
			if unreachableStreak >= s.cfg.RemoteFailureThreshold {
				checkRemote = false
				degraded = true
				s.log.Warn("family code: remote store unreachable, continuing local-only",
					"consecutive_failures", unreachableStreak)
				continue
			}
			if err := sleepContext(ctx, s.backoff(unreachableStreak)); err != nil {
				return Result{}, err
			}
		}
	}

	s.log.Warn("family code: generation exhausted", "attempts", used)
	return Result{}, ErrExhausted
}

func (s *Service) newCandidate() string {
	var b strings.Builder
	b.Grow(GeneratedLength)
	for i := 0; i < GeneratedLength; i++ {
		b.WriteByte(Alphabet[s.intN(len(Alphabet))])
	}
	return b.String()
}

// backoff doubles the base delay per consecutive remote failure, capped.
func (s *Service) backoff(failures int) time.Duration {
	delay := s.cfg.BackoffBase
	for i := 1; i < failures; i++ {
		delay *= 2
		if delay >= s.cfg.BackoffCap {
			return s.cfg.BackoffCap
		}
	}
	if delay > s.cfg.BackoffCap {
		return s.cfg.BackoffCap
	}
	return delay
}

func (s *Service) observe(attempt Attempt) {
	s.log.Debug("family code: attempt",
		"outcome", string(attempt.Outcome),
		"attempt", attempt.Index,
		"candidate", attempt.Candidate)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
