package numbering

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cafe/backend/internal/domain/numbering"
	"github.com/cafe/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultMaxAttempts bounds how many numbers are tried for one document
const DefaultMaxAttempts = 3

// CollisionObserver is notified whenever a generated number was already taken
type CollisionObserver interface {
	RecordNumberCollision(ctx context.Context, kind string)
}

// Allocator assigns document numbers. It asks the sequencer for the next daily
// value and hands the number to an insert callback; when the store rejects the
// number as a duplicate it retries. The last attempt uses a timestamp and random
// suffix that does not depend on the sequencer.
type Allocator struct {
	sequencer   numbering.Sequencer
	maxAttempts int
	logger      *zap.Logger
	observer    CollisionObserver
	now         func() time.Time
	suffix      func() string
}

// Option configures an Allocator
type Option func(*Allocator)

// WithMaxAttempts sets the attempt bound, values below 1 are ignored
func WithMaxAttempts(n int) Option {
	return func(a *Allocator) {
		if n >= 1 {
			a.maxAttempts = n
		}
	}
}

// WithClock overrides the time source used for fallback numbers
func WithClock(now func() time.Time) Option {
	return func(a *Allocator) {
		a.now = now
	}
}

// WithSuffix overrides the random suffix source used for fallback numbers
func WithSuffix(suffix func() string) Option {
	return func(a *Allocator) {
		a.suffix = suffix
	}
}

// WithCollisionObserver registers a collision observer
func WithCollisionObserver(o CollisionObserver) Option {
	return func(a *Allocator) {
		a.observer = o
	}
}

// NewAllocator creates an Allocator
func NewAllocator(sequencer numbering.Sequencer, logger *zap.Logger, opts ...Option) *Allocator {
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &Allocator{
		sequencer:   sequencer,
		maxAttempts: DefaultMaxAttempts,
		logger:      logger,
		now:         time.Now,
		suffix:      randomSuffix,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Allocate generates numbers for kind/date and calls insert with each until insert
// succeeds. insert must return an error matching shared.ErrDuplicateNumber when
// the number is taken; any other error stops the loop and is returned as is.
func (a *Allocator) Allocate(ctx context.Context, kind numbering.DocumentKind, date time.Time, insert func(number string) error) (string, error) {
	if date.IsZero() {
		date = a.now()
	}

	for attempt := 1; attempt <= a.maxAttempts; attempt++ {
		number := a.candidate(ctx, kind, date, attempt)

		err := insert(number)
		if err == nil {
			return number, nil
		}
		if !errors.Is(err, shared.ErrDuplicateNumber) {
			return "", err
		}

		a.logger.Warn("Document number collision, retrying",
			zap.String("kind", kind.String()),
			zap.String("number", number),
			zap.Int("attempt", attempt),
		)
		if a.observer != nil {
			a.observer.RecordNumberCollision(ctx, kind.String())
		}
	}

	return "", fmt.Errorf("%s numbering exhausted after %d attempts: %w", kind, a.maxAttempts, shared.ErrDuplicateNumber)
}

func (a *Allocator) candidate(ctx context.Context, kind numbering.DocumentKind, date time.Time, attempt int) string {
	if attempt < a.maxAttempts || a.maxAttempts == 1 {
		seq, err := a.sequencer.Next(ctx, kind, date)
		if err == nil {
			return numbering.Format(kind, date, seq)
		}
		a.logger.Warn("Sequencer unavailable, using fallback number",
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
	}
	return numbering.FormatFallback(kind, date, a.now(), a.suffix())
}

func randomSuffix() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}
