package publication

import (
	"context"
	"fmt"
	"time"

	"github.com/modvault/modvault-backend/internal/domain"
	pkglogger "github.com/modvault/modvault-backend/pkg/logger"
)

// DueStore flips due scheduled rows to published in one statement scope
type DueStore interface {
	PromoteDue(ctx context.Context, table string, now time.Time) ([]string, error)
}

// PromotedFunc runs after a table's promotions are committed
type PromotedFunc func(ctx context.Context, ct domain.ContentType, ids []string)

// Result promoted record IDs per content type
type Result map[domain.ContentType][]string

// Total number of promoted records
func (r Result) Total() int {
	n := 0
	for _, ids := range r {
		n += len(ids)
	}
	return n
}

const sweepLockKey = "publication:sweep:lock"

// Sweeper promotes scheduled records whose scheduled_at has passed
type Sweeper struct {
	store      DueStore
	locker     Locker
	lockTTL    time.Duration
	types      []domain.ContentType
	onPromoted []PromotedFunc
}

// NewSweeper locker may be nil for a single instance deployment
func NewSweeper(store DueStore, locker Locker, interval time.Duration) *Sweeper {
	if locker == nil {
		locker = NoopLocker{}
	}
	ttl := interval - time.Second
	if ttl < time.Second {
		ttl = time.Second
	}

	var types []domain.ContentType
	for _, ct := range []domain.ContentType{domain.ContentTypeApp, domain.ContentTypeGame, domain.ContentTypeBlog} {
		if ct.Allows(domain.StatusScheduled) {
			types = append(types, ct)
		}
	}

	return &Sweeper{store: store, locker: locker, lockTTL: ttl, types: types}
}

// OnPromoted registers a post-commit hook (cache invalidation, search indexing)
func (s *Sweeper) OnPromoted(fn PromotedFunc) {
	s.onPromoted = append(s.onPromoted, fn)
}

// Sweep promotes everything due at now. When another instance holds the lock
// it returns an empty result without touching the store.
func (s *Sweeper) Sweep(ctx context.Context, now time.Time) (Result, error) {
	acquired, release, err := s.locker.TryLock(ctx, sweepLockKey, s.lockTTL)
	if err != nil {
		return nil, fmt.Errorf("sweep lock: %w", err)
	}
	if !acquired {
		pkglogger.GetLogger().Debug().Msg("sweep skipped, lock held elsewhere")
		return Result{}, nil
	}
	defer release()

	start := time.Now()
	defer func() { sweepDuration.Observe(time.Since(start).Seconds()) }()

	result := Result{}
	for _, ct := range s.types {
		ids, err := s.store.PromoteDue(ctx, ct.Table(), now)
		if err != nil {
			return result, err
		}
		if len(ids) == 0 {
			continue
		}

		result[ct] = ids
		sweepPromotedTotal.WithLabelValues(ct.Table()).Add(float64(len(ids)))
		pkglogger.GetLogger().Info().
			Str("table", ct.Table()).
			Int("count", len(ids)).
			Strs("ids", ids).
			Msg("scheduled records published")

		for _, fn := range s.onPromoted {
			fn(ctx, ct, ids)
		}
	}
	return result, nil
}
