package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"darbot/internal/booking"
)

const recoveryInterval = time.Minute

// FailoverStore serves from a primary store (redis) and degrades to the
// fallback (memory) when the primary fails. While the primary is marked
// down it is retried at most once per recoveryInterval instead of on every
// request.
type FailoverStore struct {
	primary  Store
	fallback Store
	logger   *zerolog.Logger

	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverStore(primary, fallback Store, logger *zerolog.Logger) *FailoverStore {
	return &FailoverStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// usePrimary decides whether this request should try the primary store.
func (f *FailoverStore) usePrimary() bool {
	if !f.isDown.Load() {
		return true
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.lastCheck) < recoveryInterval {
		return false
	}
	f.lastCheck = time.Now()
	return true
}

func (f *FailoverStore) markDown(op string, err error) {
	if f.isDown.CompareAndSwap(false, true) {
		f.logger.Warn().Err(err).Str("op", op).Msg("Primary session store down, using fallback")
	}
	f.mu.Lock()
	f.lastCheck = time.Now()
	f.mu.Unlock()
}

func (f *FailoverStore) markUp() {
	if f.isDown.CompareAndSwap(true, false) {
		f.logger.Info().Msg("Primary session store recovered")
	}
}

func (f *FailoverStore) Get(ctx context.Context, userID int64) (*booking.Session, error) {
	if f.usePrimary() {
		s, err := f.primary.Get(ctx, userID)
		if err == nil {
			f.markUp()
			return s, nil
		}
		f.markDown("get", err)
	}
	return f.fallback.Get(ctx, userID)
}

func (f *FailoverStore) Set(ctx context.Context, session *booking.Session) error {
	// The fallback is always written so a failover right after Set does
	// not lose the dialog.
	if err := f.fallback.Set(ctx, session); err != nil {
		return err
	}
	if f.usePrimary() {
		if err := f.primary.Set(ctx, session); err != nil {
			f.markDown("set", err)
			return nil
		}
		f.markUp()
	}
	return nil
}

func (f *FailoverStore) Delete(ctx context.Context, userID int64) error {
	if err := f.fallback.Delete(ctx, userID); err != nil {
		return err
	}
	if f.usePrimary() {
		if err := f.primary.Delete(ctx, userID); err != nil {
			f.markDown("delete", err)
			return nil
		}
		f.markUp()
	}
	return nil
}
