package auth

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Refresher keeps a session warm with a single timer set to fire RefreshSkew
// before the current token expires. After each refresh the timer is re-armed
// for the new token. A failed refresh stops the refresher.
type Refresher struct {
	session *Session

	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	now     func() time.Time
}

func NewRefresher(session *Session) *Refresher {
	return &Refresher{session: session, now: time.Now}
}

// Start arms the timer from the persisted token. It returns ErrNotLoggedIn
// when there is nothing to refresh.
func (r *Refresher) Start(ctx context.Context) error {
	token, err := r.session.Stored(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.stopped = false
	r.mu.Unlock()

	r.schedule(ctx, token.ExpiresOn)
	return nil
}

func (r *Refresher) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stopped = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

func (r *Refresher) schedule(ctx context.Context, expiresOn time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.stopped {
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}

	delay := max(expiresOn.Add(-r.session.Skew()).Sub(r.now()), 0)
	zerolog.Ctx(ctx).Debug().Dur("in", delay).Msg("token refresh scheduled")
	r.timer = time.AfterFunc(delay, func() { r.fire(ctx) })
}

func (r *Refresher) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	token, err := r.session.Refresh(ctx)
	if err != nil {
		zerolog.Ctx(ctx).Error().Err(err).Msg("token refresh failed")
		r.Stop()
		return
	}
	r.schedule(ctx, token.ExpiresOn)
}
