package notifications

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrCircuitOpen = errors.New("notifier circuit open")

type ProtectedNotifierConfig struct {
	Timeout          time.Duration // per send
	FailureThreshold int           // consecutive failures that open the circuit
	Cooldown         time.Duration // how long it stays open before one trial call is let through
}

// ProtectedNotifier wraps a delivery backend with a send timeout and a circuit
// breaker, so a dead mail provider costs callers nothing once it has failed
// FailureThreshold times in a row.
type ProtectedNotifier struct {
	inner Notifier
	cfg   ProtectedNotifierConfig
	now   func() time.Time

	mu       sync.Mutex
	failures int
	openedAt time.Time // zero while closed
	trialing bool
}

func NewProtectedNotifier(inner Notifier, cfg ProtectedNotifierConfig) *ProtectedNotifier {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 3 * time.Second
	}
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}
	return &ProtectedNotifier{inner: inner, cfg: cfg, now: time.Now}
}

func (n *ProtectedNotifier) SendPasswordReset(ctx context.Context, input SendPasswordResetInput) error {
	if err := n.acquire(); err != nil {
		return err
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.cfg.Timeout)
	defer cancel()

	err := n.inner.SendPasswordReset(sendCtx, input)

	// the caller giving up says nothing about the backend
	n.release(err, ctx.Err() != nil)
	return err
}

// State reports closed, open or half_open.
func (n *ProtectedNotifier) State() string {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch {
	case n.openedAt.IsZero():
		return "closed"
	case n.trialing || n.now().Sub(n.openedAt) >= n.cfg.Cooldown:
		return "half_open"
	default:
		return "open"
	}
}

func (n *ProtectedNotifier) acquire() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.openedAt.IsZero() {
		return nil
	}
	if n.trialing || n.now().Sub(n.openedAt) < n.cfg.Cooldown {
		return ErrCircuitOpen
	}
	n.trialing = true
	return nil
}

func (n *ProtectedNotifier) release(err error, callerGone bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	wasTrial := n.trialing
	n.trialing = false

	switch {
	case err == nil:
		n.failures = 0
		n.openedAt = time.Time{}
	case callerGone:
	case wasTrial:
		n.openedAt = n.now()
	default:
		n.failures++
		if n.failures >= n.cfg.FailureThreshold {
			n.openedAt = n.now()
		}
	}
}
