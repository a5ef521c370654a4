// Package fetch ties each in-flight data fetch to a cancellation token. A
// newer fetch of the same kind supersedes the older one: its context is
// cancelled and its result can no longer be committed.
package fetch

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Kind groups fetches that supersede each other.
type Kind string

const (
	KindMonthSummary Kind = "month_summary"
	KindEventsByDate Kind = "events_by_date"
	KindPopular      Kind = "popular_events"
	KindSimpleMonth  Kind = "simple_month"
)

// Token identifies one fetch and the parameters that triggered it.
type Token struct {
	ID   string
	Kind Kind
	Key  string

	ctx    context.Context
	cancel context.CancelFunc
}

// Context is cancelled when the token is superseded or released.
func (t *Token) Context() context.Context { return t.ctx }

// Cancelled reports whether the token can no longer commit.
func (t *Token) Cancelled() bool { return t.ctx.Err() != nil }

// Coordinator tracks the current token per kind.
type Coordinator struct {
	mu      sync.Mutex
	current map[Kind]*Token
	logger  *zap.Logger
}

// NewCoordinator constructs an empty coordinator.
func NewCoordinator(logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Coordinator{current: map[Kind]*Token{}, logger: logger}
}

// Begin issues a token for kind and cancels the one it replaces.
func (c *Coordinator) Begin(parent context.Context, kind Kind, key string) *Token {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := context.WithCancel(parent)
	tok := &Token{ID: uuid.NewString(), Kind: kind, Key: key, ctx: ctx, cancel: cancel}

	c.mu.Lock()
	prev := c.current[kind]
	c.current[kind] = tok
	c.mu.Unlock()

	if prev != nil {
		prev.cancel()
		c.logger.Debug("superseded fetch",
			zap.String("kind", string(kind)),
			zap.String("token", prev.ID),
			zap.String("previous_key", prev.Key),
			zap.String("key", key),
		)
	}
	return tok
}

// Commit runs apply only while tok is still current and not cancelled, then
// releases it. apply runs under the coordinator lock so a concurrent Begin
// cannot interleave with it.
func (c *Coordinator) Commit(tok *Token, apply func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current[tok.Kind] != tok || tok.Cancelled() {
		c.logger.Debug("discarded stale fetch result", zap.String("kind", string(tok.Kind)), zap.String("token", tok.ID))
		return false
	}
	if apply != nil {
		apply()
	}
	delete(c.current, tok.Kind)
	tok.cancel()
	return true
}

// Current returns the in-flight token of kind, if any.
func (c *Coordinator) Current(kind Kind) *Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current[kind]
}

// Cancel aborts the in-flight fetch of kind.
func (c *Coordinator) Cancel(kind Kind) {
	c.mu.Lock()
	tok := c.current[kind]
	delete(c.current, kind)
	c.mu.Unlock()
	if tok != nil {
		tok.cancel()
	}
}

// CancelAll aborts every in-flight fetch.
func (c *Coordinator) CancelAll() {
	c.mu.Lock()
	tokens := c.current
	c.current = map[Kind]*Token{}
	c.mu.Unlock()
	for _, tok := range tokens {
		tok.cancel()
	}
}

// Run performs fetch under a fresh token and hands its outcome to commit if
// the token is still current when fetch returns. It reports whether commit ran.
func Run[T any](ctx context.Context, c *Coordinator, kind Kind, key string, fetch func(context.Context) (T, error), commit func(T, error)) bool {
	tok := c.Begin(ctx, kind, key)
	value, err := fetch(tok.Context())
	return c.Commit(tok, func() { commit(value, err) })
}
