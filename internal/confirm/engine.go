package confirm

import (
	"context"
	"fmt"
	"time"

	"aria/internal/observability"
)

// DefaultMaxAge is how long an unconfirmed action stays reachable before the
// expiry sweep removes it.
const DefaultMaxAge = time.Hour

// ExecutionPayload is what Confirm hands back to the dispatch layer. The
// engine never executes anything itself; the caller passes the payload to the
// workspace client.
type ExecutionPayload struct {
	Kind         ActionKind
	Data         map[string]any
	CachedLookup map[string]any
}

// CreateOptions carries optional state attached to a new pending action.
type CreateOptions struct {
	// SessionID scopes the action to the conversation that proposed it.
	// When set, edit/confirm/cancel calls from other sessions report
	// ErrActionNotFound.
	SessionID string
	// CachedLookup is a previously resolved recipient identity, stored so
	// execution can skip a second directory search.
	CachedLookup map[string]any
}

// Engine is the confirmation state machine. Per-id operations are
// linearizable through the store's per-id locking; operations on different
// ids never block each other.
type Engine struct {
	store   Store
	logger  *observability.Logger
	metrics *observability.MetricsCollector
	now     func() time.Time
	newID   func(time.Time) string
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock injects a clock, used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDGenerator injects an id generator, used by tests.
func WithIDGenerator(gen func(time.Time) string) Option {
	return func(e *Engine) { e.newID = gen }
}

// NewEngine creates a confirmation engine over the given store.
func NewEngine(store Store, logger *observability.Logger, metrics *observability.MetricsCollector, opts ...Option) *Engine {
	e := &Engine{
		store:   store,
		logger:  observability.OrNop(logger).With("component", "confirm"),
		metrics: metrics,
		now:     time.Now,
		newID:   newActionID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// CreatePreview stores a new pending action and returns its display preview.
// The raw data is not validated beyond the kind check; field-level validation
// belongs to the dispatch layer and the workspace client.
func (e *Engine) CreatePreview(ctx context.Context, kind ActionKind, data map[string]any, opts CreateOptions) (Preview, error) {
	if _, ok := SpecFor(kind); !ok {
		return Preview{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	now := e.now()
	action := &PendingAction{
		ID:           e.newID(now),
		Kind:         kind,
		Status:       StatusPending,
		SessionID:    opts.SessionID,
		OriginalData: copyData(data),
		CachedLookup: copyData(opts.CachedLookup),
		CreatedAt:    now,
	}
	e.store.Put(action)

	e.logger.InfoContext(ctx, "pending action created", "action_id", action.ID, "kind", kind)
	e.metrics.RecordActionCreated(ctx, string(kind))

	return BuildPreview(kind, action.ID, action.Status, action.OriginalData)
}

// Edit overlays field edits onto the pending action and returns the updated
// preview. Every edited field must be on the kind's editable list; otherwise
// the call fails with FieldNotEditableError and nothing is applied.
func (e *Engine) Edit(ctx context.Context, id, sessionID string, edits map[string]any) (Preview, error) {
	updated, err := e.store.Update(id, func(action *PendingAction) error {
		if !e.ownedBy(action, sessionID) {
			return ErrActionNotFound
		}
		spec, ok := SpecFor(action.Kind)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownKind, action.Kind)
		}
		// All-or-nothing: reject the whole call before touching anything.
		for field := range edits {
			if !spec.editable(field) {
				return &FieldNotEditableError{Kind: action.Kind, Field: field}
			}
		}
		// First edit starts from a full copy of the original so fields the
		// user did not re-specify survive into the effective data.
		if action.EditedData == nil {
			action.EditedData = copyData(action.OriginalData)
		}
		for field, value := range edits {
			action.EditedData[field] = value
		}
		action.Status = StatusEdited
		action.EditedAt = e.now()
		return nil
	})
	if err != nil {
		return Preview{}, err
	}

	e.logger.InfoContext(ctx, "pending action edited", "action_id", id, "fields", len(edits))
	return BuildPreview(updated.Kind, updated.ID, updated.Status, updated.EffectiveData())
}

// Confirm removes the pending action and returns the payload the dispatch
// layer should execute. A second confirm of the same id reports
// ErrActionNotFound.
func (e *Engine) Confirm(ctx context.Context, id, sessionID string) (ExecutionPayload, error) {
	// Ownership is checked before removal so a foreign session cannot
	// destroy another session's pending action by probing ids.
	if action, ok := e.store.Get(id); !ok || !e.ownedBy(action, sessionID) {
		return ExecutionPayload{}, ErrActionNotFound
	}

	action, ok := e.store.Take(id)
	if !ok {
		return ExecutionPayload{}, ErrActionNotFound
	}
	action.Status = StatusConfirmed
	action.ConfirmedAt = e.now()

	e.logger.InfoContext(ctx, "pending action confirmed", "action_id", id, "kind", action.Kind)
	e.metrics.RecordActionResolved(ctx, string(action.Kind), "confirmed")

	return ExecutionPayload{
		Kind:         action.Kind,
		Data:         action.EffectiveData(),
		CachedLookup: action.CachedLookup,
	}, nil
}

// Cancel removes the pending action without executing it. Cancelling an id
// twice reports ErrActionNotFound the second time; callers should treat that
// as "already handled".
func (e *Engine) Cancel(ctx context.Context, id, sessionID string) error {
	if action, ok := e.store.Get(id); !ok || !e.ownedBy(action, sessionID) {
		return ErrActionNotFound
	}

	action, ok := e.store.Take(id)
	if !ok {
		return ErrActionNotFound
	}
	action.Status = StatusCancelled

	e.logger.InfoContext(ctx, "pending action cancelled", "action_id", id, "kind", action.Kind)
	e.metrics.RecordActionResolved(ctx, string(action.Kind), "cancelled")
	return nil
}

// Preview returns the current display preview for a pending action without
// modifying it.
func (e *Engine) Preview(ctx context.Context, id, sessionID string) (Preview, error) {
	action, ok := e.store.Get(id)
	if !ok || !e.ownedBy(action, sessionID) {
		return Preview{}, ErrActionNotFound
	}
	return BuildPreview(action.Kind, action.ID, action.Status, action.EffectiveData())
}

// SweepExpired removes all actions older than maxAge and returns the count.
// Invoked periodically by an external scheduler, never by request handlers.
func (e *Engine) SweepExpired(ctx context.Context, maxAge time.Duration) int {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	removed := e.store.SweepExpired(maxAge)
	if removed > 0 {
		e.logger.InfoContext(ctx, "expired pending actions swept", "removed", removed)
		e.metrics.RecordActionsExpired(ctx, removed)
	}
	return removed
}

// ownedBy enforces session scoping. Records without a session id (legacy
// callers) and calls without one (trusted in-process callers) skip the check.
func (e *Engine) ownedBy(action *PendingAction, sessionID string) bool {
	if action == nil {
		return false
	}
	if sessionID == "" || action.SessionID == "" {
		return true
	}
	return action.SessionID == sessionID
}
