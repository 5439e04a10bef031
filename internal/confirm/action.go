package confirm

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Status tracks where a pending action is in its lifecycle. Terminal states
// (confirmed, cancelled) are never stored; the entry is removed instead.
type Status string

const (
	StatusPending   Status = "pending"
	StatusEdited    Status = "edited"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// PendingAction is the stored unit of state for one gated operation.
type PendingAction struct {
	ID        string
	Kind      ActionKind
	Status    Status
	SessionID string

	// OriginalData holds the field values exactly as first proposed.
	OriginalData map[string]any
	// EditedData, when non-nil, is a full copy of OriginalData with user
	// edits overlaid. Execution uses EditedData if present.
	EditedData map[string]any
	// CachedLookup carries a previously resolved recipient identity so
	// execution can skip a second directory search.
	CachedLookup map[string]any

	CreatedAt   time.Time
	EditedAt    time.Time
	ConfirmedAt time.Time
}

// EffectiveData returns the data execution should use: the edited overlay if
// the user changed anything, otherwise the original proposal.
func (a *PendingAction) EffectiveData() map[string]any {
	if a.EditedData != nil {
		return a.EditedData
	}
	return a.OriginalData
}

func (a *PendingAction) clone() *PendingAction {
	cp := *a
	cp.OriginalData = copyData(a.OriginalData)
	cp.EditedData = copyData(a.EditedData)
	cp.CachedLookup = copyData(a.CachedLookup)
	return &cp
}

func copyData(data map[string]any) map[string]any {
	if data == nil {
		return nil
	}
	cp := make(map[string]any, len(data))
	for k, v := range data {
		cp[k] = v
	}
	return cp
}

// newActionID generates an opaque pending-action identifier. Uniqueness comes
// from the millisecond timestamp plus a random suffix; the id is only ever
// round-tripped back by the session that created it.
func newActionID(now time.Time) string {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		// crypto/rand is documented never to fail on supported platforms;
		// fall back to the timestamp alone rather than panic.
		return fmt.Sprintf("act_%d", now.UnixNano())
	}
	return fmt.Sprintf("act_%d_%s", now.UnixMilli(), hex.EncodeToString(suffix))
}
