package confirm

import (
	"errors"
	"fmt"
)

// ErrUnknownKind reports a CreatePreview call with an unregistered action kind.
var ErrUnknownKind = errors.New("unknown action kind")

// ErrActionNotFound reports an edit/confirm/cancel referencing a missing or
// already-terminal action id. The same error covers "never existed" and
// "already handled" so callers cannot distinguish the two.
var ErrActionNotFound = errors.New("pending action not found")

// FieldNotEditableError reports an edit touching a field outside the kind's
// editable set. No edits from the offending call are applied.
type FieldNotEditableError struct {
	Kind  ActionKind
	Field string
}

func (e *FieldNotEditableError) Error() string {
	return fmt.Sprintf("field %q is not editable for action kind %q", e.Field, e.Kind)
}

// IsFieldNotEditable reports whether err is a FieldNotEditableError and, if
// so, returns the offending field name.
func IsFieldNotEditable(err error) (string, bool) {
	var fieldErr *FieldNotEditableError
	if errors.As(err, &fieldErr) {
		return fieldErr.Field, true
	}
	return "", false
}
