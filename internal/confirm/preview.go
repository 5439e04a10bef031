package confirm

import (
	"fmt"
	"strings"
)

// PlaceholderNone is rendered for display fields absent from the action data
// so the preview shape stays stable across calls.
const PlaceholderNone = "None"

// Preview is the display-safe projection of a pending action. Only fields on
// the kind's display allowlist appear; everything else in the raw data
// (resolved addresses, API payloads, tokens) is filtered out.
type Preview struct {
	ID             string            `json:"id"`
	Kind           ActionKind        `json:"kind"`
	Title          string            `json:"title"`
	Status         Status            `json:"status"`
	Fields         map[string]string `json:"fields"`
	EditableFields []string          `json:"editable_fields"`
	Summary        string            `json:"summary"`
}

// BuildPreview formats a display preview for an action. It is pure: the same
// inputs always produce the same preview and nothing is mutated.
func BuildPreview(kind ActionKind, id string, status Status, data map[string]any) (Preview, error) {
	spec, ok := SpecFor(kind)
	if !ok {
		return Preview{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}

	fields := make(map[string]string, len(spec.DisplayFields))
	for _, name := range spec.DisplayFields {
		fields[name] = displayValue(data[name])
	}

	return Preview{
		ID:             id,
		Kind:           kind,
		Title:          spec.DisplayTitle,
		Status:         status,
		Fields:         fields,
		EditableFields: append([]string(nil), spec.EditableFields...),
		Summary:        summarize(kind, fields),
	}, nil
}

// displayValue renders a raw field value for display. String slices (cc
// lists) are joined; absent values render as the stable placeholder.
func displayValue(value any) string {
	switch v := value.(type) {
	case nil:
		return PlaceholderNone
	case string:
		if v == "" {
			return PlaceholderNone
		}
		return v
	case []string:
		if len(v) == 0 {
			return PlaceholderNone
		}
		return strings.Join(v, ", ")
	case []any:
		if len(v) == 0 {
			return PlaceholderNone
		}
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprintf("%v", item))
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

func summarize(kind ActionKind, fields map[string]string) string {
	switch kind {
	case KindSendEmail:
		return fmt.Sprintf("Send email to %s with subject: %q",
			fields[FieldRecipientName], fields[FieldSubject])
	case KindSendChatMessage:
		return fmt.Sprintf("Send chat message to %s: %q",
			fields[FieldRecipientName], truncate(fields[FieldMessageText], 80))
	case KindDeleteEmail:
		return fmt.Sprintf("Delete email %q from %s",
			fields[FieldSubject], fields[FieldSender])
	case KindDeleteChatMessage:
		return fmt.Sprintf("Delete chat message to %s: %q",
			fields[FieldRecipientName], truncate(fields[FieldMessagePreview], 80))
	default:
		return string(kind)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
