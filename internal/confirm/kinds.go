// Package confirm implements the confirmation workflow for side-effecting
// workspace actions. Gated operations (send an email, send a chat message,
// delete either) are intercepted, stored as pending actions, previewed to the
// user, and only handed back for execution after an explicit confirm.
package confirm

// ActionKind identifies a confirmation-gated operation type.
type ActionKind string

const (
	KindSendEmail         ActionKind = "send_email"
	KindSendChatMessage   ActionKind = "send_chat_message"
	KindDeleteEmail       ActionKind = "delete_email"
	KindDeleteChatMessage ActionKind = "delete_chat_message"
)

// Well-known field names shared between the tool dispatch layer and the
// preview formatter.
const (
	FieldRecipientName  = "recipientName"
	FieldRecipientEmail = "recipientEmailAddress"
	FieldSubject        = "subject"
	FieldBody           = "body"
	FieldCCRecipients   = "ccRecipients"
	FieldMessageText    = "messageText"
	FieldSender         = "sender"
	FieldMessagePreview = "messagePreview"
)

// KindSpec declares how a kind is titled, which fields the preview shows and
// which of those the user may edit before confirming.
type KindSpec struct {
	DisplayTitle   string
	EditableFields []string
	DisplayFields  []string
}

// kindSpecs is resolved once at startup; DisplayFields is always a superset
// of EditableFields.
var kindSpecs = map[ActionKind]KindSpec{
	KindSendEmail: {
		DisplayTitle:   "Send Email",
		EditableFields: []string{FieldRecipientName, FieldSubject, FieldBody, FieldCCRecipients},
		DisplayFields:  []string{FieldRecipientName, FieldSubject, FieldBody, FieldCCRecipients},
	},
	KindSendChatMessage: {
		DisplayTitle:   "Send Chat Message",
		EditableFields: []string{FieldMessageText},
		DisplayFields:  []string{FieldRecipientName, FieldMessageText},
	},
	KindDeleteEmail: {
		DisplayTitle:   "Delete Email",
		EditableFields: nil,
		DisplayFields:  []string{FieldSubject, FieldSender},
	},
	KindDeleteChatMessage: {
		DisplayTitle:   "Delete Chat Message",
		EditableFields: nil,
		DisplayFields:  []string{FieldRecipientName, FieldMessagePreview},
	},
}

// SpecFor returns the declaration for a kind.
func SpecFor(kind ActionKind) (KindSpec, bool) {
	spec, ok := kindSpecs[kind]
	return spec, ok
}

// Kinds returns all registered action kinds.
func Kinds() []ActionKind {
	kinds := make([]ActionKind, 0, len(kindSpecs))
	for kind := range kindSpecs {
		kinds = append(kinds, kind)
	}
	return kinds
}

func (s KindSpec) editable(field string) bool {
	for _, f := range s.EditableFields {
		if f == field {
			return true
		}
	}
	return false
}
