package graph

import "time"

// Contact is a directory entry resolved from a people search.
type Contact struct {
	ID           string   `json:"id"`
	DisplayName  string   `json:"displayName"`
	EmailAddress string   `json:"emailAddress"`
	JobTitle     string   `json:"jobTitle,omitempty"`
	Aliases      []string `json:"aliases,omitempty"`
}

// EmailAddressField is the nested address shape the mail API uses.
type EmailAddressField struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// Recipient wraps an email address for mail payloads.
type Recipient struct {
	EmailAddress EmailAddressField `json:"emailAddress"`
}

// MailMessage is one inbox message.
type MailMessage struct {
	ID               string    `json:"id"`
	Subject          string    `json:"subject"`
	BodyPreview      string    `json:"bodyPreview"`
	From             Recipient `json:"from"`
	ToRecipients     []Recipient `json:"toRecipients,omitempty"`
	ReceivedDateTime time.Time `json:"receivedDateTime"`
	IsRead           bool      `json:"isRead"`
}

// ItemBody is the body payload for outgoing mail and events.
type ItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// OutgoingMail is the sendMail request payload.
type OutgoingMail struct {
	Subject      string      `json:"subject"`
	Body         ItemBody    `json:"body"`
	ToRecipients []Recipient `json:"toRecipients"`
	CcRecipients []Recipient `json:"ccRecipients,omitempty"`
}

// Event is a calendar event.
type Event struct {
	ID       string        `json:"id,omitempty"`
	Subject  string        `json:"subject"`
	Body     *ItemBody     `json:"body,omitempty"`
	Start    EventDateTime `json:"start"`
	End      EventDateTime `json:"end"`
	Location *Location     `json:"location,omitempty"`
	Attendees []Attendee   `json:"attendees,omitempty"`
}

// EventDateTime pairs a local timestamp with its timezone name.
type EventDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

// Location names where an event takes place.
type Location struct {
	DisplayName string `json:"displayName"`
}

// Attendee is an invited participant.
type Attendee struct {
	EmailAddress EmailAddressField `json:"emailAddress"`
	Type         string            `json:"type,omitempty"`
}

// Chat is a one-on-one or group conversation.
type Chat struct {
	ID      string `json:"id"`
	Topic   string `json:"topic,omitempty"`
	Type    string `json:"chatType"`
	Members []ChatMember `json:"members,omitempty"`
}

// ChatMember identifies a chat participant.
type ChatMember struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

// ChatMessage is one message inside a chat.
type ChatMessage struct {
	ID              string    `json:"id"`
	Content         string    `json:"content"`
	From            string    `json:"from"`
	CreatedDateTime time.Time `json:"createdDateTime"`
}

// DriveItem is a file or folder in the user's drive.
type DriveItem struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	WebURL               string    `json:"webUrl,omitempty"`
	Size                 int64     `json:"size,omitempty"`
	IsFolder             bool      `json:"isFolder,omitempty"`
	LastModifiedDateTime time.Time `json:"lastModifiedDateTime"`
}

// listResponse is the standard collection envelope.
type listResponse[T any] struct {
	Value    []T    `json:"value"`
	NextLink string `json:"@odata.nextLink,omitempty"`
}
