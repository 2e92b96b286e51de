package models

import (
	"time"
)

// MessageHeaders holds the normalized headers of a fetched email message.
type MessageHeaders struct {
	From      string   `json:"from"`
	To        []string `json:"to,omitempty"`
	Cc        []string `json:"cc,omitempty"`
	Bcc       []string `json:"bcc,omitempty"`
	Subject   string   `json:"subject"`
	Date      string   `json:"date,omitempty"`
	MessageID string   `json:"message_id,omitempty"`
	References string  `json:"references,omitempty"`
}

// MessageAttachment describes an attachment on a fetched message.
// Only metadata is carried; content stays with the provider.
type MessageAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type,omitempty"`
	Size        int    `json:"size,omitempty"`
}

// ParsedMessage is a normalized email message fetched from a provider.
// It is immutable once fetched; the briefing pipeline only annotates it
// with a derived score.
type ParsedMessage struct {
	ID          string              `json:"id"`
	ThreadID    string              `json:"thread_id,omitempty"`
	Headers     MessageHeaders      `json:"headers"`
	Snippet     string              `json:"snippet,omitempty"`
	BodyText    string              `json:"body_text,omitempty"`
	BodyHTML    string              `json:"body_html,omitempty"`
	Attachments []MessageAttachment `json:"attachments,omitempty"`
	Labels      []string            `json:"labels,omitempty"`
	ReceivedAt  time.Time           `json:"received_at,omitempty"`
}
