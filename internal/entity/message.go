package entity

import "time"

// Attachment is a decoded mail attachment. Only PDF attachments survive
// mailbox decoding; everything else is dropped before it gets here.
type Attachment struct {
	Filename string
	Data     []byte
}

// Message is the normalized form of one fetched mail message. Immutable
// once built; it lives for a single run and is never persisted.
type Message struct {
	ID          string
	Subject     string
	From        string
	Date        time.Time // zero when the Date header did not parse
	RawDate     string    // original RFC-2822 header value
	Body        string
	Snippet     string
	Attachments []Attachment
}
