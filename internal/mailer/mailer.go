package mailer

import "context"

// Attachment is a single file carried by a Message. Content is the base64
// encoding of the raw file bytes, per the mail capability contract.
type Attachment struct {
	Filename    string
	Content     string
	ContentType string
	Encoding    string
}

// Message is a fully-prepared email ready for dispatch.
type Message struct {
	To          string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Sender is the mail-delivery capability. Implementations either complete the
// send or return an error; retries and delivery guarantees are theirs to own.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
