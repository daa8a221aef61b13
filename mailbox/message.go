package mailbox

import (
	"bytes"
	"encoding/base64"
	"fmt"

	"gopkg.in/gomail.v2"
)

// Message is one plain-text outreach email.
type Message struct {
	From    string
	To      string
	Subject string
	Body    string
}

// Receipt identifies a delivered message in the provider.
type Receipt struct {
	MessageID string `json:"message_id"`
	ThreadID  string `json:"thread_id"`
}

// BuildRawMessage renders msg as an RFC 2822 text/plain message and encodes it
// with unpadded base64url, the form the Gmail API expects in Message.Raw.
func BuildRawMessage(msg Message) (string, error) {
	if msg.To == "" {
		return "", fmt.Errorf("recipient is required")
	}

	m := gomail.NewMessage(gomail.SetCharset("UTF-8"))
	if msg.From != "" {
		m.SetHeader("From", msg.From)
	}
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return "", fmt.Errorf("render message: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes()), nil
}
