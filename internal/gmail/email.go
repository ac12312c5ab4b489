package gmail

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/url"
	"strings"

	gmail "google.golang.org/api/gmail/v1"
)

// EmailMessage represents an outgoing email.
type EmailMessage struct {
	To      []string
	Cc      []string
	Bcc     []string
	Subject string
	Body    string
	IsHTML  bool

	// Threading headers for replies.
	InReplyTo  string
	References string
}

// encodeRFC2047 encodes a header value per RFC 2047 when it contains
// non-ASCII characters, and returns it unchanged otherwise.
func encodeRFC2047(s string) string {
	for _, r := range s {
		if r > 127 {
			return mime.BEncoding.Encode("UTF-8", s)
		}
	}
	return s
}

// buildRawMessage assembles an RFC 2822 message and returns it
// base64url-encoded, the form the Gmail API expects in Message.Raw.
func buildRawMessage(msg *EmailMessage) (string, error) {
	if len(msg.To) == 0 {
		return "", fmt.Errorf("at least one recipient is required")
	}
	if msg.Subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if msg.Body == "" {
		return "", fmt.Errorf("body is required")
	}

	var b strings.Builder

	b.WriteString("To: " + strings.Join(msg.To, ", ") + "\r\n")
	if len(msg.Cc) > 0 {
		b.WriteString("Cc: " + strings.Join(msg.Cc, ", ") + "\r\n")
	}
	if len(msg.Bcc) > 0 {
		b.WriteString("Bcc: " + strings.Join(msg.Bcc, ", ") + "\r\n")
	}
	b.WriteString("Subject: " + encodeRFC2047(msg.Subject) + "\r\n")
	if msg.InReplyTo != "" {
		b.WriteString("In-Reply-To: " + msg.InReplyTo + "\r\n")
	}
	if msg.References != "" {
		b.WriteString("References: " + msg.References + "\r\n")
	}
	if msg.IsHTML {
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	} else {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	}
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("\r\n")
	b.WriteString(msg.Body)

	return base64.URLEncoding.EncodeToString([]byte(b.String())), nil
}

// SendEmail sends an email and returns the sent message ID.
func (c *Client) SendEmail(msg *EmailMessage) (string, error) {
	raw, err := buildRawMessage(msg)
	if err != nil {
		return "", err
	}

	sent, err := c.svc.Messages.Send("me", &gmail.Message{Raw: raw}).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send email: %w", err)
	}
	return sent.Id, nil
}

// CreateDraft creates a draft email. A non-empty threadID attaches the
// draft to an existing thread.
func (c *Client) CreateDraft(msg *EmailMessage, threadID string) (string, error) {
	raw, err := buildRawMessage(msg)
	if err != nil {
		return "", err
	}

	draft, err := c.svc.Drafts.Create("me", &gmail.Draft{
		Message: &gmail.Message{Raw: raw, ThreadId: threadID},
	}).Do()
	if err != nil {
		return "", fmt.Errorf("failed to create draft: %w", err)
	}
	return draft.Id, nil
}

// ReplyToEmail sends a reply within the thread of an existing message,
// carrying the In-Reply-To and References headers so mail clients thread
// it correctly.
func (c *Client) ReplyToEmail(messageID, threadID, body string, cc, bcc []string, isHTML bool) (string, error) {
	if messageID == "" {
		return "", fmt.Errorf("messageID is required")
	}
	if threadID == "" {
		return "", fmt.Errorf("threadID is required")
	}
	if body == "" {
		return "", fmt.Errorf("body is required")
	}

	original, err := c.GetMessage(messageID)
	if err != nil {
		return "", fmt.Errorf("failed to get original message: %w", err)
	}

	from := HeaderValue(original, "From")
	if from == "" {
		return "", fmt.Errorf("original message has no From header")
	}

	subject := HeaderValue(original, "Subject")
	if !strings.HasPrefix(strings.ToLower(subject), "re:") {
		subject = "Re: " + subject
	}

	originalMessageID := HeaderValue(original, "Message-ID")
	references := HeaderValue(original, "References")
	if originalMessageID != "" {
		if references != "" {
			references += " " + originalMessageID
		} else {
			references = originalMessageID
		}
	}

	raw, err := buildRawMessage(&EmailMessage{
		To:         []string{from},
		Cc:         cc,
		Bcc:        bcc,
		Subject:    subject,
		Body:       body,
		IsHTML:     isHTML,
		InReplyTo:  originalMessageID,
		References: references,
	})
	if err != nil {
		return "", err
	}

	sent, err := c.svc.Messages.Send("me", &gmail.Message{Raw: raw, ThreadId: threadID}).Do()
	if err != nil {
		return "", fmt.Errorf("failed to send reply: %w", err)
	}
	return sent.Id, nil
}

// HeaderValue extracts a header value from a Gmail message payload.
func HeaderValue(m *gmail.Message, header string) string {
	if m == nil || m.Payload == nil {
		return ""
	}
	for _, h := range m.Payload.Headers {
		if strings.EqualFold(h.Name, header) {
			return h.Value
		}
	}
	return ""
}

// WebURL returns the Gmail web interface URL for a message, scoped to the
// account when one is given.
func WebURL(messageID, account string) string {
	base := "https://mail.google.com/mail/u/0/#all/" + url.PathEscape(messageID)
	if account != "" && account != "default" {
		base += "?authuser=" + url.QueryEscape(account)
	}
	return base
}
