package gmail

import (
	"encoding/base64"
	"strings"
	"testing"

	gmail "google.golang.org/api/gmail/v1"
)

func TestBuildRawMessage(t *testing.T) {
	tests := []struct {
		name        string
		msg         *EmailMessage
		wantErr     bool
		errContains string
		contains    []string
	}{
		{
			name:        "missing recipients",
			msg:         &EmailMessage{Subject: "Hi", Body: "Hello"},
			wantErr:     true,
			errContains: "at least one recipient is required",
		},
		{
			name:        "missing subject",
			msg:         &EmailMessage{To: []string{"a@example.com"}, Body: "Hello"},
			wantErr:     true,
			errContains: "subject is required",
		},
		{
			name:        "missing body",
			msg:         &EmailMessage{To: []string{"a@example.com"}, Subject: "Hi"},
			wantErr:     true,
			errContains: "body is required",
		},
		{
			name: "plain text message",
			msg: &EmailMessage{
				To:      []string{"a@example.com", "b@example.com"},
				Cc:      []string{"c@example.com"},
				Subject: "Status",
				Body:    "All green.",
			},
			contains: []string{
				"To: a@example.com, b@example.com\r\n",
				"Cc: c@example.com\r\n",
				"Subject: Status\r\n",
				"Content-Type: text/plain; charset=\"UTF-8\"\r\n",
				"\r\n\r\nAll green.",
			},
		},
		{
			name: "html message with threading headers",
			msg: &EmailMessage{
				To:         []string{"a@example.com"},
				Subject:    "Re: Status",
				Body:       "<p>ok</p>",
				IsHTML:     true,
				InReplyTo:  "<orig@example.com>",
				References: "<root@example.com> <orig@example.com>",
			},
			contains: []string{
				"In-Reply-To: <orig@example.com>\r\n",
				"References: <root@example.com> <orig@example.com>\r\n",
				"Content-Type: text/html; charset=\"UTF-8\"\r\n",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := buildRawMessage(tt.msg)

			if (err != nil) != tt.wantErr {
				t.Fatalf("buildRawMessage() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error = %v, should contain %q", err, tt.errContains)
				}
				return
			}

			decoded, err := base64.URLEncoding.DecodeString(raw)
			if err != nil {
				t.Fatalf("raw message is not base64url: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(string(decoded), want) {
					t.Errorf("message missing %q:\n%s", want, decoded)
				}
			}
		})
	}
}

func TestEncodeRFC2047(t *testing.T) {
	if got := encodeRFC2047("plain ascii"); got != "plain ascii" {
		t.Errorf("ASCII subject should pass through unchanged, got %q", got)
	}

	encoded := encodeRFC2047("Grüße aus München")
	if !strings.HasPrefix(encoded, "=?UTF-8?") {
		t.Errorf("non-ASCII subject should be RFC 2047 encoded, got %q", encoded)
	}
}

func TestHeaderValue(t *testing.T) {
	msg := &gmail.Message{
		Payload: &gmail.MessagePart{
			Headers: []*gmail.MessagePartHeader{
				{Name: "From", Value: "sender@example.com"},
				{Name: "Subject", Value: "Weekly report"},
			},
		},
	}

	if got := HeaderValue(msg, "From"); got != "sender@example.com" {
		t.Errorf("HeaderValue(From) = %q", got)
	}
	if got := HeaderValue(msg, "subject"); got != "Weekly report" {
		t.Errorf("HeaderValue should match case-insensitively, got %q", got)
	}
	if got := HeaderValue(msg, "Date"); got != "" {
		t.Errorf("HeaderValue(missing) = %q, want empty", got)
	}
	if got := HeaderValue(&gmail.Message{}, "From"); got != "" {
		t.Errorf("HeaderValue(nil payload) = %q, want empty", got)
	}
}

func TestWebURL(t *testing.T) {
	if got := WebURL("abc123", "default"); got != "https://mail.google.com/mail/u/0/#all/abc123" {
		t.Errorf("WebURL(default) = %q", got)
	}
	got := WebURL("abc123", "work@example.com")
	if !strings.Contains(got, "authuser=work%40example.com") {
		t.Errorf("WebURL should carry authuser for named accounts, got %q", got)
	}
}

func TestReplyToEmailValidation(t *testing.T) {
	c := &Client{}

	if _, err := c.ReplyToEmail("", "t1", "body", nil, nil, false); err == nil || !strings.Contains(err.Error(), "messageID is required") {
		t.Errorf("missing messageID error = %v", err)
	}
	if _, err := c.ReplyToEmail("m1", "", "body", nil, nil, false); err == nil || !strings.Contains(err.Error(), "threadID is required") {
		t.Errorf("missing threadID error = %v", err)
	}
	if _, err := c.ReplyToEmail("m1", "t1", "", nil, nil, false); err == nil || !strings.Contains(err.Error(), "body is required") {
		t.Errorf("missing body error = %v", err)
	}
}
