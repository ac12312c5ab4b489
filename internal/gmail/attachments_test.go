package gmail

import (
	"encoding/base64"
	"strings"
	"testing"

	gmail "google.golang.org/api/gmail/v1"
)

func b64url(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestExtractBody(t *testing.T) {
	multipart := &gmail.Message{
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Parts: []*gmail.MessagePart{
				{
					MimeType: "text/plain",
					Body:     &gmail.MessagePartBody{Data: b64url("plain body")},
				},
				{
					MimeType: "text/html",
					Body:     &gmail.MessagePartBody{Data: b64url("<p>html body</p>")},
				},
			},
		},
	}

	tests := []struct {
		name        string
		msg         *gmail.Message
		format      string
		want        string
		wantErr     bool
		errContains string
	}{
		{
			name:   "plain text from multipart",
			msg:    multipart,
			format: "text",
			want:   "plain body",
		},
		{
			name:   "html from multipart",
			msg:    multipart,
			format: "html",
			want:   "<p>html body</p>",
		},
		{
			name:   "empty format defaults to text",
			msg:    multipart,
			format: "",
			want:   "plain body",
		},
		{
			name: "single-part message",
			msg: &gmail.Message{
				Payload: &gmail.MessagePart{
					MimeType: "text/plain",
					Body:     &gmail.MessagePartBody{Data: b64url("direct body")},
				},
			},
			format: "text",
			want:   "direct body",
		},
		{
			name: "nested multipart",
			msg: &gmail.Message{
				Payload: &gmail.MessagePart{
					MimeType: "multipart/mixed",
					Parts: []*gmail.MessagePart{
						{
							MimeType: "multipart/alternative",
							Parts: []*gmail.MessagePart{
								{
									MimeType: "text/plain",
									Body:     &gmail.MessagePartBody{Data: b64url("deep body")},
								},
							},
						},
					},
				},
			},
			format: "text",
			want:   "deep body",
		},
		{
			name:        "missing body",
			msg:         &gmail.Message{Payload: &gmail.MessagePart{MimeType: "multipart/mixed"}},
			format:      "html",
			wantErr:     true,
			errContains: "no html body found",
		},
		{
			name:        "invalid format",
			msg:         multipart,
			format:      "markdown",
			wantErr:     true,
			errContains: "invalid format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractBody(tt.msg, tt.format)

			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractBody() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error = %v, should contain %q", err, tt.errContains)
				}
				return
			}
			if got != tt.want {
				t.Errorf("ExtractBody() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeBodyStandardBase64Fallback(t *testing.T) {
	// Payload chosen so standard base64 produces "+" and "/" characters
	// that base64url rejects.
	raw := []byte{0xfb, 0xff, 0xbe, 0x01, 0x02}
	std := base64.StdEncoding.EncodeToString(raw)

	got, err := decodeBody(std)
	if err != nil {
		t.Fatalf("decodeBody() error = %v", err)
	}
	if string(got) != string(raw) {
		t.Errorf("decodeBody() = %v, want %v", got, raw)
	}

	if _, err := decodeBody("!!not base64!!"); err == nil {
		t.Error("decodeBody() accepted invalid input")
	}
}

func TestWalkPartsCollectsAttachments(t *testing.T) {
	payload := &gmail.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmail.MessagePart{
			{
				MimeType: "text/plain",
				Body:     &gmail.MessagePartBody{Data: b64url("body")},
			},
			{
				PartId:   "1",
				Filename: "report.pdf",
				MimeType: "application/pdf",
				Body:     &gmail.MessagePartBody{AttachmentId: "att-1", Size: 1024},
			},
			{
				MimeType: "multipart/related",
				Parts: []*gmail.MessagePart{
					{
						PartId:   "2.0",
						Filename: "logo.png",
						MimeType: "image/png",
						Body:     &gmail.MessagePartBody{AttachmentId: "att-2", Size: 256},
					},
				},
			},
		},
	}

	var found []string
	walkParts(payload, func(part *gmail.MessagePart) {
		if part.Filename != "" && part.Body != nil && part.Body.AttachmentId != "" {
			found = append(found, part.Body.AttachmentId)
		}
	})

	if len(found) != 2 || found[0] != "att-1" || found[1] != "att-2" {
		t.Errorf("walkParts found %v, want [att-1 att-2]", found)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "____etc_passwd"},
		{"dir/file.txt", "dir_file.txt"},
		{"back\\slash.doc", "back_slash.doc"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
