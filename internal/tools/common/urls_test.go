package common

import (
	"context"
	"log/slog"
	"testing"

	"github.com/workspace-mcp/workspace-mcp/internal/server"
)

func TestAttachmentDownloadURL(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		want    string
	}{
		{
			name:    "no base URL yields a relative link",
			baseURL: "",
			want:    "/attachments/abc-123",
		},
		{
			name:    "base URL is prefixed",
			baseURL: "https://mcp.example.com",
			want:    "https://mcp.example.com/attachments/abc-123",
		},
		{
			name:    "trailing slash is not doubled",
			baseURL: "http://localhost:8080/",
			want:    "http://localhost:8080/attachments/abc-123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := server.NewServerContext(context.Background(), slog.Default())
			t.Cleanup(func() { _ = sc.Shutdown() })
			sc.SetBaseURL(tt.baseURL)

			if got := AttachmentDownloadURL(sc, "abc-123"); got != tt.want {
				t.Errorf("AttachmentDownloadURL(%q) = %q, want %q", tt.baseURL, got, tt.want)
			}
		})
	}
}
