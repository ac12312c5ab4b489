package server

import (
	"strings"
	"testing"
)

func TestValidateHTTPSRequirement(t *testing.T) {
	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"https production", "https://mcp.example.com", false},
		{"http localhost", "http://localhost:8000", false},
		{"http loopback", "http://127.0.0.1:8000", false},
		{"http ipv6 loopback", "http://[::1]:8000", false},
		{"http production", "http://mcp.example.com", true},
		{"empty", "", true},
		{"bad scheme", "ftp://mcp.example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateHTTPSRequirement(tt.baseURL)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateHTTPSRequirement(%q) error = %v, wantErr %v", tt.baseURL, err, tt.wantErr)
			}
		})
	}
}

func TestValidateHTTPSRequirementErrorMentionsHTTPS(t *testing.T) {
	err := validateHTTPSRequirement("http://mcp.example.com")
	if err == nil || !strings.Contains(err.Error(), "HTTPS") {
		t.Errorf("error = %v, want HTTPS guidance", err)
	}
}
