package cmd

import (
	"context"
	"testing"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/workspace-mcp/workspace-mcp/internal/server"
)

func TestResolveBaseURL(t *testing.T) {
	tests := []struct {
		name     string
		baseURL  string
		addr     string
		expected string
	}{
		{
			name:     "configured base URL wins",
			baseURL:  "https://mcp.example.com",
			addr:     ":8080",
			expected: "https://mcp.example.com",
		},
		{
			name:     "port-only address maps to localhost",
			baseURL:  "",
			addr:     ":8080",
			expected: "http://localhost:8080",
		},
		{
			name:     "host and port address used as-is",
			baseURL:  "",
			addr:     "127.0.0.1:9000",
			expected: "http://127.0.0.1:9000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := resolveBaseURL(tt.baseURL, tt.addr)
			if result != tt.expected {
				t.Errorf("resolveBaseURL(%q, %q) = %q, want %q", tt.baseURL, tt.addr, result, tt.expected)
			}
		})
	}
}

func TestRegisterAllTools(t *testing.T) {
	for _, readOnly := range []bool{true, false} {
		name := "write"
		if readOnly {
			name = "readOnly"
		}
		t.Run(name, func(t *testing.T) {
			mcpSrv := mcpserver.NewMCPServer("test", "0.0.1")
			sc := server.NewServerContext(context.Background(), nil)
			defer func() {
				if err := sc.Shutdown(); err != nil {
					t.Errorf("shutdown failed: %v", err)
				}
			}()

			if err := registerAllTools(mcpSrv, sc, readOnly); err != nil {
				t.Fatalf("registerAllTools failed: %v", err)
			}
		})
	}
}

func TestNewServeCmdFlagDefaults(t *testing.T) {
	cmd := newServeCmd()

	want := map[string]string{
		"transport":    "stdio",
		"http-addr":    ":8080",
		"yolo":         "false",
		"metrics-addr": ":9090",
	}
	for flag, def := range want {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			t.Errorf("flag %q not registered", flag)
			continue
		}
		if f.DefValue != def {
			t.Errorf("flag %q default = %q, want %q", flag, f.DefValue, def)
		}
	}
}
