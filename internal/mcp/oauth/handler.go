package oauth

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/giantswarm/mcp-oauth/storage"

	"github.com/workspace-mcp/workspace-mcp/internal/auth"
	"github.com/workspace-mcp/workspace-mcp/internal/session"
)

// Handler serves the OAuth endpoints of the HTTP transport and validates
// bearer credentials on the MCP endpoint.
type Handler struct {
	config   *Config
	store    storage.TokenStore
	sessions *session.Store
	verifier auth.TokenVerifier
	logger   *slog.Logger
}

// NewHandler creates an OAuth handler. The store keeps validated Google
// tokens per user so API clients can be built for them later; sessions
// tracks which users hold active credentials.
func NewHandler(config *Config, store storage.TokenStore, sessions *session.Store, verifier auth.TokenVerifier) *Handler {
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		config:   config,
		store:    store,
		sessions: sessions,
		verifier: verifier,
		logger:   logger,
	}
}

// Store returns the token store backing this handler.
func (h *Handler) Store() storage.TokenStore {
	return h.store
}

// ServeProtectedResourceMetadata serves RFC 9728 metadata so MCP clients
// can discover where to obtain tokens for this resource.
func (h *Handler) ServeProtectedResourceMetadata(w http.ResponseWriter, r *http.Request) {
	metadata := ProtectedResourceMetadata{
		Resource:               h.config.Resource,
		AuthorizationServers:   h.config.authorizationServers(),
		BearerMethodsSupported: []string{"header"},
		ScopesSupported:        h.config.SupportedScopes,
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if err := json.NewEncoder(w).Encode(metadata); err != nil {
		h.logger.Error("Failed to encode protected resource metadata", "error", err)
	}
}

// writeUnauthorizedError writes an OAuth error response with 401 status.
func (h *Handler) writeUnauthorizedError(w http.ResponseWriter, errorCode, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:            errorCode,
		ErrorDescription: description,
	}); err != nil {
		h.logger.Error("Failed to encode error response", "error", err)
	}
}
