package server

import (
	"context"
	"log/slog"
	"sync"

	"github.com/workspace-mcp/workspace-mcp/internal/attachments"
	"github.com/workspace-mcp/workspace-mcp/internal/chat"
	"github.com/workspace-mcp/workspace-mcp/internal/docs"
	"github.com/workspace-mcp/workspace-mcp/internal/drive"
	"github.com/workspace-mcp/workspace-mcp/internal/gmail"
	"github.com/workspace-mcp/workspace-mcp/internal/google"
	"github.com/workspace-mcp/workspace-mcp/internal/instrumentation"
	"github.com/workspace-mcp/workspace-mcp/internal/script"
	"github.com/workspace-mcp/workspace-mcp/internal/session"
	"github.com/workspace-mcp/workspace-mcp/internal/sheets"
)

// ServerContext holds per-account Google service clients for the MCP
// server. Clients are created lazily on first use and cached.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *slog.Logger

	metrics     *instrumentation.Metrics
	sessions    *session.Store
	attachments *attachments.Store
	tokens      google.TokenProvider
	baseURL     string

	mu            sync.Mutex
	gmailClients  map[string]*gmail.Client
	driveClients  map[string]*drive.Client
	sheetsClients map[string]*sheets.Client
	docsClients   map[string]*docs.Client
	chatClients   map[string]*chat.Client
	scriptClients map[string]*script.Client
	shutdown      bool
}

// NewServerContext creates a server context.
func NewServerContext(ctx context.Context, logger *slog.Logger) *ServerContext {
	if logger == nil {
		logger = slog.Default()
	}
	shutdownCtx, cancel := context.WithCancel(ctx)

	return &ServerContext{
		ctx:           shutdownCtx,
		cancel:        cancel,
		logger:        logger,
		gmailClients:  make(map[string]*gmail.Client),
		driveClients:  make(map[string]*drive.Client),
		sheetsClients: make(map[string]*sheets.Client),
		docsClients:   make(map[string]*docs.Client),
		chatClients:   make(map[string]*chat.Client),
		scriptClients: make(map[string]*script.Client),
	}
}

// Context returns the server's lifetime context.
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Logger returns the server's logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// SetMetrics attaches the metrics recorder. Pass nil to disable
// per-tool metrics.
func (sc *ServerContext) SetMetrics(m *instrumentation.Metrics) {
	sc.metrics = m
}

// Metrics returns the metrics recorder, or nil when instrumentation is
// not configured.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	return sc.metrics
}

// SetSessions attaches the credential/session store.
func (sc *ServerContext) SetSessions(s *session.Store) {
	sc.sessions = s
}

// Sessions returns the credential/session store, or nil.
func (sc *ServerContext) Sessions() *session.Store {
	return sc.sessions
}

// SetAttachments attaches the attachment store used by Gmail tools.
func (sc *ServerContext) SetAttachments(s *attachments.Store) {
	sc.attachments = s
}

// Attachments returns the attachment store, or nil.
func (sc *ServerContext) Attachments() *attachments.Store {
	return sc.attachments
}

// SetTokenProvider sets the OAuth token source used when building Google
// API clients. Nil means local token files, which suits the stdio
// transport; the HTTP transport installs a store-backed provider so
// bearer-authenticated users reach the APIs with the token they presented.
func (sc *ServerContext) SetTokenProvider(p google.TokenProvider) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.tokens = p
}

// TokenProvider returns the configured token provider, or nil when client
// construction should read local token files.
func (sc *ServerContext) TokenProvider() google.TokenProvider {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.tokens
}

// SetBaseURL records the externally visible URL of this server, used to
// build absolute download links.
func (sc *ServerContext) SetBaseURL(u string) {
	sc.baseURL = u
}

// BaseURL returns the externally visible URL, or empty when the server
// runs without an HTTP transport.
func (sc *ServerContext) BaseURL() string {
	return sc.baseURL
}

// cachedClient returns the cached client for an account or builds one.
// Callers must hold sc.mu.
func cachedClient[T any](cache map[string]*T, ctx context.Context, account string, build func(context.Context, string) (*T, error)) (*T, error) {
	if client, ok := cache[account]; ok {
		return client, nil
	}
	client, err := build(ctx, account)
	if err != nil {
		return nil, err
	}
	cache[account] = client
	return client, nil
}

// GmailClientForAccount returns the Gmail client for an account.
func (sc *ServerContext) GmailClientForAccount(account string) (*gmail.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return cachedClient(sc.gmailClients, sc.ctx, account, func(ctx context.Context, account string) (*gmail.Client, error) {
		return gmail.NewClientForAccountWithProvider(ctx, account, sc.tokens)
	})
}

// DriveClientForAccount returns the Drive client for an account.
func (sc *ServerContext) DriveClientForAccount(account string) (*drive.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return cachedClient(sc.driveClients, sc.ctx, account, func(ctx context.Context, account string) (*drive.Client, error) {
		return drive.NewClientForAccountWithProvider(ctx, account, sc.tokens)
	})
}

// SheetsClientForAccount returns the Sheets client for an account.
func (sc *ServerContext) SheetsClientForAccount(account string) (*sheets.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return cachedClient(sc.sheetsClients, sc.ctx, account, func(ctx context.Context, account string) (*sheets.Client, error) {
		return sheets.NewClientForAccountWithProvider(ctx, account, sc.tokens)
	})
}

// DocsClientForAccount returns the Docs client for an account.
func (sc *ServerContext) DocsClientForAccount(account string) (*docs.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return cachedClient(sc.docsClients, sc.ctx, account, func(ctx context.Context, account string) (*docs.Client, error) {
		return docs.NewClientForAccountWithProvider(ctx, account, sc.tokens)
	})
}

// ChatClientForAccount returns the Chat client for an account.
func (sc *ServerContext) ChatClientForAccount(account string) (*chat.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return cachedClient(sc.chatClients, sc.ctx, account, func(ctx context.Context, account string) (*chat.Client, error) {
		return chat.NewClientForAccountWithProvider(ctx, account, sc.tokens)
	})
}

// ScriptClientForAccount returns the Apps Script client for an account.
func (sc *ServerContext) ScriptClientForAccount(account string) (*script.Client, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return cachedClient(sc.scriptClients, sc.ctx, account, func(ctx context.Context, account string) (*script.Client, error) {
		return script.NewClientForAccountWithProvider(ctx, account, sc.tokens)
	})
}

// InvalidateAccount drops cached clients for an account, forcing fresh
// ones on next use. Called after re-authentication.
func (sc *ServerContext) InvalidateAccount(account string) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	delete(sc.gmailClients, account)
	delete(sc.driveClients, account)
	delete(sc.sheetsClients, account)
	delete(sc.docsClients, account)
	delete(sc.chatClients, account)
	delete(sc.scriptClients, account)
	sc.logger.Debug("Invalidated cached clients", "account", account)
}

// IsShutdown returns whether the server context has been shut down.
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.shutdown
}

// Shutdown cancels the server context.
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}
	sc.shutdown = true
	sc.cancel()
	return nil
}
