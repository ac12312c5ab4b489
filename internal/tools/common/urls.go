package common

import (
	"strings"

	"github.com/workspace-mcp/workspace-mcp/internal/server"
)

// AttachmentDownloadURL builds the download URL for a stored attachment.
// With a configured base URL the link is absolute and directly usable by
// HTTP clients; without one (stdio transport) it stays relative.
func AttachmentDownloadURL(sc *server.ServerContext, id string) string {
	base := strings.TrimRight(sc.BaseURL(), "/")
	return base + "/attachments/" + id
}
