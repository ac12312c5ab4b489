// Package docs wraps the Google Docs API and builds batchUpdate requests
// from tool-facing edit operations.
package docs
