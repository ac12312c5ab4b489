package attachments

import (
	"fmt"
	"net/http"
	"path"
	"strconv"
	"strings"
)

// sanitizeFilename replaces path separators and parent references so a
// message-supplied filename cannot escape the download directory or
// break the Content-Disposition header.
func sanitizeFilename(filename string) string {
	sanitized := strings.ReplaceAll(filename, "/", "_")
	sanitized = strings.ReplaceAll(sanitized, "\\", "_")
	sanitized = strings.ReplaceAll(sanitized, "..", "_")
	sanitized = strings.ReplaceAll(sanitized, "\"", "_")
	if sanitized == "" {
		sanitized = "attachment"
	}
	return sanitized
}

// Handler serves stored attachments over HTTP at /attachments/{id}.
func (s *Store) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		id := path.Base(r.URL.Path)
		record, ok := s.Get(id)
		if !ok {
			http.Error(w, "attachment not found or expired", http.StatusNotFound)
			return
		}

		mimeType := record.MimeType
		if mimeType == "" {
			mimeType = "application/octet-stream"
		}
		w.Header().Set("Content-Type", mimeType)
		w.Header().Set("Content-Length", strconv.FormatInt(record.Size, 10))
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", sanitizeFilename(record.Filename)))
		w.Header().Set("Cache-Control", "private, no-store")

		if r.Method == http.MethodHead {
			return
		}
		http.ServeFile(w, r, record.Path)
	})
}
