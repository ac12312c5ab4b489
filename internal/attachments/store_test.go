package attachments

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T, ttl time.Duration) *Store {
	t.Helper()
	s, err := NewStore(t.TempDir(), ttl, nil)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func TestStorePutGet(t *testing.T) {
	s := newTestStore(t, time.Hour)

	record, err := s.Put("report.pdf", "application/pdf", []byte("pdf-bytes"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if record.ID == "" {
		t.Fatal("Put() returned empty ID")
	}
	if record.Size != int64(len("pdf-bytes")) {
		t.Errorf("Size = %d, want %d", record.Size, len("pdf-bytes"))
	}

	got, ok := s.Get(record.ID)
	if !ok {
		t.Fatal("Get() did not find stored record")
	}
	if got.Filename != "report.pdf" {
		t.Errorf("Filename = %q, want %q", got.Filename, "report.pdf")
	}

	data, err := os.ReadFile(got.Path)
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != "pdf-bytes" {
		t.Errorf("stored content = %q, want %q", data, "pdf-bytes")
	}
}

func TestStoreGetUnknownID(t *testing.T) {
	s := newTestStore(t, time.Hour)

	if _, ok := s.Get("no-such-id"); ok {
		t.Error("Get() found a record for an unknown ID")
	}
}

func TestStoreExpiry(t *testing.T) {
	s := newTestStore(t, time.Millisecond)

	record, err := s.Put("tmp.txt", "text/plain", []byte("x"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, ok := s.Get(record.ID); ok {
		t.Error("Get() returned an expired record")
	}
	if _, err := os.Stat(record.Path); !os.IsNotExist(err) {
		t.Error("expired attachment file was not removed")
	}
	if s.Len() != 0 {
		t.Errorf("Len() = %d after expiry, want 0", s.Len())
	}
}

func TestStoreRejectsOversizedPayload(t *testing.T) {
	s := newTestStore(t, time.Hour)

	_, err := s.Put("huge.bin", "application/octet-stream", make([]byte, MaxAttachmentSize+1))
	if err == nil {
		t.Fatal("Put() accepted payload above MaxAttachmentSize")
	}
	if !strings.Contains(err.Error(), "exceeds maximum size") {
		t.Errorf("error = %v, want size message", err)
	}
}

func TestHandlerServesAttachment(t *testing.T) {
	s := newTestStore(t, time.Hour)

	record, err := s.Put("photo.png", "image/png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	srv := httptest.NewServer(http.StripPrefix("/attachments/", s.Handler()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/attachments/" + record.ID)
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := resp.Header.Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q, want image/png", got)
	}
	if got := resp.Header.Get("Content-Disposition"); !strings.Contains(got, "photo.png") {
		t.Errorf("Content-Disposition = %q, want filename photo.png", got)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("reading body: %v", err)
	}
	if string(body) != "png-bytes" {
		t.Errorf("body = %q, want %q", body, "png-bytes")
	}
}

func TestHandlerUnknownID(t *testing.T) {
	s := newTestStore(t, time.Hour)

	srv := httptest.NewServer(http.StripPrefix("/attachments/", s.Handler()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/attachments/missing")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain.txt", "plain.txt"},
		{"../../etc/passwd", "____etc_passwd"},
		{"dir/file.pdf", "dir_file.pdf"},
		{"back\\slash.doc", "back_slash.doc"},
		{"", "attachment"},
	}
	for _, tc := range tests {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
