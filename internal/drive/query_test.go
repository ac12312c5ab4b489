package drive

import "testing"

func TestIsStructuredQuery(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"quarterly report", false},
		{"budget 2025", false},
		{"name contains 'report'", true},
		{"mimeType = 'application/pdf'", true},
		{"'folder123' in parents", true},
		{"trashed = false", true},
		{"starred = true", true},
		{"fullText contains 'invoice'", true},
		{"modifiedTime > '2025-01-01T00:00:00'", true},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsStructuredQuery(tt.input); got != tt.want {
			t.Errorf("IsStructuredQuery(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestBuildSearchQuery(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "free text becomes fullText search",
			input: "quarterly report",
			want:  "fullText contains 'quarterly report' and trashed = false",
		},
		{
			name:  "structured query passes through",
			input: "name contains 'report' and trashed = false",
			want:  "name contains 'report' and trashed = false",
		},
		{
			name:  "quotes are escaped",
			input: "john's files",
			want:  `fullText contains 'john\'s files' and trashed = false`,
		},
		{
			name:  "empty input lists untrashed files",
			input: "  ",
			want:  "trashed = false",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BuildSearchQuery(tt.input); got != tt.want {
				t.Errorf("BuildSearchQuery(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFolderQuery(t *testing.T) {
	want := "'folder123' in parents and trashed = false"
	if got := FolderQuery("folder123"); got != want {
		t.Errorf("FolderQuery() = %q, want %q", got, want)
	}
}

func TestExportMimeType(t *testing.T) {
	tests := []struct {
		mimeType string
		want     string
	}{
		{DocumentMimeType, "text/plain"},
		{SpreadsheetMimeType, "text/csv"},
		{PresentationMimeType, "text/plain"},
		{"application/pdf", ""},
		{FolderMimeType, ""},
	}

	for _, tt := range tests {
		if got := ExportMimeType(tt.mimeType); got != tt.want {
			t.Errorf("ExportMimeType(%q) = %q, want %q", tt.mimeType, got, tt.want)
		}
	}
}

func TestIsTextDownloadable(t *testing.T) {
	tests := []struct {
		mimeType string
		want     bool
	}{
		{"text/plain", true},
		{"text/x-python", true},
		{"application/json", true},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", true},
		{"application/pdf", false},
		{"image/png", false},
	}

	for _, tt := range tests {
		if got := IsTextDownloadable(tt.mimeType); got != tt.want {
			t.Errorf("IsTextDownloadable(%q) = %v, want %v", tt.mimeType, got, tt.want)
		}
	}
}

func TestDownloadExportPlan(t *testing.T) {
	tests := []struct {
		name      string
		mimeType  string
		format    string
		wantMime  string
		wantExt   string
		wantError bool
	}{
		{name: "doc defaults to pdf", mimeType: DocumentMimeType, format: "", wantMime: "application/pdf", wantExt: "pdf"},
		{name: "doc exports to docx", mimeType: DocumentMimeType, format: "docx", wantMime: "application/vnd.openxmlformats-officedocument.wordprocessingml.document", wantExt: "docx"},
		{name: "sheet defaults to xlsx", mimeType: SpreadsheetMimeType, format: "", wantMime: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", wantExt: "xlsx"},
		{name: "sheet exports to csv", mimeType: SpreadsheetMimeType, format: "csv", wantMime: "text/csv", wantExt: "csv"},
		{name: "slides default to pdf", mimeType: PresentationMimeType, format: "", wantMime: "application/pdf", wantExt: "pdf"},
		{name: "slides export to pptx", mimeType: PresentationMimeType, format: "pptx", wantMime: "application/vnd.openxmlformats-officedocument.presentationml.presentation", wantExt: "pptx"},
		{name: "format is case-insensitive", mimeType: DocumentMimeType, format: "PDF", wantMime: "application/pdf", wantExt: "pdf"},
		{name: "unsupported format errors", mimeType: DocumentMimeType, format: "csv", wantError: true},
		{name: "non-native file downloads directly", mimeType: "application/pdf", format: ""},
		{name: "non-native file ignores format", mimeType: "image/png", format: "docx"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mime, ext, err := DownloadExportPlan(tt.mimeType, tt.format)
			if tt.wantError {
				if err == nil {
					t.Fatalf("DownloadExportPlan(%q, %q) expected error, got %q/%q", tt.mimeType, tt.format, mime, ext)
				}
				return
			}
			if err != nil {
				t.Fatalf("DownloadExportPlan(%q, %q) error = %v", tt.mimeType, tt.format, err)
			}
			if mime != tt.wantMime || ext != tt.wantExt {
				t.Errorf("DownloadExportPlan(%q, %q) = %q/%q, want %q/%q", tt.mimeType, tt.format, mime, ext, tt.wantMime, tt.wantExt)
			}
		})
	}
}
