package drive

import (
	"fmt"
	"regexp"
	"strings"
)

// Google-native and shortcut MIME types.
const (
	ShortcutMimeType     = "application/vnd.google-apps.shortcut"
	FolderMimeType       = "application/vnd.google-apps.folder"
	DocumentMimeType     = "application/vnd.google-apps.document"
	SpreadsheetMimeType  = "application/vnd.google-apps.spreadsheet"
	PresentationMimeType = "application/vnd.google-apps.presentation"
)

// exportMimeTypes maps Google-native types to the text format they are
// exported as when reading file content.
var exportMimeTypes = map[string]string{
	DocumentMimeType:     "text/plain",
	SpreadsheetMimeType:  "text/csv",
	PresentationMimeType: "text/plain",
}

// ExportMimeType returns the text export format for a Google-native MIME
// type, or "" when the file should be downloaded directly.
func ExportMimeType(mimeType string) string {
	return exportMimeTypes[mimeType]
}

// exportPlan describes how a Google-native file is exported for download.
type exportPlan struct {
	mimeType  string
	extension string
}

// downloadExportPlans maps Google-native MIME types to the formats they
// can be exported as for binary download. The empty format key is the
// default for that type.
var downloadExportPlans = map[string]map[string]exportPlan{
	DocumentMimeType: {
		"":     {"application/pdf", ".pdf"},
		"pdf":  {"application/pdf", ".pdf"},
		"docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document", ".docx"},
	},
	SpreadsheetMimeType: {
		"":     {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ".xlsx"},
		"xlsx": {"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ".xlsx"},
		"csv":  {"text/csv", ".csv"},
	},
	PresentationMimeType: {
		"":     {"application/pdf", ".pdf"},
		"pdf":  {"application/pdf", ".pdf"},
		"pptx": {"application/vnd.openxmlformats-officedocument.presentationml.presentation", ".pptx"},
	},
}

// DownloadExportPlan returns the export MIME type and filename extension
// for downloading a file. Google-native files export to PDF (Docs,
// Slides) or XLSX (Sheets) by default; format selects an alternative.
// Non-native files download as-is, indicated by empty return values.
func DownloadExportPlan(mimeType, format string) (exportMime, extension string, err error) {
	plans, native := downloadExportPlans[mimeType]
	if !native {
		return "", "", nil
	}
	plan, ok := plans[strings.ToLower(format)]
	if !ok {
		return "", "", fmt.Errorf("unsupported export format %q for %s", format, mimeType)
	}
	return plan.mimeType, plan.extension, nil
}

// IsTextDownloadable reports whether a non-native MIME type can be
// downloaded and surfaced as text directly.
func IsTextDownloadable(mimeType string) bool {
	if strings.HasPrefix(mimeType, "text/") {
		return true
	}
	switch mimeType {
	case "application/json",
		"application/xml",
		"application/rtf",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/vnd.openxmlformats-officedocument.presentationml.presentation",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":
		return true
	}
	return false
}

// structuredQueryPatterns detect Drive query syntax so free-text input
// can be distinguished from an already-formed query.
var structuredQueryPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b\w+\s*(=|!=|>|<)\s*['"].*?['"]`),
	regexp.MustCompile(`(?i)\b\w+\s*(=|!=|>|<)\s*\d+`),
	regexp.MustCompile(`(?i)\bcontains\b`),
	regexp.MustCompile(`(?i)\bin\s+parents\b`),
	regexp.MustCompile(`(?i)\bhas\s*\{`),
	regexp.MustCompile(`(?i)\btrashed\s*=\s*(true|false)\b`),
	regexp.MustCompile(`(?i)\bstarred\s*=\s*(true|false)\b`),
	regexp.MustCompile(`(?i)['"][^'"]+['"]\s+in\s+parents`),
	regexp.MustCompile(`(?i)\bfullText\s+contains\b`),
	regexp.MustCompile(`(?i)\bname\s*(=|contains)\b`),
	regexp.MustCompile(`(?i)\bmimeType\s*(=|!=)\b`),
}

// IsStructuredQuery reports whether the input already uses Drive query
// syntax rather than free text.
func IsStructuredQuery(input string) bool {
	for _, p := range structuredQueryPatterns {
		if p.MatchString(input) {
			return true
		}
	}
	return false
}

// escapeQueryTerm escapes backslashes and single quotes for embedding a
// literal inside a Drive query string.
func escapeQueryTerm(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	return s
}

// BuildSearchQuery turns user input into a Drive query. Structured input
// passes through unchanged; free text becomes a fullText search.
func BuildSearchQuery(input string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return "trashed = false"
	}
	if IsStructuredQuery(input) {
		return input
	}
	return fmt.Sprintf("fullText contains '%s' and trashed = false", escapeQueryTerm(input))
}

// FolderQuery returns the query matching the direct children of a folder.
func FolderQuery(folderID string) string {
	return fmt.Sprintf("'%s' in parents and trashed = false", escapeQueryTerm(folderID))
}
