// Package drive wraps the Google Drive API: file search and listing,
// content retrieval with shortcut resolution and native-format export,
// file creation, and permission inspection.
package drive
