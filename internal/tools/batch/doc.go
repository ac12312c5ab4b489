// Package batch provides helpers for tools that operate on one or many
// IDs in a single call: argument parsing for string-or-array parameters,
// sequential per-item execution with error isolation, and JSON result
// formatting with success/failure totals.
package batch
