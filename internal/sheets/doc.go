// Package sheets wraps the Google Sheets API and provides pure helpers
// for A1-notation parsing, color conversion, and conditional-formatting
// rule construction.
package sheets
