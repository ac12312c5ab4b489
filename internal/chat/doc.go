// Package chat wraps the Google Chat API with sender-name resolution
// through the People API.
package chat
