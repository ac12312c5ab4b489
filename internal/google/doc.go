// Package google handles OAuth2 configuration, per-account token storage,
// and authenticated HTTP client construction for Google APIs.
package google
