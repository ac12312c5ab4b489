// Package attachments stores downloaded Gmail and Drive attachment
// payloads on local disk and serves them over HTTP under short-lived
// random download URLs.
package attachments
