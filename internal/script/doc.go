// Package script wraps the Apps Script API: project content, function
// execution, deployments, and process listing.
package script
