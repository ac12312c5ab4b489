package google

// DefaultOAuthScopes are the Google OAuth scopes required for full MCP
// functionality. These scopes are used consistently across the application
// for OAuth configurations.
//
// The scopes provide access to:
//   - Gmail: read, modify, send, settings
//   - Google Drive: full access
//   - Google Docs: read and write
//   - Google Sheets: read and write
//   - Google Chat: messages and spaces
//   - Apps Script: project management and execution
//   - Contacts: read-only (for people lookups)
var DefaultOAuthScopes = []string{
	// OpenID Connect scopes (required for user info)
	"openid",
	"https://www.googleapis.com/auth/userinfo.email",

	// Gmail scopes
	"https://mail.google.com/", // Full Gmail access (includes send)
	"https://www.googleapis.com/auth/gmail.readonly",
	"https://www.googleapis.com/auth/gmail.modify",
	"https://www.googleapis.com/auth/gmail.send",
	"https://www.googleapis.com/auth/gmail.settings.basic",

	// Google Drive scope
	"https://www.googleapis.com/auth/drive",

	// Google Docs scope
	"https://www.googleapis.com/auth/documents",

	// Google Sheets scope
	"https://www.googleapis.com/auth/spreadsheets",

	// Google Chat scopes
	"https://www.googleapis.com/auth/chat.messages",
	"https://www.googleapis.com/auth/chat.spaces",

	// Apps Script scopes
	"https://www.googleapis.com/auth/script.projects",
	"https://www.googleapis.com/auth/script.processes",
	"https://www.googleapis.com/auth/script.deployments",

	// Contacts scopes
	"https://www.googleapis.com/auth/contacts.readonly",
	"https://www.googleapis.com/auth/contacts.other.readonly",
	"https://www.googleapis.com/auth/directory.readonly",
}
