// Package chat_tools exposes Google Chat operations as MCP tools:
// space listing, message retrieval and substring search with sender
// resolution through the People API, sending messages with optional
// threading, and emoji reactions.
package chat_tools
