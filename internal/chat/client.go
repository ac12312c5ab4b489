package chat

import (
	"context"
	"fmt"
	"strings"
	"sync"

	chat "google.golang.org/api/chat/v1"
	"google.golang.org/api/option"
	people "google.golang.org/api/people/v1"

	"github.com/workspace-mcp/workspace-mcp/internal/google"
)

// Client wraps the Chat service for a single account, with a People
// service for resolving sender IDs to display names.
type Client struct {
	svc       *chat.Service
	peopleSvc *people.Service
	account   string

	mu          sync.Mutex
	senderNames map[string]string
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccount creates a Chat client authenticated as the given
// account.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, nil)
}

// NewClientForAccountWithProvider creates a Chat client whose OAuth token
// comes from the given provider. A nil provider falls back to the local
// token files.
func NewClientForAccountWithProvider(ctx context.Context, account string, provider google.TokenProvider) (*Client, error) {
	httpClient, err := google.GetHTTPClientForAccountWithProvider(ctx, account, provider)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w. Please authenticate with Google through your MCP client", account, err)
	}

	svc, err := chat.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Chat service: %w", err)
	}
	peopleSvc, err := people.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create People service: %w", err)
	}

	return &Client{
		svc:         svc,
		peopleSvc:   peopleSvc,
		account:     account,
		senderNames: make(map[string]string),
	}, nil
}

// ListSpaces lists Chat spaces the account is a member of.
func (c *Client) ListSpaces(pageSize int64) ([]*chat.Space, error) {
	if pageSize <= 0 {
		pageSize = 100
	}
	res, err := c.svc.Spaces.List().PageSize(pageSize).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list spaces: %w", err)
	}
	return res.Spaces, nil
}

// GetSpace fetches a space by resource name ("spaces/...").
func (c *Client) GetSpace(spaceID string) (*chat.Space, error) {
	space, err := c.svc.Spaces.Get(qualifySpace(spaceID)).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get space %s: %w", spaceID, err)
	}
	return space, nil
}

// GetMessages lists recent messages in a space, newest first.
func (c *Client) GetMessages(spaceID string, pageSize int64) ([]*chat.Message, error) {
	if pageSize <= 0 {
		pageSize = 25
	}
	res, err := c.svc.Spaces.Messages.List(qualifySpace(spaceID)).
		PageSize(pageSize).
		OrderBy("createTime desc").
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list messages in %s: %w", spaceID, err)
	}
	return res.Messages, nil
}

// SendMessage posts a text message to a space. A non-empty threadKey
// replies within that thread, falling back to a new thread when the key
// is unknown.
func (c *Client) SendMessage(spaceID, text, threadKey string) (*chat.Message, error) {
	if text == "" {
		return nil, fmt.Errorf("message text is required")
	}

	msg := &chat.Message{Text: text}
	call := c.svc.Spaces.Messages.Create(qualifySpace(spaceID), msg)
	if threadKey != "" {
		msg.Thread = &chat.Thread{ThreadKey: threadKey}
		call = call.MessageReplyOption("REPLY_MESSAGE_FALLBACK_TO_NEW_THREAD")
	}

	sent, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to send message to %s: %w", spaceID, err)
	}
	return sent, nil
}

// SearchMessages scans recent messages across spaces for a substring.
// The Chat API has no server-side text search, so this walks up to
// maxSpaces spaces and filters client-side.
func (c *Client) SearchMessages(query string, spaceID string, pageSize int64, maxSpaces int) ([]*chat.Message, error) {
	if query == "" {
		return nil, fmt.Errorf("search query is required")
	}
	if pageSize <= 0 {
		pageSize = 25
	}
	if maxSpaces <= 0 {
		maxSpaces = 10
	}

	var spaceNames []string
	if spaceID != "" {
		spaceNames = []string{qualifySpace(spaceID)}
	} else {
		spaces, err := c.ListSpaces(int64(maxSpaces))
		if err != nil {
			return nil, err
		}
		for _, s := range spaces {
			spaceNames = append(spaceNames, s.Name)
		}
	}

	needle := strings.ToLower(query)
	var matches []*chat.Message
	for _, name := range spaceNames {
		res, err := c.svc.Spaces.Messages.List(name).
			PageSize(pageSize).
			OrderBy("createTime desc").
			Do()
		if err != nil {
			continue
		}
		for _, msg := range res.Messages {
			if strings.Contains(strings.ToLower(msg.Text), needle) {
				matches = append(matches, msg)
				if int64(len(matches)) >= pageSize {
					return matches, nil
				}
			}
		}
	}
	return matches, nil
}

// CreateReaction adds a unicode emoji reaction to a message. messageName
// is the full resource name ("spaces/.../messages/...").
func (c *Client) CreateReaction(messageName, emoji string) (*chat.Reaction, error) {
	if messageName == "" {
		return nil, fmt.Errorf("message name is required")
	}
	if emoji == "" {
		return nil, fmt.Errorf("emoji is required")
	}

	reaction, err := c.svc.Spaces.Messages.Reactions.Create(messageName, &chat.Reaction{
		Emoji: &chat.Emoji{Unicode: emoji},
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create reaction on %s: %w", messageName, err)
	}
	return reaction, nil
}

// ResolveSender returns a display name for a message sender, consulting
// the People API for human users and caching results per client.
func (c *Client) ResolveSender(sender *chat.User) string {
	if sender == nil {
		return "Unknown"
	}
	if sender.DisplayName != "" {
		return sender.DisplayName
	}
	if sender.Name == "" {
		return "Unknown"
	}

	c.mu.Lock()
	if name, ok := c.senderNames[sender.Name]; ok {
		c.mu.Unlock()
		return name
	}
	c.mu.Unlock()

	name := sender.Name
	if c.peopleSvc != nil && sender.Type != "BOT" {
		person, err := c.peopleSvc.People.Get(PeopleResourceName(sender.Name)).
			PersonFields("names,emailAddresses").
			Do()
		if err == nil {
			if resolved := personDisplayName(person); resolved != "" {
				name = resolved
			}
		}
	}

	c.mu.Lock()
	c.senderNames[sender.Name] = name
	c.mu.Unlock()
	return name
}

func personDisplayName(person *people.Person) string {
	if person == nil {
		return ""
	}
	if len(person.Names) > 0 && person.Names[0].DisplayName != "" {
		return person.Names[0].DisplayName
	}
	if len(person.EmailAddresses) > 0 {
		return person.EmailAddresses[0].Value
	}
	return ""
}

// PeopleResourceName converts a Chat user resource ("users/ID") to the
// People API form ("people/ID").
func PeopleResourceName(userName string) string {
	if rest, ok := strings.CutPrefix(userName, "users/"); ok {
		return "people/" + rest
	}
	return userName
}

// qualifySpace accepts either a bare space ID or a full resource name.
func qualifySpace(spaceID string) string {
	if strings.HasPrefix(spaceID, "spaces/") {
		return spaceID
	}
	return "spaces/" + spaceID
}
