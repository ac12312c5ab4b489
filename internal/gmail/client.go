package gmail

import (
	"context"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/workspace-mcp/workspace-mcp/internal/google"
)

// Client wraps the Gmail Users service for a single account.
type Client struct {
	svc     *gmail.UsersService
	account string
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccount creates a Gmail client authenticated as the given
// account. The OAuth token must already exist in the local token store.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, nil)
}

// NewClientForAccountWithProvider creates a Gmail client whose OAuth token
// comes from the given provider. A nil provider falls back to the local
// token files.
func NewClientForAccountWithProvider(ctx context.Context, account string, provider google.TokenProvider) (*Client, error) {
	httpClient, err := google.GetHTTPClientForAccountWithProvider(ctx, account, provider)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w. Please authenticate with Google through your MCP client", account, err)
	}

	svc, err := gmail.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	return &Client{
		svc:     svc.Users,
		account: account,
	}, nil
}

// SearchMessages lists message stubs matching a Gmail search query,
// paginating until maxResults are collected.
func (c *Client) SearchMessages(q string, maxResults int64) ([]*gmail.Message, error) {
	if maxResults <= 0 {
		maxResults = 25
	}

	var all []*gmail.Message
	pageToken := ""

	for {
		remaining := maxResults - int64(len(all))
		if remaining <= 0 {
			break
		}
		pageSize := remaining
		if pageSize > 100 {
			pageSize = 100
		}

		req := c.svc.Messages.List("me").Q(q).MaxResults(pageSize)
		if pageToken != "" {
			req = req.PageToken(pageToken)
		}

		res, err := req.Do()
		if err != nil {
			return nil, fmt.Errorf("failed to search messages: %w", err)
		}

		all = append(all, res.Messages...)

		if res.NextPageToken == "" || int64(len(all)) >= maxResults {
			break
		}
		pageToken = res.NextPageToken
	}

	if int64(len(all)) > maxResults {
		all = all[:maxResults]
	}
	return all, nil
}

// GetMessage retrieves a full Gmail message.
func (c *Client) GetMessage(messageID string) (*gmail.Message, error) {
	msg, err := c.svc.Messages.Get("me", messageID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", messageID, err)
	}
	return msg, nil
}

// GetThread retrieves a full Gmail thread with all its messages.
func (c *Client) GetThread(threadID string) (*gmail.Thread, error) {
	thread, err := c.svc.Threads.Get("me", threadID).Format("full").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get thread %s: %w", threadID, err)
	}
	return thread, nil
}

// ModifyMessageLabels adds and removes labels on a single message.
func (c *Client) ModifyMessageLabels(messageID string, addLabelIDs, removeLabelIDs []string) (*gmail.Message, error) {
	if messageID == "" {
		return nil, fmt.Errorf("messageID is required")
	}
	if len(addLabelIDs) == 0 && len(removeLabelIDs) == 0 {
		return nil, fmt.Errorf("at least one label to add or remove is required")
	}

	msg, err := c.svc.Messages.Modify("me", messageID, &gmail.ModifyMessageRequest{
		AddLabelIds:    addLabelIDs,
		RemoveLabelIds: removeLabelIDs,
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to modify labels on message %s: %w", messageID, err)
	}
	return msg, nil
}

// ListLabels lists all labels in the account's mailbox.
func (c *Client) ListLabels() ([]*gmail.Label, error) {
	res, err := c.svc.Labels.List("me").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return res.Labels, nil
}

// CreateLabel creates a user label. Visibility arguments may be empty to
// use the Gmail defaults (labelShow / show).
func (c *Client) CreateLabel(name, labelListVisibility, messageListVisibility string) (*gmail.Label, error) {
	if name == "" {
		return nil, fmt.Errorf("label name is required")
	}
	if labelListVisibility == "" {
		labelListVisibility = "labelShow"
	}
	if messageListVisibility == "" {
		messageListVisibility = "show"
	}

	label, err := c.svc.Labels.Create("me", &gmail.Label{
		Name:                  name,
		LabelListVisibility:   labelListVisibility,
		MessageListVisibility: messageListVisibility,
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create label %s: %w", name, err)
	}
	return label, nil
}

// UpdateLabel renames a label or changes its visibility. Empty fields are
// left unchanged.
func (c *Client) UpdateLabel(labelID, name, labelListVisibility, messageListVisibility string) (*gmail.Label, error) {
	if labelID == "" {
		return nil, fmt.Errorf("labelID is required")
	}

	label, err := c.svc.Labels.Get("me", labelID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get label %s: %w", labelID, err)
	}
	if name != "" {
		label.Name = name
	}
	if labelListVisibility != "" {
		label.LabelListVisibility = labelListVisibility
	}
	if messageListVisibility != "" {
		label.MessageListVisibility = messageListVisibility
	}

	updated, err := c.svc.Labels.Update("me", labelID, label).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update label %s: %w", labelID, err)
	}
	return updated, nil
}

// DeleteLabel deletes a user label.
func (c *Client) DeleteLabel(labelID string) error {
	if labelID == "" {
		return fmt.Errorf("labelID is required")
	}
	if err := c.svc.Labels.Delete("me", labelID).Do(); err != nil {
		return fmt.Errorf("failed to delete label %s: %w", labelID, err)
	}
	return nil
}

// ListFilters lists all mail filters in the account.
func (c *Client) ListFilters() ([]*gmail.Filter, error) {
	res, err := c.svc.Settings.Filters.List("me").Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list filters: %w", err)
	}
	return res.Filter, nil
}

// CreateFilter creates a mail filter from matching criteria and an action.
func (c *Client) CreateFilter(criteria *gmail.FilterCriteria, action *gmail.FilterAction) (*gmail.Filter, error) {
	if criteria == nil {
		return nil, fmt.Errorf("filter criteria is required")
	}
	if action == nil {
		return nil, fmt.Errorf("filter action is required")
	}

	filter, err := c.svc.Settings.Filters.Create("me", &gmail.Filter{
		Criteria: criteria,
		Action:   action,
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create filter: %w", err)
	}
	return filter, nil
}

// DeleteFilter deletes a mail filter.
func (c *Client) DeleteFilter(filterID string) error {
	if filterID == "" {
		return fmt.Errorf("filterID is required")
	}
	if err := c.svc.Settings.Filters.Delete("me", filterID).Do(); err != nil {
		return fmt.Errorf("failed to delete filter %s: %w", filterID, err)
	}
	return nil
}
