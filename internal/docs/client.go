package docs

import (
	"context"
	"fmt"
	"strings"

	docs "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"

	"github.com/workspace-mcp/workspace-mcp/internal/google"
)

// Client wraps the Docs service for a single account.
type Client struct {
	svc     *docs.Service
	account string
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccount creates a Docs client authenticated as the given
// account.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, nil)
}

// NewClientForAccountWithProvider creates a Docs client whose OAuth token
// comes from the given provider. A nil provider falls back to the local
// token files.
func NewClientForAccountWithProvider(ctx context.Context, account string, provider google.TokenProvider) (*Client, error) {
	httpClient, err := google.GetHTTPClientForAccountWithProvider(ctx, account, provider)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w. Please authenticate with Google through your MCP client", account, err)
	}

	svc, err := docs.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Docs service: %w", err)
	}

	return &Client{svc: svc, account: account}, nil
}

// GetDocument fetches a document with its full body.
func (c *Client) GetDocument(documentID string) (*docs.Document, error) {
	doc, err := c.svc.Documents.Get(documentID).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", documentID, err)
	}
	return doc, nil
}

// CreateDocument creates an empty document with the given title.
func (c *Client) CreateDocument(title string) (*docs.Document, error) {
	if title == "" {
		return nil, fmt.Errorf("document title is required")
	}
	doc, err := c.svc.Documents.Create(&docs.Document{Title: title}).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create document %s: %w", title, err)
	}
	return doc, nil
}

// BatchUpdate applies edit operations to a document.
func (c *Client) BatchUpdate(documentID string, operations []*Operation) (*docs.BatchUpdateDocumentResponse, error) {
	requests, err := BuildRequests(operations)
	if err != nil {
		return nil, err
	}

	resp, err := c.svc.Documents.BatchUpdate(documentID, &docs.BatchUpdateDocumentRequest{
		Requests: requests,
	}).Do()
	if err != nil {
		return nil, fmt.Errorf("batchUpdate failed for document %s: %w", documentID, err)
	}
	return resp, nil
}

// ExtractText renders a document body as plain text, walking paragraphs
// and table cells in order.
func ExtractText(doc *docs.Document) string {
	if doc == nil || doc.Body == nil {
		return ""
	}
	var b strings.Builder
	writeStructuralElements(&b, doc.Body.Content)
	return b.String()
}

func writeStructuralElements(b *strings.Builder, elements []*docs.StructuralElement) {
	for _, el := range elements {
		switch {
		case el.Paragraph != nil:
			for _, pe := range el.Paragraph.Elements {
				if pe.TextRun != nil {
					b.WriteString(pe.TextRun.Content)
				}
			}
		case el.Table != nil:
			for _, row := range el.Table.TableRows {
				for _, cell := range row.TableCells {
					writeStructuralElements(b, cell.Content)
				}
			}
		case el.TableOfContents != nil:
			writeStructuralElements(b, el.TableOfContents.Content)
		}
	}
}

// DocumentURL returns the Docs web UI URL for a document.
func DocumentURL(documentID string) string {
	return "https://docs.google.com/document/d/" + documentID + "/edit"
}
