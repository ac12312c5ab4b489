package drive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/workspace-mcp/workspace-mcp/internal/google"
)

// maxShortcutDepth bounds shortcut chains so a cycle cannot loop forever.
const maxShortcutDepth = 5

// maxDownloadSize caps direct file downloads (50MB).
const maxDownloadSize = 50 * 1024 * 1024

const listFields = "nextPageToken, files(id, name, mimeType, webViewLink, iconLink, modifiedTime, size)"

const shortcutFields = "id, name, mimeType, parents, webViewLink, shortcutDetails(targetId, targetMimeType)"

// Client wraps the Drive service for a single account.
type Client struct {
	svc     *drive.Service
	account string
}

// Account returns the account name this client is associated with.
func (c *Client) Account() string {
	return c.account
}

// NewClientForAccount creates a Drive client authenticated as the given
// account.
func NewClientForAccount(ctx context.Context, account string) (*Client, error) {
	return NewClientForAccountWithProvider(ctx, account, nil)
}

// NewClientForAccountWithProvider creates a Drive client whose OAuth token
// comes from the given provider. A nil provider falls back to the local
// token files.
func NewClientForAccountWithProvider(ctx context.Context, account string, provider google.TokenProvider) (*Client, error) {
	httpClient, err := google.GetHTTPClientForAccountWithProvider(ctx, account, provider)
	if err != nil {
		return nil, fmt.Errorf("no valid Google OAuth token found for account %s: %w. Please authenticate with Google through your MCP client", account, err)
	}

	svc, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create Drive service: %w", err)
	}

	return &Client{svc: svc, account: account}, nil
}

// ListOptions narrow a search to a shared drive or corpus.
type ListOptions struct {
	DriveID string
	Corpora string
}

// SearchFiles lists files matching a Drive query, including items from
// shared drives.
func (c *Client) SearchFiles(query string, pageSize int64, opts *ListOptions) ([]*drive.File, error) {
	if pageSize <= 0 {
		pageSize = 10
	}

	call := c.svc.Files.List().
		Q(query).
		PageSize(pageSize).
		Fields(googleapi.Field(listFields)).
		SupportsAllDrives(true).
		IncludeItemsFromAllDrives(true)

	if opts != nil && opts.DriveID != "" {
		call = call.DriveId(opts.DriveID)
		if opts.Corpora != "" {
			call = call.Corpora(opts.Corpora)
		} else {
			call = call.Corpora("drive")
		}
	} else if opts != nil && opts.Corpora != "" {
		call = call.Corpora(opts.Corpora)
	}

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search files: %w", err)
	}
	return res.Files, nil
}

// ListFolder lists the direct children of a folder, resolving the folder
// ID through shortcuts first.
func (c *Client) ListFolder(folderID string, pageSize int64, opts *ListOptions) ([]*drive.File, error) {
	resolvedID, meta, err := c.ResolveItem(folderID)
	if err != nil {
		return nil, err
	}
	if meta.MimeType != FolderMimeType {
		return nil, fmt.Errorf("resolved ID %s (from %s) is not a folder, mimeType=%s", resolvedID, folderID, meta.MimeType)
	}
	return c.SearchFiles(FolderQuery(resolvedID), pageSize, opts)
}

// ResolveItem follows shortcut targets until it reaches a real item and
// returns the resolved ID with its metadata.
func (c *Client) ResolveItem(fileID string) (string, *drive.File, error) {
	currentID := fileID
	for depth := 0; ; depth++ {
		if depth > maxShortcutDepth {
			return "", nil, fmt.Errorf("shortcut resolution exceeded %d hops starting from %s", maxShortcutDepth, fileID)
		}

		meta, err := c.svc.Files.Get(currentID).
			Fields(googleapi.Field(shortcutFields)).
			SupportsAllDrives(true).
			Do()
		if err != nil {
			return "", nil, fmt.Errorf("failed to get file %s: %w", currentID, err)
		}
		if meta.MimeType != ShortcutMimeType {
			return currentID, meta, nil
		}

		if meta.ShortcutDetails == nil || meta.ShortcutDetails.TargetId == "" {
			return "", nil, fmt.Errorf("shortcut %s is missing target details", currentID)
		}
		currentID = meta.ShortcutDetails.TargetId
	}
}

// FileContent is the result of reading a Drive file.
type FileContent struct {
	ID       string
	Name     string
	MimeType string
	Data     []byte
	Exported bool
}

// GetFileContent reads a file, resolving shortcuts, exporting
// Google-native files as text, and downloading everything else directly.
func (c *Client) GetFileContent(fileID string) (*FileContent, error) {
	resolvedID, meta, err := c.ResolveItem(fileID)
	if err != nil {
		return nil, err
	}

	var resp *http.Response
	exportMime := ExportMimeType(meta.MimeType)
	if exportMime != "" {
		resp, err = c.svc.Files.Export(resolvedID, exportMime).Download()
	} else {
		resp, err = c.svc.Files.Get(resolvedID).SupportsAllDrives(true).Download()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", resolvedID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if len(data) > maxDownloadSize {
		return nil, fmt.Errorf("file %s exceeds maximum download size %d", resolvedID, maxDownloadSize)
	}

	contentMime := meta.MimeType
	if exportMime != "" {
		contentMime = exportMime
	}
	return &FileContent{
		ID:       resolvedID,
		Name:     meta.Name,
		MimeType: contentMime,
		Data:     data,
		Exported: exportMime != "",
	}, nil
}

// DownloadFile fetches a file's raw bytes, resolving shortcuts first. A
// non-empty exportMime exports the (Google-native) file to that format;
// empty downloads the stored bytes directly.
func (c *Client) DownloadFile(fileID, exportMime string) (*FileContent, error) {
	resolvedID, meta, err := c.ResolveItem(fileID)
	if err != nil {
		return nil, err
	}

	var resp *http.Response
	if exportMime != "" {
		resp, err = c.svc.Files.Export(resolvedID, exportMime).Download()
	} else {
		resp, err = c.svc.Files.Get(resolvedID).SupportsAllDrives(true).Download()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to download file %s: %w", resolvedID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}
	if len(data) > maxDownloadSize {
		return nil, fmt.Errorf("file %s exceeds maximum download size %d", resolvedID, maxDownloadSize)
	}

	contentMime := meta.MimeType
	if exportMime != "" {
		contentMime = exportMime
	}
	return &FileContent{
		ID:       resolvedID,
		Name:     meta.Name,
		MimeType: contentMime,
		Data:     data,
		Exported: exportMime != "",
	}, nil
}

// CreateFile creates a file with inline content. An empty mimeType lets
// Drive detect it.
func (c *Client) CreateFile(name, folderID, mimeType string, content []byte) (*drive.File, error) {
	if name == "" {
		return nil, fmt.Errorf("file name is required")
	}

	meta := &drive.File{Name: name, MimeType: mimeType}
	if folderID != "" {
		resolvedID, folderMeta, err := c.ResolveItem(folderID)
		if err != nil {
			return nil, err
		}
		if folderMeta.MimeType != FolderMimeType {
			return nil, fmt.Errorf("parent %s is not a folder", folderID)
		}
		meta.Parents = []string{resolvedID}
	}

	call := c.svc.Files.Create(meta).
		Fields("id, name, mimeType, webViewLink").
		SupportsAllDrives(true)
	if len(content) > 0 {
		call = call.Media(bytes.NewReader(content))
	}

	file, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create file %s: %w", name, err)
	}
	return file, nil
}

// CreateFileFromURL downloads a document from a URL and stores it in
// Drive under the given name.
func (c *Client) CreateFileFromURL(ctx context.Context, name, folderID, sourceURL string) (*drive.File, error) {
	if sourceURL == "" {
		return nil, fmt.Errorf("source URL is required")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid source URL: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", sourceURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching %s returned status %d", sourceURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sourceURL, err)
	}
	if len(data) > maxDownloadSize {
		return nil, fmt.Errorf("content at %s exceeds maximum size %d", sourceURL, maxDownloadSize)
	}

	return c.CreateFile(name, folderID, resp.Header.Get("Content-Type"), data)
}

// UpdateFileMetadata renames a file or moves it between folders. Empty
// arguments are left unchanged.
func (c *Client) UpdateFileMetadata(fileID, name, addParentID, removeParentID string) (*drive.File, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}
	if name == "" && addParentID == "" && removeParentID == "" {
		return nil, fmt.Errorf("nothing to update")
	}

	call := c.svc.Files.Update(fileID, &drive.File{Name: name}).
		Fields("id, name, mimeType, parents, webViewLink").
		SupportsAllDrives(true)
	if addParentID != "" {
		call = call.AddParents(addParentID)
	}
	if removeParentID != "" {
		call = call.RemoveParents(removeParentID)
	}

	file, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update file %s: %w", fileID, err)
	}
	return file, nil
}

// ListPermissions lists the permissions on a file.
func (c *Client) ListPermissions(fileID string) ([]*drive.Permission, error) {
	if fileID == "" {
		return nil, fmt.Errorf("fileID is required")
	}

	res, err := c.svc.Permissions.List(fileID).
		Fields("permissions(id, type, role, emailAddress, domain, expirationTime, permissionDetails)").
		SupportsAllDrives(true).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list permissions for %s: %w", fileID, err)
	}
	return res.Permissions, nil
}

// CheckPublicAccess reports whether a file is shared with anyone holding
// the link.
func (c *Client) CheckPublicAccess(fileID string) (bool, error) {
	permissions, err := c.ListPermissions(fileID)
	if err != nil {
		return false, err
	}
	return HasPublicLink(permissions), nil
}
