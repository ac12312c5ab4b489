package drive_tools

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	drive_v3 "google.golang.org/api/drive/v3"

	"github.com/workspace-mcp/workspace-mcp/internal/drive"
	"github.com/workspace-mcp/workspace-mcp/internal/server"
	"github.com/workspace-mcp/workspace-mcp/internal/tools/common"
)

func accountOption() mcp.ToolOption {
	return mcp.WithString("user_google_email",
		mcp.Description("The Google account to act on. Optional when the request is already authenticated."),
	)
}

func driveClient(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*drive.Client, error) {
	account := common.AccountFromRequest(ctx, request)
	return sc.DriveClientForAccount(account)
}

// RegisterDriveTools registers all Google Drive tools with the MCP
// server. Write operations are skipped when readOnly is set.
func RegisterDriveTools(s *mcpserver.MCPServer, sc *server.ServerContext, readOnly bool) error {
	searchTool := mcp.NewTool("drive_search_files",
		mcp.WithDescription("Search Google Drive. Accepts free text or a structured Drive query (e.g. \"name contains 'report'\")"),
		accountOption(),
		mcp.WithString("query",
			mcp.Description("Free text or structured Drive query. Empty lists recent files."),
		),
		mcp.WithNumber("pageSize",
			mcp.Description("Maximum number of results (default: 10)"),
		),
		mcp.WithString("driveId",
			mcp.Description("Shared drive ID to search within"),
		),
		mcp.WithString("corpora",
			mcp.Description("Search corpora: 'user', 'drive', 'domain' or 'allDrives'"),
		),
	)
	s.AddTool(searchTool, common.Instrumented("drive_search_files", "drive", "search", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleSearchFiles(ctx, request, sc)
		}))

	listFolderTool := mcp.NewTool("drive_list_folder",
		mcp.WithDescription("List items in a Google Drive folder (shortcuts to folders are resolved)"),
		accountOption(),
		mcp.WithString("folderId",
			mcp.Description("Folder ID (default: 'root')"),
		),
		mcp.WithNumber("pageSize",
			mcp.Description("Maximum number of results (default: 100)"),
		),
	)
	s.AddTool(listFolderTool, common.Instrumented("drive_list_folder", "drive", "list", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListFolder(ctx, request, sc)
		}))

	getContentTool := mcp.NewTool("drive_get_file_content",
		mcp.WithDescription("Get the content of a Drive file. Google-native files are exported as text, office and text files are downloaded directly."),
		accountOption(),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The ID of the file (shortcuts are resolved)"),
		),
	)
	s.AddTool(getContentTool, common.Instrumented("drive_get_file_content", "drive", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetFileContent(ctx, request, sc)
		}))

	listPermissionsTool := mcp.NewTool("drive_list_permissions",
		mcp.WithDescription("List the permissions of a Drive file"),
		accountOption(),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The ID of the file"),
		),
	)
	s.AddTool(listPermissionsTool, common.Instrumented("drive_list_permissions", "drive", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleListPermissions(ctx, request, sc)
		}))

	checkPublicTool := mcp.NewTool("drive_check_public_access",
		mcp.WithDescription("Check whether a Drive file is accessible via a public link"),
		accountOption(),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The ID of the file"),
		),
	)
	s.AddTool(checkPublicTool, common.Instrumented("drive_check_public_access", "drive", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleCheckPublicAccess(ctx, request, sc)
		}))

	downloadURLTool := mcp.NewTool("drive_get_download_url",
		mcp.WithDescription("Download a Drive file and expose it for retrieval. Google-native files are exported (Docs to PDF, Sheets to XLSX, Slides to PDF by default). Returns a URL valid for a limited time."),
		accountOption(),
		mcp.WithString("fileId",
			mcp.Required(),
			mcp.Description("The ID of the file (shortcuts are resolved)"),
		),
		mcp.WithString("exportFormat",
			mcp.Description("Export format for Google-native files: 'pdf' or 'docx' for Docs, 'xlsx' or 'csv' for Sheets, 'pdf' or 'pptx' for Slides"),
		),
	)
	s.AddTool(downloadURLTool, common.Instrumented("drive_get_download_url", "drive", "get", sc,
		func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
			return handleGetDownloadURL(ctx, request, sc)
		}))

	if !readOnly {
		createFileTool := mcp.NewTool("drive_create_file",
			mcp.WithDescription("Create a file in Google Drive from inline content or by fetching a URL"),
			accountOption(),
			mcp.WithString("name",
				mcp.Required(),
				mcp.Description("Name of the new file"),
			),
			mcp.WithString("folderId",
				mcp.Description("Parent folder ID (default: 'root')"),
			),
			mcp.WithString("mimeType",
				mcp.Description("MIME type of the file (default: text/plain)"),
			),
			mcp.WithString("content",
				mcp.Description("Inline file content"),
			),
			mcp.WithString("sourceUrl",
				mcp.Description("URL to fetch the file content from instead of inline content"),
			),
		)
		s.AddTool(createFileTool, common.Instrumented("drive_create_file", "drive", "create", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleCreateFile(ctx, request, sc)
			}))

		updateMetadataTool := mcp.NewTool("drive_update_file_metadata",
			mcp.WithDescription("Rename a Drive file and/or move it between folders"),
			accountOption(),
			mcp.WithString("fileId",
				mcp.Required(),
				mcp.Description("The ID of the file"),
			),
			mcp.WithString("name",
				mcp.Description("New file name"),
			),
			mcp.WithString("addParentId",
				mcp.Description("Folder ID to add as parent"),
			),
			mcp.WithString("removeParentId",
				mcp.Description("Folder ID to remove as parent"),
			),
		)
		s.AddTool(updateMetadataTool, common.Instrumented("drive_update_file_metadata", "drive", "update", sc,
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				return handleUpdateFileMetadata(ctx, request, sc)
			}))
	}

	return nil
}

func handleSearchFiles(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	query := drive.BuildSearchQuery(request.GetString("query", ""))
	pageSize := int64(request.GetInt("pageSize", 10))

	var opts *drive.ListOptions
	driveID := request.GetString("driveId", "")
	corpora := request.GetString("corpora", "")
	if driveID != "" || corpora != "" {
		opts = &drive.ListOptions{DriveID: driveID, Corpora: corpora}
	}

	client, err := driveClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	files, err := client.SearchFiles(query, pageSize, opts)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to search files: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d files:\n", len(files))
	for i, f := range files {
		fmt.Fprintf(&b, "%d. %s (ID: %s, Type: %s, Size: %d, Modified: %s)\n",
			i+1, f.Name, f.Id, f.MimeType, f.Size, f.ModifiedTime)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleListFolder(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	folderID := request.GetString("folderId", "root")
	pageSize := int64(request.GetInt("pageSize", 100))

	client, err := driveClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	files, err := client.ListFolder(folderID, pageSize, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list folder: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Folder %s contains %d items:\n", folderID, len(files))
	for i, f := range files {
		kind := "file"
		if f.MimeType == drive.FolderMimeType {
			kind = "folder"
		}
		fmt.Fprintf(&b, "%d. [%s] %s (ID: %s)\n", i+1, kind, f.Name, f.Id)
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleGetFileContent(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID := request.GetString("fileId", "")
	if fileID == "" {
		return mcp.NewToolResultError("fileId is required"), nil
	}

	client, err := driveClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	content, err := client.GetFileContent(fileID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get file content: %v", err)), nil
	}

	header := fmt.Sprintf("File: %s (ID: %s, Type: %s, %d bytes", content.Name, content.ID, content.MimeType, len(content.Data))
	if content.Exported {
		header += ", exported"
	}
	header += ")\n\n"

	if utf8.Valid(content.Data) {
		return mcp.NewToolResultText(header + string(content.Data)), nil
	}
	return mcp.NewToolResultText(header + "(binary content, not shown)"), nil
}

func handleGetDownloadURL(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID := request.GetString("fileId", "")
	if fileID == "" {
		return mcp.NewToolResultError("fileId is required"), nil
	}
	format := request.GetString("exportFormat", "")

	store := sc.Attachments()
	if store == nil {
		return mcp.NewToolResultError("attachment storage is not configured"), nil
	}

	client, err := driveClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	_, meta, err := client.ResolveItem(fileID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to get file metadata: %v", err)), nil
	}

	exportMime, extension, err := drive.DownloadExportPlan(meta.MimeType, format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	content, err := client.DownloadFile(fileID, exportMime)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to download file: %v", err)), nil
	}

	filename := content.Name
	if extension != "" {
		filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + "." + extension
	}

	record, err := store.Put(filename, content.MimeType, content.Data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to store file: %v", err)), nil
	}

	result := fmt.Sprintf("File %q stored (%d bytes, %s).\nDownload URL: %s\nLocal path: %s\nExpires: %s",
		record.Filename, record.Size, record.MimeType, common.AttachmentDownloadURL(sc, record.ID), record.Path,
		record.ExpiresAt.Format("2006-01-02 15:04:05 MST"))
	if content.Exported {
		result += fmt.Sprintf("\nExported from %s to %s", meta.MimeType, content.MimeType)
	}
	return mcp.NewToolResultText(result), nil
}

func handleCreateFile(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	name := request.GetString("name", "")
	if name == "" {
		return mcp.NewToolResultError("name is required"), nil
	}
	folderID := request.GetString("folderId", "root")
	mimeType := request.GetString("mimeType", "text/plain")
	content := request.GetString("content", "")
	sourceURL := request.GetString("sourceUrl", "")

	if content == "" && sourceURL == "" {
		return mcp.NewToolResultError("either content or sourceUrl is required"), nil
	}
	if content != "" && sourceURL != "" {
		return mcp.NewToolResultError("content and sourceUrl are mutually exclusive"), nil
	}

	client, err := driveClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	var file *drive_v3.File
	if sourceURL != "" {
		file, err = client.CreateFileFromURL(ctx, name, folderID, sourceURL)
	} else {
		file, err = client.CreateFile(name, folderID, mimeType, []byte(content))
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to create file: %v", err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("File created: %s (ID: %s)\n%s",
		file.Name, file.Id, drive.FileViewURL(file.Id))), nil
}

func handleUpdateFileMetadata(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID := request.GetString("fileId", "")
	if fileID == "" {
		return mcp.NewToolResultError("fileId is required"), nil
	}
	name := request.GetString("name", "")
	addParentID := request.GetString("addParentId", "")
	removeParentID := request.GetString("removeParentId", "")
	if name == "" && addParentID == "" && removeParentID == "" {
		return mcp.NewToolResultError("at least one of name, addParentId or removeParentId is required"), nil
	}

	client, err := driveClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	file, err := client.UpdateFileMetadata(fileID, name, addParentID, removeParentID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to update file metadata: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("File updated: %s (ID: %s)", file.Name, file.Id)), nil
}

func handleListPermissions(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID := request.GetString("fileId", "")
	if fileID == "" {
		return mcp.NewToolResultError("fileId is required"), nil
	}

	client, err := driveClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	permissions, err := client.ListPermissions(fileID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to list permissions: %v", err)), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "File %s has %d permissions:\n", fileID, len(permissions))
	for _, p := range permissions {
		fmt.Fprintf(&b, "- %s\n", drive.FormatPermission(p))
	}
	if drive.HasPublicLink(permissions) {
		fmt.Fprintf(&b, "\nThe file is publicly accessible:\n%s\n", drive.PublicImageURL(fileID))
	}
	return mcp.NewToolResultText(b.String()), nil
}

func handleCheckPublicAccess(ctx context.Context, request mcp.CallToolRequest, sc *server.ServerContext) (*mcp.CallToolResult, error) {
	fileID := request.GetString("fileId", "")
	if fileID == "" {
		return mcp.NewToolResultError("fileId is required"), nil
	}

	client, err := driveClient(ctx, request, sc)
	if err != nil {
		return nil, err
	}

	public, err := client.CheckPublicAccess(fileID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to check public access: %v", err)), nil
	}

	if public {
		return mcp.NewToolResultText(fmt.Sprintf("File %s is publicly accessible:\n%s", fileID, drive.PublicImageURL(fileID))), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("File %s is not publicly accessible", fileID)), nil
}
