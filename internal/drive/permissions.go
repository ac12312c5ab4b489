package drive

import (
	"fmt"
	"strings"
	"time"

	drive "google.golang.org/api/drive/v3"
)

var validShareRoles = []string{"commenter", "reader", "writer"}

var validShareTypes = []string{"anyone", "domain", "group", "user"}

// ValidateShareRole checks that a role is valid for sharing.
func ValidateShareRole(role string) error {
	for _, r := range validShareRoles {
		if role == r {
			return nil
		}
	}
	return fmt.Errorf("invalid role %q, must be one of: %s", role, strings.Join(validShareRoles, ", "))
}

// ValidateShareType checks that a grantee type is valid for sharing.
func ValidateShareType(shareType string) error {
	for _, t := range validShareTypes {
		if shareType == t {
			return nil
		}
	}
	return fmt.Errorf("invalid share type %q, must be one of: %s", shareType, strings.Join(validShareTypes, ", "))
}

// ValidateExpirationTime checks that an expiration timestamp is RFC 3339.
func ValidateExpirationTime(expirationTime string) error {
	if _, err := time.Parse(time.RFC3339, expirationTime); err != nil {
		return fmt.Errorf("invalid expiration time %q, must be RFC 3339 (e.g. 2025-01-15T00:00:00Z)", expirationTime)
	}
	return nil
}

// HasPublicLink reports whether a permission set grants "anyone with the
// link" access.
func HasPublicLink(permissions []*drive.Permission) bool {
	for _, p := range permissions {
		if p.Type != "anyone" {
			continue
		}
		switch p.Role {
		case "reader", "writer", "commenter":
			return true
		}
	}
	return false
}

// FormatPermission renders a permission as a human-readable line.
func FormatPermission(p *drive.Permission) string {
	var base string
	switch p.Type {
	case "anyone":
		base = fmt.Sprintf("Anyone with the link (%s) [id: %s]", p.Role, p.Id)
	case "user":
		base = fmt.Sprintf("User: %s (%s) [id: %s]", p.EmailAddress, p.Role, p.Id)
	case "group":
		base = fmt.Sprintf("Group: %s (%s) [id: %s]", p.EmailAddress, p.Role, p.Id)
	case "domain":
		base = fmt.Sprintf("Domain: %s (%s) [id: %s]", p.Domain, p.Role, p.Id)
	default:
		base = fmt.Sprintf("%s (%s) [id: %s]", p.Type, p.Role, p.Id)
	}

	var extras []string
	if p.ExpirationTime != "" {
		extras = append(extras, "expires: "+p.ExpirationTime)
	}
	for _, detail := range p.PermissionDetails {
		if detail.Inherited && detail.InheritedFrom != "" {
			extras = append(extras, "inherited from: "+detail.InheritedFrom)
			break
		}
	}

	if len(extras) > 0 {
		return base + " | " + strings.Join(extras, ", ")
	}
	return base
}

// PublicImageURL returns the Drive URL format that serves a publicly
// shared image for embedding.
func PublicImageURL(fileID string) string {
	return "https://drive.google.com/uc?export=view&id=" + fileID
}

// FileViewURL returns the Drive web UI URL for a file.
func FileViewURL(fileID string) string {
	return "https://drive.google.com/file/d/" + fileID + "/view"
}
