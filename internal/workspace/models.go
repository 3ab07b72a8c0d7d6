package workspace

import (
	"time"

	"eventexport/internal/constants"
)

// Workspace is the tenant an export runs against.
type Workspace struct {
	ID         string
	Slug       string
	Plan       string
	CreatedAt  time.Time
	Usage      int64
	UsageLimit int64
}

// Session identifies the user acting on the workspace.
type Session struct {
	UserID  string
	TokenID string
}

type Domain struct {
	ID          string
	WorkspaceID string
	Slug        string
}

type Link struct {
	ID          string
	WorkspaceID string
	Domain      string
	Key         string
	FolderID    string
}

type Role string

const (
	RoleOwner  Role = "owner"
	RoleEditor Role = "editor"
	RoleViewer Role = "viewer"
)

// Folder access levels granted to every workspace member. A folder with no
// access level is restricted to its explicit members.
const (
	AccessLevelRead  = "read"
	AccessLevelWrite = "write"
)

var rolePermissions = map[Role][]string{
	RoleOwner:  {constants.PermissionFoldersRead, constants.PermissionFoldersWrite},
	RoleEditor: {constants.PermissionFoldersRead, constants.PermissionFoldersWrite},
	RoleViewer: {constants.PermissionFoldersRead},
}

// Can reports whether the role grants permission.
func (r Role) Can(permission string) bool {
	for _, p := range rolePermissions[r] {
		if p == permission {
			return true
		}
	}
	return false
}

// effectiveRole combines a folder's workspace-wide access level with the
// user's explicit membership. Explicit membership wins.
func effectiveRole(accessLevel, memberRole string) Role {
	if memberRole != "" {
		return Role(memberRole)
	}
	switch accessLevel {
	case AccessLevelWrite:
		return RoleEditor
	case AccessLevelRead:
		return RoleViewer
	}
	return ""
}
