package types

import "strings"

// Identity is the acting user as asserted by a verified credential. It is
// never re-read from the store, so profile edits show up only after a new
// login.
type Identity struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	Role          string `json:"role"`
	WorkspaceName string `json:"workspaceName"`
	JobTitle      string `json:"jobTitle"`
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// WorkspaceKey normalizes a workspace name for case-insensitive comparison.
func WorkspaceKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
