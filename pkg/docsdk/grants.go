package docsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Access levels for directory grants.
const (
	AccessLevelViewer = "viewer"
	AccessLevelEditor = "editor"
	AccessLevelOwner  = "owner"
)

// Grant gives a user access to a directory within a workspace.
type Grant struct {
	DirectoryID string    `json:"directory_id"`
	Subject     string    `json:"subject"`
	Level       string    `json:"level"`
	GrantedBy   string    `json:"granted_by"`
	GrantedAt   time.Time `json:"granted_at"`
}

// ListGrants returns the access grants on a directory.
func (c *Client) ListGrants(ctx context.Context, directoryID string) ([]Grant, error) {
	path := fmt.Sprintf("/v1/directories/%s/grants", url.PathEscape(directoryID))
	resp, err := c.doAuth(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Grants []Grant `json:"grants"`
	}
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out.Grants, nil
}

// GrantAccess gives subject the given access level on a directory.
func (c *Client) GrantAccess(ctx context.Context, directoryID, subject, level string) (*Grant, error) {
	path := fmt.Sprintf("/v1/directories/%s/grants", url.PathEscape(directoryID))
	resp, err := c.doAuth(ctx, http.MethodPost, path, map[string]string{
		"subject": subject,
		"level":   level,
	})
	if err != nil {
		return nil, err
	}

	var grant Grant
	if err := decodeJSON(resp, &grant, http.StatusCreated); err != nil {
		return nil, err
	}

	return &grant, nil
}

// RevokeAccess removes a subject's grant on a directory.
func (c *Client) RevokeAccess(ctx context.Context, directoryID, subject string) error {
	path := fmt.Sprintf("/v1/directories/%s/grants/%s", url.PathEscape(directoryID), url.PathEscape(subject))
	resp, err := c.doAuth(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}

	return checkStatusNoContent(resp)
}
