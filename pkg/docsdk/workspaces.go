package docsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Workspace is a named container for documents and directories.
type Workspace struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ListWorkspaces returns the workspaces visible to the current user.
func (c *Client) ListWorkspaces(ctx context.Context) ([]Workspace, error) {
	resp, err := c.doAuth(ctx, http.MethodGet, "/v1/workspaces", nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Workspaces []Workspace `json:"workspaces"`
	}
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out.Workspaces, nil
}

// CreateWorkspace creates a workspace owned by the current user.
func (c *Client) CreateWorkspace(ctx context.Context, name string) (*Workspace, error) {
	resp, err := c.doAuth(ctx, http.MethodPost, "/v1/workspaces", map[string]string{
		"name": name,
	})
	if err != nil {
		return nil, err
	}

	var ws Workspace
	if err := decodeJSON(resp, &ws, http.StatusCreated); err != nil {
		return nil, err
	}

	return &ws, nil
}

// DeleteWorkspace removes a workspace and everything in it.
func (c *Client) DeleteWorkspace(ctx context.Context, workspaceID string) error {
	resp, err := c.doAuth(ctx, http.MethodDelete, fmt.Sprintf("/v1/workspaces/%s", url.PathEscape(workspaceID)), nil)
	if err != nil {
		return err
	}

	return checkStatusNoContent(resp)
}
