package docsdk

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

// Document is an uploaded file inside a workspace.
type Document struct {
	ID          string    `json:"id"`
	WorkspaceID string    `json:"workspace_id"`
	DirectoryID string    `json:"directory_id,omitempty"`
	Name        string    `json:"name"`
	Size        int64     `json:"size"`
	ContentType string    `json:"content_type"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// ShareLink is a generated link granting access to a single document.
type ShareLink struct {
	DocumentID string    `json:"document_id"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ListDocuments returns the documents in a workspace.
func (c *Client) ListDocuments(ctx context.Context, workspaceID string) ([]Document, error) {
	path := fmt.Sprintf("/v1/workspaces/%s/documents", url.PathEscape(workspaceID))
	resp, err := c.doAuth(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var out struct {
		Documents []Document `json:"documents"`
	}
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	return out.Documents, nil
}

// UploadDocument uploads a file into a workspace. The multipart payload is
// buffered in memory so the request stays replayable across the guard's
// single refresh-and-retry.
func (c *Client) UploadDocument(ctx context.Context, workspaceID, filename string, content io.Reader) (*Document, error) {
	if c.Session == nil {
		return nil, fmt.Errorf("docsdk: no session wired")
	}

	if err := c.throttle(ctx); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("creating multipart payload: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("reading upload content: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing multipart payload: %w", err)
	}

	path := fmt.Sprintf("/v1/workspaces/%s/documents", url.PathEscape(workspaceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(buf.Bytes()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.Session.Do(ctx, req)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := decodeJSON(resp, &doc, http.StatusCreated); err != nil {
		return nil, err
	}

	return &doc, nil
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	resp, err := c.doAuth(ctx, http.MethodDelete, fmt.Sprintf("/v1/documents/%s", url.PathEscape(documentID)), nil)
	if err != nil {
		return err
	}

	return checkStatusNoContent(resp)
}

// ShareDocument creates a share link for a document, valid for the given
// duration.
func (c *Client) ShareDocument(ctx context.Context, documentID string, ttl time.Duration) (*ShareLink, error) {
	path := fmt.Sprintf("/v1/documents/%s/share", url.PathEscape(documentID))
	resp, err := c.doAuth(ctx, http.MethodPost, path, map[string]any{
		"ttl_seconds": int(ttl.Seconds()),
	})
	if err != nil {
		return nil, err
	}

	var link ShareLink
	if err := decodeJSON(resp, &link, http.StatusCreated); err != nil {
		return nil, err
	}

	return &link, nil
}
