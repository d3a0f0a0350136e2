package docsdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Report statuses. Generation runs server-side; a report starts pending and
// resolves to ready or failed.
const (
	ReportStatusPending = "pending"
	ReportStatusReady   = "ready"
	ReportStatusFailed  = "failed"
)

// Report is a generated summary or comparison of documents.
type Report struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"` // "summary" or "compare"
	Status      string    `json:"status"`
	DocumentIDs []string  `json:"document_ids"`
	Body        string    `json:"body,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// SummarizeDocument requests a summary report for a document.
func (c *Client) SummarizeDocument(ctx context.Context, documentID string) (*Report, error) {
	path := fmt.Sprintf("/v1/documents/%s/summarize", url.PathEscape(documentID))
	resp, err := c.doAuth(ctx, http.MethodPost, path, nil)
	if err != nil {
		return nil, err
	}

	var report Report
	if err := decodeJSON(resp, &report, http.StatusAccepted); err != nil {
		return nil, err
	}

	return &report, nil
}

// CompareDocuments requests a comparison report between two documents.
func (c *Client) CompareDocuments(ctx context.Context, leftID, rightID string) (*Report, error) {
	resp, err := c.doAuth(ctx, http.MethodPost, "/v1/reports/compare", map[string]string{
		"left_document_id":  leftID,
		"right_document_id": rightID,
	})
	if err != nil {
		return nil, err
	}

	var report Report
	if err := decodeJSON(resp, &report, http.StatusAccepted); err != nil {
		return nil, err
	}

	return &report, nil
}

// GetReport fetches a report by ID, typically polled until its status
// leaves pending.
func (c *Client) GetReport(ctx context.Context, reportID string) (*Report, error) {
	resp, err := c.doAuth(ctx, http.MethodGet, fmt.Sprintf("/v1/reports/%s", url.PathEscape(reportID)), nil)
	if err != nil {
		return nil, err
	}

	var report Report
	if err := decodeJSON(resp, &report, http.StatusOK); err != nil {
		return nil, err
	}

	return &report, nil
}
