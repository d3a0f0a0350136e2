package docsdk

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// passthroughDoer is a stand-in session guard that forwards requests with a
// fixed bearer token and no refresh behavior.
type passthroughDoer struct {
	token string
}

func (d *passthroughDoer) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	r := req.Clone(ctx)
	r.Header.Set("Authorization", "Bearer "+d.token)
	return http.DefaultClient.Do(r)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewClient(srv.URL)
	client.Session = &passthroughDoer{token: "test-token"}
	return client
}

func TestLoginPassword(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/auth/login", r.URL.Path)
		require.Empty(t, r.Header.Get("Authorization"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, "user@example.com", body["email"])

		_ = json.NewEncoder(w).Encode(TokenPair{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			TokenType:    "Bearer",
			ExpiresIn:    900,
		})
	})

	pair, err := client.LoginPassword(context.Background(), "user@example.com", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "access-1", pair.AccessToken)
	require.Equal(t, "refresh-1", pair.RefreshToken)
}

func TestLoginPasswordRejected(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"invalid_token","message":"bad credentials"}`))
	})

	_, err := client.LoginPassword(context.Background(), "user@example.com", "wrong")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, ErrorCodeInvalidToken, apiErr.Code)
	require.True(t, apiErr.IsAuthFailure())
}

func TestExchangeRefresh(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/auth/refresh", r.URL.Path)
		// The refresh exchange is never guarded.
		require.Empty(t, r.Header.Get("Authorization"))

		_ = json.NewEncoder(w).Encode(TokenPair{
			AccessToken:  "access-2",
			RefreshToken: "refresh-2",
		})
	})

	pair, err := client.ExchangeRefresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	require.Equal(t, "access-2", pair.AccessToken)
	require.Equal(t, "refresh-2", pair.RefreshToken)
}

func TestExchangeRefreshRejected(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"code":"invalid_token","message":"refresh token revoked"}`))
	})

	_, err := client.ExchangeRefresh(context.Background(), "dead-token")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, ErrorCodeInvalidToken, apiErr.Code)
}

func TestListWorkspaces(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/workspaces", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		_, _ = w.Write([]byte(`{"workspaces":[{"id":"ws-1","name":"Research"},{"id":"ws-2","name":"Legal"}]}`))
	})

	workspaces, err := client.ListWorkspaces(context.Background())
	require.NoError(t, err)
	require.Len(t, workspaces, 2)
	require.Equal(t, "Research", workspaces[0].Name)
}

func TestUploadDocument(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/workspaces/ws-1/documents", r.URL.Path)
		require.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		require.Equal(t, "notes.md", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		require.Equal(t, "# notes", string(content))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Document{ID: "doc-1", WorkspaceID: "ws-1", Name: "notes.md"})
	})

	doc, err := client.UploadDocument(context.Background(), "ws-1", "notes.md", strings.NewReader("# notes"))
	require.NoError(t, err)
	require.Equal(t, "doc-1", doc.ID)
}

func TestShareDocument(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/documents/doc-1/share", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.EqualValues(t, 3600, body["ttl_seconds"])

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(ShareLink{DocumentID: "doc-1", URL: "https://folio.example/s/abc"})
	})

	link, err := client.ShareDocument(context.Background(), "doc-1", time.Hour)
	require.NoError(t, err)
	require.Equal(t, "https://folio.example/s/abc", link.URL)
}

func TestGrantLifecycle(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost:
			require.Equal(t, "/v1/directories/dir-1/grants", r.URL.Path)
			w.WriteHeader(http.StatusCreated)
			_ = json.NewEncoder(w).Encode(Grant{DirectoryID: "dir-1", Subject: "user-2", Level: AccessLevelEditor})
		case r.Method == http.MethodDelete:
			require.Equal(t, "/v1/directories/dir-1/grants/user-2", r.URL.Path)
			w.WriteHeader(http.StatusNoContent)
		default:
			require.Equal(t, "/v1/directories/dir-1/grants", r.URL.Path)
			_, _ = w.Write([]byte(`{"grants":[{"directory_id":"dir-1","subject":"user-2","level":"editor"}]}`))
		}
	})

	ctx := context.Background()

	grant, err := client.GrantAccess(ctx, "dir-1", "user-2", AccessLevelEditor)
	require.NoError(t, err)
	require.Equal(t, AccessLevelEditor, grant.Level)

	grants, err := client.ListGrants(ctx, "dir-1")
	require.NoError(t, err)
	require.Len(t, grants, 1)

	require.NoError(t, client.RevokeAccess(ctx, "dir-1", "user-2"))
}

func TestParseErrorResponseFallback(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("upstream exploded"))
	})

	_, err := client.ListWorkspaces(context.Background())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	require.Equal(t, ErrorCodeServerError, apiErr.Code)
}
