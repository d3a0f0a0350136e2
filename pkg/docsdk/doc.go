// Package docsdk is the HTTP client for the Folio document workspace API.
//
// All workspace operations are thin wrappers that issue authenticated calls
// through an injected session guard, which handles bearer credentials and
// the refresh-and-replay dance. The identity-provider endpoints (password
// login, refresh exchange, revocation) are the exceptions: they are raw
// calls issued with the client's own HTTP client, because the refresh
// exchange must never be guarded by itself.
//
// Typical wiring:
//
//	client := docsdk.NewClient("https://api.folio.example")
//	manager := session.New(client, store, session.Config{})
//	client.Session = manager
package docsdk
