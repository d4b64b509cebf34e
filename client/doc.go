// Package client provides the configurable HTTP client that fetches
// gallery pages, built on [net/http].
//
// # Building a Client
//
// Use [Build] to create a [Client] with functional options:
//
//	c, err := client.Build(
//		client.WithTimeout(30 * time.Second),
//		client.WithUserAgent("pageget/1.0"),
//	)
//
// Build the Client once and share it; it holds the connection pool.
//
// # Fetching
//
// Construct a [Request] and execute it with [Client.Fetch]. Any 2xx
// response yields the full body:
//
//	req, err := client.Request(ctx, u, http.MethodGet)
//	payload, err := c.Fetch(req)
//
// Failures come back as values callers can inspect with [errors.Is]
// and [errors.As]:
//
//   - [*UnexpectedStatusError] (wraps [ErrUnexpectedStatusCode]) for non-2xx
//     responses, carrying the status code and up to 4KB of body.
//   - [*TransportError] (wraps [ErrTransport]) when the request never
//     produced a response or the body broke off mid-read.
//   - [ErrBodyTooLarge] when [WithMaxBodySize] is set and exceeded.
//
// Fetch performs exactly one attempt; there is no retry logic.
package client
