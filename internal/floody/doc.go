// Package floody is a typed HTTP client for the Floody backend REST API.
//
// Every authenticated request carries the OAuth bearer token and the selected CM profile id in the "profile" header, asks for JSON and disables caching.
// Non-2xx responses are returned as [*APIError], which unwraps to [shared.ErrAPIRequest].
//
// Outbound requests pass through a token-bucket limiter from golang.org/x/time/rate.
package floody
