// Package rp provides a scope-based client for the Report Portal 5.x API.
//
// Usage:
//
//	client, err := rp.New(baseURL, token, rp.WithTimeout(30*time.Second))
//	launches, err := client.Project("ecosystem-qe").Launches().ListAll(ctx, rp.WithStartedBetween(from, to))
//	items, err := client.Project("ecosystem-qe").Items().ListAll(ctx, rp.WithLaunchID(33195), rp.WithStatus("FAILED"))
//	err = client.Project("ecosystem-qe").Items().AddComment(ctx, 1697136, "analyzed", "INFO")
//
// Reads are paginated transparently via the ListAll helpers; writes are
// single-shot with no retry. All methods surface non-2xx responses as
// *APIError, inspectable through the predicate helpers in errors.go.
package rp
