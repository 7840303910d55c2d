// Package repositories provides PostgreSQL-backed implementations of the
// domain repository interfaces: the PATSTAT read queries and the tool-owned
// run store.
package repositories

import (
	"context"
	"time"
)

// withQueryTimeout derives a context with the configured per-query timeout.
// A non-positive timeout leaves the context untouched.
func withQueryTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
