// Package resolver maps request subdomains to project ids.
package resolver

import (
	"context"
	"errors"
)

// ErrNotFound means no project claims the subdomain.
var ErrNotFound = errors.New("project not found")

// Resolver looks up the project id serving a subdomain.
type Resolver interface {
	Resolve(ctx context.Context, subdomain string) (string, error)
}
