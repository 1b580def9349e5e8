// Package media abstracts the object-storage collaborator that holds
// product images and category icons. Deletion failures are logged by
// callers and never abort the primary operation.
package media

import (
	"context"
	"io"
)

type Storage interface {
	// Save stores the content under a generated name and returns its URL.
	Save(ctx context.Context, name string, content io.Reader) (string, error)
	Delete(ctx context.Context, url string) error
}
