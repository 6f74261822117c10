package out

import (
	"context"
	"errors"
)

// ErrObjectExists is returned when an upload would overwrite an object.
var ErrObjectExists = errors.New("object already exists")

// FileStoragePort stores uploaded CV files.
type FileStoragePort interface {
	// Upload stores data under name without overwriting and returns a public URL.
	Upload(ctx context.Context, name string, data []byte, contentType string) (string, error)
}
