package imagestore

import "context"

// Store is the external image-hosting service. Upload returns a stable
// public URL for the stored asset; Delete removes an asset previously
// returned by Upload.
type Store interface {
	Upload(ctx context.Context, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, rawURL string) error
}
