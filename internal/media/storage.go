// Package media stores user-submitted blobs (images, audio, video) and
// hands back URIs that clients embed into message text. The messaging
// core never inspects blobs; it only recognizes the returned URIs by
// suffix/prefix convention (domain.KindOf).
package media

import "context"

// BlobStore writes a binary payload and returns a retrievable URI.
type BlobStore interface {
	Put(ctx context.Context, name, contentType string, data []byte) (string, error)
}
