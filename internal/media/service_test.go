package media

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/someoxygen/chat-app/internal/apperrors"
	"github.com/someoxygen/chat-app/internal/domain"
	"github.com/someoxygen/chat-app/internal/logger"
)

type fakeBlobStore struct {
	names []string
	types []string
	data  [][]byte
}

func (f *fakeBlobStore) Put(_ context.Context, name, contentType string, data []byte) (string, error) {
	f.names = append(f.names, name)
	f.types = append(f.types, contentType)
	f.data = append(f.data, data)
	return "http://localhost:3000/uploads/" + name, nil
}

func TestUploadAudioExtensionHandling(t *testing.T) {
	req := require.New(t)
	blobs := &fakeBlobStore{}
	svc := NewService(blobs, logger.Nop())
	b64 := base64.StdEncoding.EncodeToString([]byte("audio bytes"))

	uri, err := svc.UploadAudio(context.Background(), b64, "mp3")
	req.NoError(err)
	req.True(strings.HasSuffix(uri, ".mp3"))
	req.Equal("audio/mp3", blobs.types[0])
	req.Equal(domain.KindAudio, domain.KindOf(uri))

	// Unknown extensions fall back to m4a.
	uri, err = svc.UploadAudio(context.Background(), b64, "exe")
	req.NoError(err)
	req.True(strings.HasSuffix(uri, ".m4a"))
	uri, err = svc.UploadAudio(context.Background(), b64, "")
	req.NoError(err)
	req.True(strings.HasSuffix(uri, ".m4a"))
}

func TestUploadVideoExtensionHandling(t *testing.T) {
	req := require.New(t)
	blobs := &fakeBlobStore{}
	svc := NewService(blobs, logger.Nop())
	b64 := base64.StdEncoding.EncodeToString([]byte("video bytes"))

	uri, err := svc.UploadVideo(context.Background(), b64, "webm")
	req.NoError(err)
	req.True(strings.HasSuffix(uri, ".webm"))
	req.Equal(domain.KindVideo, domain.KindOf(uri))

	uri, err = svc.UploadVideo(context.Background(), b64, "avi")
	req.NoError(err)
	req.True(strings.HasSuffix(uri, ".mp4"))
}

func TestUploadImageNamesAndClassifies(t *testing.T) {
	req := require.New(t)
	blobs := &fakeBlobStore{}
	svc := NewService(blobs, logger.Nop())
	// Not a decodable image, so only the original is stored and the
	// thumbnail is skipped.
	b64 := base64.StdEncoding.EncodeToString([]byte("not an image"))

	uri, err := svc.UploadImage(context.Background(), b64)
	req.NoError(err)
	req.True(strings.HasSuffix(uri, ".jpg"))
	req.Len(blobs.names, 1)
	req.Equal("image/jpeg", blobs.types[0])
	req.Equal(domain.KindImage, domain.KindOf(uri))
}

func TestUploadRejectsBadPayloads(t *testing.T) {
	req := require.New(t)
	svc := NewService(&fakeBlobStore{}, logger.Nop())
	ctx := context.Background()

	_, err := svc.UploadImage(ctx, "")
	req.ErrorIs(err, apperrors.ErrMalformed)
	_, err = svc.UploadAudio(ctx, "%%%not-base64%%%", "mp3")
	req.ErrorIs(err, apperrors.ErrMalformed)
}

func TestDiskStorePut(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "http://localhost:3000/")
	req.NoError(err)

	uri, err := store.Put(context.Background(), "1724800000.jpg", "image/jpeg", []byte("payload"))
	req.NoError(err)
	req.Equal("http://localhost:3000/uploads/1724800000.jpg", uri)

	data, err := os.ReadFile(filepath.Join(dir, "1724800000.jpg"))
	req.NoError(err)
	req.Equal([]byte("payload"), data)
	req.Equal(dir, store.Dir())
}

func TestDiskStoreStripsPathComponents(t *testing.T) {
	req := require.New(t)
	dir := t.TempDir()
	store, err := NewDiskStore(dir, "http://localhost:3000")
	req.NoError(err)

	uri, err := store.Put(context.Background(), "../../etc/passwd", "text/plain", []byte("x"))
	req.NoError(err)
	req.Equal("http://localhost:3000/uploads/passwd", uri)
	_, err = os.Stat(filepath.Join(dir, "passwd"))
	req.NoError(err)
}
