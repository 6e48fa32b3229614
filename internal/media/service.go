package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"time"

	"github.com/disintegration/imaging"
	"go.uber.org/zap"

	"github.com/someoxygen/chat-app/internal/apperrors"
)

var (
	audioExtensions = map[string]bool{"m4a": true, "mp3": true, "wav": true, "ogg": true}
	videoExtensions = map[string]bool{"mp4": true, "mov": true, "webm": true}
)

// Service decodes base64 upload bodies, normalizes extensions and
// writes through the configured blob store.
type Service struct {
	store BlobStore
	log   *zap.SugaredLogger
}

func NewService(store BlobStore, log *zap.SugaredLogger) *Service {
	return &Service{store: store, log: log}
}

// UploadImage stores a jpg image plus a best-effort thumbnail and
// returns the image URL.
func (s *Service) UploadImage(ctx context.Context, b64 string) (string, error) {
	data, err := decode(b64)
	if err != nil {
		return "", err
	}
	name := fmt.Sprintf("%d.jpg", time.Now().UnixMilli())
	uri, err := s.store.Put(ctx, name, "image/jpeg", data)
	if err != nil {
		return "", err
	}
	if thumb, err := thumbnail(data); err == nil {
		if _, err := s.store.Put(ctx, name+"_thumb.jpg", "image/jpeg", thumb); err != nil {
			s.log.Debugw("thumbnail upload failed", "name", name, "err", err)
		}
	}
	return uri, nil
}

// UploadAudio stores an audio clip. Unknown extensions fall back to
// m4a.
func (s *Service) UploadAudio(ctx context.Context, b64, extension string) (string, error) {
	data, err := decode(b64)
	if err != nil {
		return "", err
	}
	if !audioExtensions[extension] {
		extension = "m4a"
	}
	name := fmt.Sprintf("%d.%s", time.Now().UnixMilli(), extension)
	return s.store.Put(ctx, name, "audio/"+extension, data)
}

// UploadVideo stores a video clip. Unknown extensions fall back to
// mp4.
func (s *Service) UploadVideo(ctx context.Context, b64, extension string) (string, error) {
	data, err := decode(b64)
	if err != nil {
		return "", err
	}
	if !videoExtensions[extension] {
		extension = "mp4"
	}
	name := fmt.Sprintf("%d.%s", time.Now().UnixMilli(), extension)
	return s.store.Put(ctx, name, "video/"+extension, data)
}

func decode(b64 string) ([]byte, error) {
	if b64 == "" {
		return nil, fmt.Errorf("%w: payload is required", apperrors.ErrMalformed)
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 payload", apperrors.ErrMalformed)
	}
	return data, nil
}

func thumbnail(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	thumb := imaging.Resize(img, 320, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
