package domain

import "strings"

// Kind classifies a message body by the URI convention used for stored
// media. Anything that does not match is plain text.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
	KindAudio Kind = "audio"
	KindVideo Kind = "video"
)

// uploadPathMarker is the path segment the blob store puts into every
// media URI it hands out.
const uploadPathMarker = "/uploads/"

// KindOf applies the suffix/prefix convention: audio by .m4a/.mp3
// suffix, video by http prefix plus .mp4/.mov/.webm suffix, image by an
// http URI containing the upload-path marker.
func KindOf(text string) Kind {
	lower := strings.ToLower(text)
	switch {
	case strings.HasSuffix(lower, ".m4a"), strings.HasSuffix(lower, ".mp3"):
		return KindAudio
	case strings.HasPrefix(lower, "http") &&
		(strings.HasSuffix(lower, ".mp4") || strings.HasSuffix(lower, ".mov") || strings.HasSuffix(lower, ".webm")):
		return KindVideo
	case strings.HasPrefix(lower, "http") && strings.Contains(lower, uploadPathMarker):
		return KindImage
	default:
		return KindText
	}
}
