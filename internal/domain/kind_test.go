package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	cases := []struct {
		text string
		want Kind
	}{
		{"hello there", KindText},
		{"", KindText},
		{"https://cdn.example.com/uploads/1724800000.jpg", KindImage},
		{"http://localhost:3000/uploads/1724800000123.jpg", KindImage},
		{"https://bucket.s3.eu-west-1.amazonaws.com/uploads/voice.m4a", KindAudio},
		{"http://localhost:3000/uploads/1724800000.mp3", KindAudio},
		// Audio wins on suffix alone, no scheme needed.
		{"voice-note.m4a", KindAudio},
		{"https://cdn.example.com/uploads/clip.mp4", KindVideo},
		{"http://localhost:3000/uploads/clip.mov", KindVideo},
		{"https://cdn.example.com/uploads/clip.webm", KindVideo},
		// Video needs the http prefix; a bare filename stays text.
		{"clip.mp4", KindText},
		// Image needs the upload path marker.
		{"https://example.com/photos/cat.jpg", KindText},
		// Case-insensitive matching.
		{"HTTPS://CDN.EXAMPLE.COM/UPLOADS/CLIP.MP4", KindVideo},
		{"note.M4A", KindAudio},
		// A sentence mentioning a URL mid-text does not end with a media
		// suffix, so it stays text.
		{"check https://cdn.example.com/uploads/clip.mp4 out", KindText},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, KindOf(tc.text), "text=%q", tc.text)
	}
}
