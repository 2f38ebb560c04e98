package tracking

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildRedirectURL(t *testing.T) {
	tests := []struct {
		name        string
		destination string
		sessionID   string
		want        string
	}{
		{
			name:        "plain destination",
			destination: "https://cal.example/x",
			sessionID:   "abc",
			want:        "https://cal.example/x?utm_source=youtube&utm_medium=video_description&utm_campaign=demo&utm_content=book-a-call&utm_term=abc",
		},
		{
			name:        "keeps foreign params in order",
			destination: "https://cal.example/x?b=2&a=1",
			sessionID:   "abc",
			want:        "https://cal.example/x?b=2&a=1&utm_source=youtube&utm_medium=video_description&utm_campaign=demo&utm_content=book-a-call&utm_term=abc",
		},
		{
			name:        "overwrites reserved params",
			destination: "https://cal.example/x?utm_source=ads&ref=yt&utm_term=old&utm_campaign=spring",
			sessionID:   "abc",
			want:        "https://cal.example/x?ref=yt&utm_source=youtube&utm_medium=video_description&utm_campaign=demo&utm_content=book-a-call&utm_term=abc",
		},
		{
			name:        "no session id",
			destination: "https://cal.example/x?utm_term=old",
			want:        "https://cal.example/x?utm_source=youtube&utm_medium=video_description&utm_campaign=demo&utm_content=book-a-call",
		},
		{
			name:        "keeps fragment",
			destination: "https://cal.example/x?a=1#slots",
			sessionID:   "abc",
			want:        "https://cal.example/x?a=1&utm_source=youtube&utm_medium=video_description&utm_campaign=demo&utm_content=book-a-call&utm_term=abc#slots",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BuildRedirectURL(tt.destination, "demo", "book-a-call", tt.sessionID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildRedirectURL_EscapesValues(t *testing.T) {
	got, err := BuildRedirectURL("https://cal.example/x", "my video", "a&b", "s")
	require.NoError(t, err)

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "my video", u.Query().Get(ParamCampaign))
	assert.Equal(t, "a&b", u.Query().Get(ParamContent))
}

func TestBuildRedirectURL_InvalidDestination(t *testing.T) {
	for _, dest := range []string{"", "cal.example/x", "/relative", "ftp://cal.example/x", "https://"} {
		t.Run(dest, func(t *testing.T) {
			_, err := BuildRedirectURL(dest, "demo", "label", "s")
			assert.ErrorIs(t, err, ErrInvalidDestination)
			assert.ErrorIs(t, ValidateDestination(dest), ErrInvalidDestination)
		})
	}
}
