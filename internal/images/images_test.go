package images

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLDirect(t *testing.T) {
	b := New(ModeDirect, "", "")

	tests := []struct {
		name  string
		class Class
		path  string
		size  string
		want  string
	}{
		{"poster", Poster, "/abc.jpg", "w342", "https://image.tmdb.org/t/p/w342/abc.jpg"},
		{"no_leading_slash", Poster, "abc.jpg", "w500", "https://image.tmdb.org/t/p/w500/abc.jpg"},
		{"unknown_size_uses_default", Backdrop, "/b.jpg", "w500", "https://image.tmdb.org/t/p/w780/b.jpg"},
		{"profile_h632", Profile, "/p.jpg", "h632", "https://image.tmdb.org/t/p/h632/p.jpg"},
		{"still_original", Still, "/s.jpg", Original, "https://image.tmdb.org/t/p/original/s.jpg"},
		{"logo_default", Logo, "/l.png", "", "https://image.tmdb.org/t/p/w185/l.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := b.URL(tt.class, tt.path, tt.size)
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestURLProxy(t *testing.T) {
	b := New(ModeProxy, "", "/api/image/")
	got := b.URL(Poster, "/abc.jpg", "w500")
	require.NotNil(t, got)
	assert.Equal(t, "/api/image/w500/abc.jpg", *got)
	assert.Equal(t, ModeProxy, b.Mode())
}

func TestURLEmptyPath(t *testing.T) {
	for _, mode := range []Mode{ModeDirect, ModeProxy} {
		b := New(mode, "", "")
		assert.Nil(t, b.URL(Poster, "", "w500"))
		assert.Nil(t, b.URL(Poster, "/", "w500"))
		assert.Empty(t, b.String(Still, "", "w300"))
	}
}

func TestURLNeverDoublesSlash(t *testing.T) {
	for _, mode := range []Mode{ModeDirect, ModeProxy} {
		b := New(mode, "https://cdn.example/t/p/", "")
		got := b.String(Poster, "/x/y.jpg", "w500")
		rest := strings.TrimPrefix(got, "https://")
		assert.NotContains(t, rest, "//", got)
	}
}

func TestUnknownModeIsDirect(t *testing.T) {
	b := New("weird", "", "")
	assert.Equal(t, ModeDirect, b.Mode())
}

func TestIsProxySize(t *testing.T) {
	for _, s := range []string{"w45", "w92", "w154", "w185", "w300", "w342", "w500", "w780", "w1280", "h632", "original"} {
		assert.True(t, IsProxySize(s), s)
	}
	for _, s := range []string{"", "w1", "W500", "../x", "w500/"} {
		assert.False(t, IsProxySize(s), s)
	}
	assert.Len(t, ProxySizes(), 11)
}

func TestSizeForUnknownClass(t *testing.T) {
	assert.Equal(t, "w500", SizeFor("banner", "w1"))
	assert.Equal(t, "w154", SizeFor("banner", "w154"))
}
