package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		kind  Kind
		url   string
		id    string
	}{
		{
			"Permalink",
			"https://www.tiktok.com/@scout2015/video/6718335390845095173",
			Permalink,
			"https://www.tiktok.com/@scout2015/video/6718335390845095173",
			"6718335390845095173",
		},
		{
			"Permalink with query inside text",
			"look at this https://www.tiktok.com/@some.user/video/7234567890123456789?is_from_webapp=1 lol",
			Permalink,
			"https://www.tiktok.com/@some.user/video/7234567890123456789?is_from_webapp=1",
			"7234567890123456789",
		},
		{
			"Permalink without scheme",
			"tiktok.com/@user/video/123",
			Permalink,
			"https://tiktok.com/@user/video/123",
			"123",
		},
		{
			"Mobile permalink over http",
			"http://m.tiktok.com/@user/video/42",
			Permalink,
			"https://m.tiktok.com/@user/video/42",
			"42",
		},
		{
			"Shortlink vm",
			"https://vm.tiktok.com/ZMeAbCdEf/",
			Shortlink,
			"https://vm.tiktok.com/ZMeAbCdEf/",
			"ZMeAbCdEf",
		},
		{
			"Shortlink vt followed by punctuation",
			"(vt.tiktok.com/ZSxyz123)",
			Shortlink,
			"https://vt.tiktok.com/ZSxyz123",
			"ZSxyz123",
		},
		{
			"Handle-qualified photo",
			"https://www.tiktok.com/@user/photo/7300000000000000000",
			HandleQualified,
			"https://www.tiktok.com/@user/photo/7300000000000000000",
			"7300000000000000000",
		},
		{
			"Permalink right after a colon",
			"Link:https://www.tiktok.com/@user/video/123",
			Permalink,
			"https://www.tiktok.com/@user/video/123",
			"123",
		},
		{
			"Permalink in brackets",
			"[https://www.tiktok.com/@u/video/5]",
			Permalink,
			"https://www.tiktok.com/@u/video/5",
			"5",
		},
		{
			"Shortlink in guillemets",
			"«https://vm.tiktok.com/ZMabc/»",
			Shortlink,
			"https://vm.tiktok.com/ZMabc/",
			"ZMabc",
		},
		{
			"Shortlink after cyrillic text",
			"видео:https://vm.tiktok.com/ZMabc/",
			Shortlink,
			"https://vm.tiktok.com/ZMabc/",
			"ZMabc",
		},
		{
			"Schemeless permalink after a colon",
			"link:tiktok.com/@user/video/77",
			Permalink,
			"https://tiktok.com/@user/video/77",
			"77",
		},
		{
			"Lookalike host skipped for a later link",
			"see nottiktok.com/@a/video/1 and https://www.tiktok.com/@b/video/2",
			Permalink,
			"https://www.tiktok.com/@b/video/2",
			"2",
		},
		{
			"Bare slug",
			"https://www.tiktok.com/t/ZTRabc123/",
			BareSlug,
			"https://www.tiktok.com/t/ZTRabc123/",
			"ZTRabc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, ok := Classify(tt.input)
			require.True(t, ok)
			assert.Equal(t, tt.kind, match.Kind)
			assert.Equal(t, tt.url, match.URL)
			assert.Equal(t, tt.id, match.ID)
			assert.True(t, IsSupported(tt.input))
		})
	}
}

func TestClassifyNoMatch(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"Send me a link",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://www.tiktok.com/",
		"https://www.tiktok.com/@user",
		"https://nottiktok.com/@user/video/123",
		"see nottiktok.com/@a/video/1 and x.tiktok.com/@b/video/2",
		"tiktok.com/@user/video/notdigits",
		"%%%://\x00\xff",
	}

	for _, in := range inputs {
		match, ok := Classify(in)
		assert.False(t, ok, "input %q", in)
		assert.Equal(t, Match{}, match)
		assert.False(t, IsSupported(in))
	}
}

func TestClassifyFirstPatternWins(t *testing.T) {
	text := "https://vm.tiktok.com/ZMshort/ https://www.tiktok.com/@user/video/999"

	match, ok := Classify(text)
	require.True(t, ok)
	assert.Equal(t, Permalink, match.Kind)
	assert.Equal(t, "999", match.ID)
}
