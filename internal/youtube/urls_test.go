package youtube

import "testing"

func TestExtractVideoID(t *testing.T) {
	testCases := []struct {
		name string
		url  string
		want string
	}{
		{"watch url", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"watch url with extra params", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ"},
		{"short link", "https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"short link with query", "https://youtu.be/dQw4w9WgXcQ?si=abc", "dQw4w9WgXcQ"},
		{"embed", "https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"shorts", "https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"live", "https://www.youtube.com/live/dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"mobile host", "https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"no scheme", "youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ"},
		{"wrong host", "https://vimeo.com/watch?v=dQw4w9WgXcQ", ""},
		{"id too short", "https://www.youtube.com/watch?v=short", ""},
		{"channel url", "https://www.youtube.com/@somecreator", ""},
		{"empty", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ExtractVideoID(tc.url); got != tc.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tc.url, got, tc.want)
			}
		})
	}
}

func TestExtractChannelInfo(t *testing.T) {
	testCases := []struct {
		name     string
		url      string
		wantKind ChannelIdentifierKind
		wantID   string
	}{
		{"channel id path", "https://www.youtube.com/channel/UC12345", IdentifierChannelID, "UC12345"},
		{"legacy user path", "https://www.youtube.com/user/legacyname", IdentifierUsername, "legacyname"},
		{"custom c path", "https://www.youtube.com/c/SomeBrand", IdentifierCustom, "SomeBrand"},
		{"handle", "https://www.youtube.com/@creator", IdentifierHandle, "@creator"},
		{"bare custom path", "https://www.youtube.com/SomeBrand", IdentifierCustom, "SomeBrand"},
		{"reserved path", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "", ""},
		{"video host", "https://youtu.be/dQw4w9WgXcQ", "", ""},
		{"empty path", "https://www.youtube.com/", "", ""},
		{"garbage", "not a url at all://", "", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			kind, id := ExtractChannelInfo(tc.url)
			if kind != tc.wantKind || id != tc.wantID {
				t.Errorf("ExtractChannelInfo(%q) = (%q, %q), want (%q, %q)",
					tc.url, kind, id, tc.wantKind, tc.wantID)
			}
		})
	}
}

func TestURLValidation(t *testing.T) {
	if !IsValidVideoURL("https://youtu.be/dQw4w9WgXcQ") {
		t.Error("youtu.be should be a valid video host")
	}
	if IsValidChannelURL("https://youtu.be/dQw4w9WgXcQ") {
		t.Error("youtu.be is not a valid channel host")
	}
	if !IsValidChannelURL("music.youtube.com/@artist") {
		t.Error("music.youtube.com should be a valid channel host")
	}
	if IsValidVideoURL("https://example.com/watch?v=dQw4w9WgXcQ") {
		t.Error("unknown host should not validate")
	}
}
