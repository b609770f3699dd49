package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLanguages(t *testing.T) {
	assert.ElementsMatch(t, []string{"en", "pl", "de", "fr"}, Languages())
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		lang string
		want string
	}{
		{"en", "Wallpaper set"},
		{"pl", "Ustawiono tapetę"},
		{"de-AT", "Hintergrundbild gesetzt"},
		{"fr", "Fond d'écran appliqué"},
		{"xx", "Wallpaper set"},
	}
	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			assert.Equal(t, tt.want, New(tt.lang).T("applied", nil))
		})
	}
}

func TestTemplateData(t *testing.T) {
	got := New("en").T("cache_status", map[string]any{"Count": 3, "Size": "1.2 MB"})
	assert.Equal(t, "3 thumbnails in cache (1.2 MB)", got)
}

func TestUnknownID(t *testing.T) {
	assert.Equal(t, "no_such_message", New("en").T("no_such_message", nil))
}

func TestFromEnv(t *testing.T) {
	t.Setenv("LANG", "pl_PL.UTF-8")
	assert.Equal(t, "pl-PL", FromEnv())
	assert.Equal(t, "pl", New("").Lang())

	t.Setenv("LANG", "C")
	assert.Equal(t, "en", New("").Lang())
}
