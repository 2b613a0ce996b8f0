package localization_test

import (
	"strangerchat/backend/internal/localization"
	"strangerchat/backend/internal/models"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allEvents = []models.EventKind{
	models.EventConnected,
	models.EventWaiting,
	models.EventRemoved,
	models.EventPartnerDisconnected,
	models.EventChatEnded,
	models.EventNotConnected,
	models.EventAlreadyWaiting,
	models.EventAlreadyChatting,
	models.EventUnsupportedPayload,
	models.EventDeliveryFailed,
	models.EventRateLimited,
}

func TestBundledTranslationsAreComplete(t *testing.T) {
	l, err := localization.New("en")
	require.NoError(t, err)
	assert.Equal(t, []string{"en", "ru", "uk"}, l.Languages())

	keys := []string{"privacy", "help", "unknown_command"}
	for _, ev := range allEvents {
		keys = append(keys, ev.LocalizationKey())
	}

	for _, lang := range l.Languages() {
		for _, key := range keys {
			assert.NotEqual(t, key, l.GetString(lang, key), "%s is missing %s", lang, key)
		}
	}
}

func TestGetStringFallback(t *testing.T) {
	fsys := fstest.MapFS{
		"en.json":   {Data: []byte(`{"hello": "Hello", "bye": "Bye"}`)},
		"uk.json":   {Data: []byte(`{"hello": "Привіт"}`)},
		"README.md": {Data: []byte("ignored")},
		"nested/x":  {Data: []byte("ignored")},
	}
	l, err := localization.NewLocalizer(fsys, "en")
	require.NoError(t, err)

	assert.Equal(t, "Привіт", l.GetString("uk", "hello"))
	assert.Equal(t, "Bye", l.GetString("uk", "bye"), "missing key uses the fallback language")
	assert.Equal(t, "Hello", l.GetString("de", "hello"), "unknown language uses the fallback language")
	assert.Equal(t, "nope", l.GetString("uk", "nope"), "unknown key returns the key")
}

func TestNewLocalizerErrors(t *testing.T) {
	_, err := localization.NewLocalizer(fstest.MapFS{
		"en.json": {Data: []byte(`{not json`)},
	}, "en")
	assert.Error(t, err)

	_, err = localization.NewLocalizer(fstest.MapFS{
		"uk.json": {Data: []byte(`{}`)},
	}, "en")
	assert.Error(t, err, "fallback language must be loaded")
}

func TestResolve(t *testing.T) {
	l, err := localization.New("en")
	require.NoError(t, err)

	assert.Equal(t, "uk", l.Resolve("uk"))
	assert.Equal(t, "ru", l.Resolve("RU"))
	assert.Equal(t, "en", l.Resolve("en-US"))
	assert.Equal(t, "en", l.Resolve("de"))
	assert.Equal(t, "en", l.Resolve(""))
}
