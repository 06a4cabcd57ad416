package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Default(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, "Statut changé à APPROVED", c.Format("fr", "notification.status_changed", map[string]string{"status": "APPROVED"}))
	assert.Equal(t, "Status changed to REJECTED", c.Format("en", "notification.status_changed", map[string]string{"status": "REJECTED"}))

	for _, key := range []string{"status.APPROVED", "status.REJECTED", "status.ANALYZED", "status.default", "history.analysis_simulated"} {
		assert.True(t, c.Has("fr", key), key)
		assert.True(t, c.Has("en", key), key)
	}
}

func TestCatalog_Translate(t *testing.T) {
	fsys := fstest.MapFS{
		"en.yaml":    {Data: []byte("MESSAGES:\n  greet: \"Hello {name}\"\n  only_en: \"English\"\n")},
		"fr.yaml":    {Data: []byte("MESSAGES:\n  greet: \"Bonjour {name}\"\n")},
		"README.txt": {Data: []byte("ignored")},
	}
	c, err := Load(fsys)
	require.NoError(t, err)

	t.Run("Locale hit", func(t *testing.T) {
		assert.Equal(t, "Bonjour Ada", c.Format("fr", "greet", map[string]string{"name": "Ada"}))
	})

	t.Run("Falls back to en", func(t *testing.T) {
		assert.Equal(t, "English", c.Translate("fr", "only_en"))
		assert.Equal(t, "English", c.Translate("de", "only_en"))
	})

	t.Run("Unknown key returns key", func(t *testing.T) {
		assert.Equal(t, "missing.key", c.Translate("fr", "missing.key"))
		assert.False(t, c.Has("fr", "missing.key"))
	})
}

func TestCatalog_LoadInvalidYAML(t *testing.T) {
	fsys := fstest.MapFS{
		"fr.yaml": {Data: []byte("MESSAGES: [unclosed")},
	}
	_, err := Load(fsys)
	assert.Error(t, err)
}
