package plugin

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalizableMessages(t *testing.T) {
	b, err := os.ReadFile(filepath.Join("..", "..", "assets", "i18n", "active.de.json"))
	require.NoError(t, err)
	translations := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(b, &translations))

	ids := map[string]bool{}
	for _, m := range localizableMessages {
		assert.False(t, ids[m.ID], "duplicate message ID %s", m.ID)
		ids[m.ID] = true
		assert.Contains(t, translations, m.ID)
	}
}

func TestLocalizeMessage(t *testing.T) {
	c := localizeMessage(responseVoteCounted)
	assert.Equal(t, responseVoteCounted, c.DefaultMessage)
	assert.Nil(t, c.TemplateData)
}
