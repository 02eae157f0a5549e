package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaskSecrets_SimpleMap(t *testing.T) {
	input := map[string]any{
		"username": "admin",
		"password": "secret123",
		"host":     "example.com",
	}

	result, ok := MaskSecrets(input).(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "admin", result["username"])
	assert.Equal(t, "***", result["password"])
	assert.Equal(t, "example.com", result["host"])
}

func TestMaskSecrets_AppConfig(t *testing.T) {
	cfg := Defaults()
	cfg.TMDB.APIKey = "abcdef"
	cfg.Version = "v1.2.3"

	result, ok := MaskSecrets(cfg).(map[string]any)
	require.True(t, ok)

	assert.NotContains(t, result, "Version", "yaml:\"-\" fields are skipped")
	tmdb, ok := result["tmdb"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "***", tmdb["api_key"])
	assert.Equal(t, "", tmdb["access_token"], "unset secrets stay visibly empty")
	assert.Equal(t, "en-US", tmdb["language"])

	server, ok := result["server"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, ":3001", server["listen_addr"])
	assert.Equal(t, []any{"http://localhost:3000", "http://localhost:3001"}, server["allowed_origins"])
}

func TestMaskSecrets_Nil(t *testing.T) {
	assert.Nil(t, MaskSecrets(nil))
	var p *AppConfig
	assert.Nil(t, MaskSecrets(p))
}
