package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stake-plus/lazy-consensus-bot/src/data"
)

func TestFromSettingsPrefersDatabaseOverEnv(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "env-token")
	t.Setenv("GUILD_ID", "env-guild")
	t.Setenv("PORT", "")

	settings := data.SettingsFromMap(map[string]string{
		"discord_token": "db-token",
	})

	cfg := fromSettings(settings)

	assert.Equal(t, "db-token", cfg.Token)
	assert.Equal(t, "env-guild", cfg.GuildID)
	assert.Equal(t, "8080", cfg.Port)
}
