package config

import (
	"log"
	"os"

	"github.com/stake-plus/lazy-consensus-bot/src/data"
	"gorm.io/gorm"
)

type Config struct {
	Token           string
	GuildID         string
	VotingChannelID string
	GrantChannelID  string
	VoterRoleID     string
	MySQLDSN        string
	RedisURL        string
	Port            string
	JWTSecret       string
	APIKey          string
}

// Load reads configuration from the settings table, falling back to the
// environment for anything the table does not carry.
func Load(db *gorm.DB) Config {
	settings := data.NewSettings(db)
	if err := settings.Refresh(); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}
	return fromSettings(settings)
}

func fromSettings(s *data.Settings) Config {
	return Config{
		Token:           lookup(s, "discord_token", "DISCORD_TOKEN"),
		GuildID:         lookup(s, "guild_id", "GUILD_ID"),
		VotingChannelID: lookup(s, "voting_channel_id", "VOTING_CHANNEL_ID"),
		GrantChannelID:  lookup(s, "grant_channel_id", "GRANT_CHANNEL_ID"),
		VoterRoleID:     lookup(s, "voter_role_id", "VOTER_ROLE_ID"),
		MySQLDSN:        getenv("MYSQL_DSN", "lazyconsensus:lazyconsensus@tcp(127.0.0.1:3306)/lazyconsensus"),
		RedisURL:        getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
		Port:            getenv("PORT", "8080"),
		JWTSecret:       lookup(s, "jwt_secret", "JWT_SECRET"),
		APIKey:          lookup(s, "api_key", "API_KEY"),
	}
}

// lookup prefers the database setting, with the environment as fallback.
func lookup(s *data.Settings, name, envKey string) string {
	if v := s.Get(name); v != "" {
		return v
	}
	return os.Getenv(envKey)
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
