// Package config provides configuration loading and defaults for duowatch.
package config

import "time"

// DefaultConfigDir is the default location for duowatch configuration and
// the run archive.
const DefaultConfigDir = "~/.config/duowatch"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultDotEnvFile is loaded from the working directory when present.
const DefaultDotEnvFile = ".env"

// DefaultDataDir is where the stats document lives.
const DefaultDataDir = "~/.duo_data"

// DefaultDBName is the filename of the JSON stats document.
const DefaultDBName = "db.json"

// DefaultArchiveName is the filename for the SQLite run archive.
const DefaultArchiveName = "duowatch.db"

// DefaultAPIBaseURL is the learning platform's web API root.
const DefaultAPIBaseURL = "https://www.duolingo.com"

// DefaultHTTPTimeout bounds every outbound request.
const DefaultHTTPTimeout = 30 * time.Second

// DefaultReminder holds the site linked from the daily reminder.
var DefaultReminder = Reminder{
	Site: "Duo Lingo",
	URL:  "https://www.duolingo.com",
}

// envBindings maps config keys to the environment variables that feed them.
var envBindings = map[string]string{
	"duo_user_name":      "DUO_USER_NAME",
	"duo_password":       "DUO_PASSWORD",
	"users_to_track":     "USERS_TO_TRACK",
	"slack_web_hook_url": "SLACK_WEB_HOOK_URL",
	"api_base_url":       "DUO_API_BASE_URL",
	"data_dir":           "DUO_DATA_DIR",
	"discord.token":      "DISCORD_BOT_TOKEN",
	"discord.channel_id": "DISCORD_CHANNEL_ID",
}
