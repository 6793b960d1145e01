package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the top-level duowatch configuration.
type Config struct {
	UserName     string        `mapstructure:"duo_user_name"`
	Password     string        `mapstructure:"duo_password"`
	UsersToTrack []string      `mapstructure:"users_to_track"`
	SlackWebhook string        `mapstructure:"slack_web_hook_url"`
	APIBaseURL   string        `mapstructure:"api_base_url"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
	DataDir      string        `mapstructure:"data_dir"`
	DBName       string        `mapstructure:"db_name"`
	TrackSelf    bool          `mapstructure:"track_self"`
	SelfName     string        `mapstructure:"self_name"`
	Archive      bool          `mapstructure:"archive"`
	Desktop      bool          `mapstructure:"desktop"`
	Discord      Discord       `mapstructure:"discord"`
	Reminder     Reminder      `mapstructure:"reminder"`
}

// Discord configures the optional Discord channel sink.
type Discord struct {
	Token     string `mapstructure:"token"`
	ChannelID string `mapstructure:"channel_id"`
}

// Enabled reports whether both a bot token and a channel are set.
func (d Discord) Enabled() bool {
	return d.Token != "" && d.ChannelID != ""
}

// Reminder defines the link embedded in the daily reminder.
type Reminder struct {
	Site string `mapstructure:"site"`
	URL  string `mapstructure:"url"`
}

// ErrMissingCredentials is returned by Validate when the account login is unset.
var ErrMissingCredentials = errors.New("DUO_USER_NAME and DUO_PASSWORD must be set")

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location),
// layers a .env file and the environment on top, and returns a Config with
// all defaults applied.
func Load(cfgFile string) (*Config, error) {
	return load(cfgFile, DefaultDotEnvFile)
}

func load(cfgFile, dotEnvFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("api_base_url", DefaultAPIBaseURL)
	v.SetDefault("http_timeout", DefaultHTTPTimeout)
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("db_name", DefaultDBName)
	v.SetDefault("track_self", true)
	v.SetDefault("archive", true)
	v.SetDefault("desktop", false)
	v.SetDefault("reminder.site", DefaultReminder.Site)
	v.SetDefault("reminder.url", DefaultReminder.URL)

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	if err := mergeDotEnv(v, dotEnvFile); err != nil {
		return nil, err
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.UsersToTrack = cleanUsernames(cfg.UsersToTrack)
	if cfg.SelfName == "" {
		cfg.SelfName = cfg.UserName
	}
	cfg.DataDir = expandPath(cfg.DataDir)

	return &cfg, nil
}

// mergeDotEnv merges KEY=value pairs from a dotenv file as a config layer.
// Real environment variables still take precedence.
func mergeDotEnv(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	env := viper.New()
	env.SetConfigFile(path)
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		return err
	}

	settings := make(map[string]any)
	for key, envName := range envBindings {
		if val := env.GetString(strings.ToLower(envName)); val != "" {
			setNested(settings, key, val)
		}
	}
	return v.MergeConfigMap(settings)
}

// setNested writes a dotted key into a nested map so that MergeConfigMap
// sees "discord.token" as {"discord": {"token": ...}}.
func setNested(m map[string]any, key, val string) {
	parts := strings.Split(key, ".")
	for _, p := range parts[:len(parts)-1] {
		child, ok := m[p].(map[string]any)
		if !ok {
			child = make(map[string]any)
			m[p] = child
		}
		m = child
	}
	m[parts[len(parts)-1]] = val
}

// cleanUsernames trims whitespace and drops empty entries. A single
// comma-joined element (as it arrives from USERS_TO_TRACK) is split.
func cleanUsernames(in []string) []string {
	var out []string
	for _, entry := range in {
		for _, name := range strings.Split(entry, ",") {
			name = strings.TrimSpace(name)
			if name != "" {
				out = append(out, name)
			}
		}
	}
	return out
}

// Validate checks the settings needed to talk to the account API.
func (c *Config) Validate() error {
	if c.UserName == "" || c.Password == "" {
		return ErrMissingCredentials
	}
	return nil
}

// StorePath returns the full path to the JSON stats document.
func (c *Config) StorePath() string {
	return filepath.Join(c.DataDir, c.DBName)
}

// ArchivePath returns the full path to the SQLite run archive.
func ArchivePath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultArchiveName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}
