package cmd

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/scoutjar/scoutjar-talent/internal/feed"
	"github.com/scoutjar/scoutjar-talent/internal/filtering"
)

const (
	app = "scoutjar-talent"
)

type Config struct {
	CoreURL          string          `mapstructure:"core-url"`
	MatchingURL      string          `mapstructure:"matching-url"`
	SemanticMatching bool            `mapstructure:"semantic-matching"`
	Timeout          time.Duration   `mapstructure:"timeout"`
	UserAgent        string          `mapstructure:"user-agent"`
	Email            string          `mapstructure:"email"`
	PasswordFile     string          `mapstructure:"password-file"`
	Session          *SessionConfig  `mapstructure:"session"`
	Feed             *FeedConfig     `mapstructure:"feed"`
	Messages         *MessagesConfig `mapstructure:"messages"`
	AI               *AIConfig       `mapstructure:"ai"`
}

type SessionConfig struct {
	// Backend is "file" (default) or "redis".
	Backend     string `mapstructure:"backend"`
	Path        string `mapstructure:"path"`
	RedisURL    string `mapstructure:"redis-url"`
	RedisPrefix string `mapstructure:"redis-prefix"`
}

type FeedConfig struct {
	filtering.Config `mapstructure:",squash"`

	Swipe feed.SwipeConfig `mapstructure:"swipe"`
}

type MessagesConfig struct {
	PollInterval time.Duration `mapstructure:"poll-interval"`
}

type AIConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Gemini  *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "scoutjar-talent is a terminal client for ScoutJar job seekers",
		Long: "scoutjar-talent lets a talent sign in to ScoutJar, swipe through matched jobs, " +
			"follow applications and chat with recruiters from the terminal.",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

var envBindings = map[string]string{
	"core-url":               "SCOUTJAR_SERVER_BASE_URL",
	"matching-url":           "SCOUTJAR_AI_BASE_URL",
	"password-file":          "SCOUTJAR_PASSWORD_FILE",
	"session.path":           "SCOUTJAR_SESSION_PATH",
	"session.redis-url":      "SCOUTJAR_REDIS_URL",
	"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
}

func init() {
	for key, env := range envBindings {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is scoutjar-talent.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	swipe := feed.DefaultSwipeConfig()

	viper.SetDefault("core-url", "http://localhost:5000")
	viper.SetDefault("matching-url", "http://localhost:8000")
	viper.SetDefault("timeout", 10*time.Second)
	viper.SetDefault("session.backend", "file")
	viper.SetDefault("session.path", defaultSessionPath())
	viper.SetDefault("feed.exclude-applied", false)
	viper.SetDefault("feed.swipe.velocity-threshold", swipe.VelocityThreshold)
	viper.SetDefault("feed.swipe.directional-offset-threshold", swipe.DirectionalOffsetThreshold)
	viper.SetDefault("messages.poll-interval", 5*time.Second)
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", app, "session.json")
	}
	return filepath.Join(home, ".config", app, "session.json")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional; defaults and environment cover a local setup.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Session == nil {
		config.Session = &SessionConfig{}
	}
	if config.Feed == nil {
		config.Feed = &FeedConfig{Swipe: feed.DefaultSwipeConfig()}
	}
	if config.Messages == nil {
		config.Messages = &MessagesConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}

	return config, nil
}
