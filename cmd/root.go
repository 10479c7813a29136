package cmd

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/vk-tinder/internal/cache"
	"github.com/spigell/vk-tinder/internal/matching"
	"github.com/spigell/vk-tinder/internal/vk"
)

const (
	app = "vk-tinder"
)

type Config struct {
	Search   *vk.SearchParams  `mapstructure:"search"`
	Weights  *matching.Weights `mapstructure:"weights" validate:"required"`
	Database *DatabaseConfig   `mapstructure:"database" validate:"required"`
	Redis    *cache.Config     `mapstructure:"redis"`
	VK       *VKConfig         `mapstructure:"vk" validate:"required"`

	TokenFile        string `mapstructure:"token-file"`
	ServiceTokenFile string `mapstructure:"service-token-file"`
	Output           string `mapstructure:"output" validate:"required"`

	PageSize       int `mapstructure:"page-size" validate:"gte=1,lte=1000"`
	StartOffset    int `mapstructure:"start-offset" validate:"gte=0"`
	TopK           int `mapstructure:"top-k" validate:"gte=0"`
	MaxEmptyRounds int `mapstructure:"max-empty-rounds" validate:"gte=0"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn" json:"-" validate:"required"`
}

type VKConfig struct {
	AppID         int           `mapstructure:"app-id"`
	UserAgent     string        `mapstructure:"user-agent"`
	RetryAttempts int           `mapstructure:"retry-attempts" validate:"gte=0"`
	RetryDelay    time.Duration `mapstructure:"retry-delay"`
}

var (
	// Used for flags.
	cfgFile string

	validate = validator.New()

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "vk-tinder finds people on VK with interests similar to yours",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	envs := map[string]string{
		"token-file":         "VK_TOKEN_FILE",
		"service-token-file": "VK_SERVICE_TOKEN_FILE",
		"database.dsn":       "VK_DATABASE_DSN",
		"redis.addr":         "VK_REDIS_ADDR",
		"redis.password":     "VK_REDIS_PASSWORD",
	}
	for key, env := range envs {
		if err := viper.BindEnv(key, env); err != nil {
			log.Fatalf("binding %s environment variable: %v", env, err)
		}
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is vk-tinder.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	w := matching.DefaultWeights()
	viper.SetDefault("weights.group-unit", w.GroupUnit)
	viper.SetDefault("weights.friend-unit", w.FriendUnit)
	viper.SetDefault("weights.music", w.Music)
	viper.SetDefault("weights.books", w.Books)
	viper.SetDefault("weights.age", w.Age)

	// 6 is "actively searching".
	viper.SetDefault("search.status", 6)
	viper.SetDefault("search.has-photo", true)

	viper.SetDefault("vk.retry-attempts", 5)
	viper.SetDefault("vk.retry-delay", "500ms")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.ttl", "24h")

	viper.SetDefault("token-file", "vk-token")
	viper.SetDefault("output", "output.json")
	viper.SetDefault("page-size", 15)
	viper.SetDefault("top-k", 10)
	viper.SetDefault("max-empty-rounds", 10)
}

func initConfig() {
	// Version does not need anything.
	if versionCmd.CalledAs() != "" {
		return
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Everything has a default or an env binding, so a missing default config file is fine.
	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config == nil {
		return nil, errors.New("config is empty")
	}

	if config.Search == nil {
		config.Search = &vk.SearchParams{}
	}

	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return config, nil
}
