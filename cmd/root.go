package cmd

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Ujjwal-Bajpayee/synapse/internal/ai"
	"github.com/Ujjwal-Bajpayee/synapse/internal/ai/gemini"
	"github.com/Ujjwal-Bajpayee/synapse/internal/linkedin"
	"github.com/Ujjwal-Bajpayee/synapse/internal/logger"
	"github.com/Ujjwal-Bajpayee/synapse/internal/secrets"
	"github.com/Ujjwal-Bajpayee/synapse/internal/sourcing"
	"github.com/Ujjwal-Bajpayee/synapse/internal/store"
)

const (
	app = "synapse"

	defaultStorePath = "synapse_cache.db"
)

type Config struct {
	StorePath string    `mapstructure:"store-path"`
	TopN      int       `mapstructure:"top-candidates"`
	AI        *AIConfig `mapstructure:"ai"`
	Discovery *struct {
		ScrapeBaseURL    string `mapstructure:"scrape-base-url"`
		APIBaseURL       string `mapstructure:"api-base-url"`
		APIKey           string `mapstructure:"api-key"`
		APIKeyFile       string `mapstructure:"api-key-file"`
		UserAgent        string `mapstructure:"user-agent"`
		TimeoutSeconds   int    `mapstructure:"timeout-seconds"`
		ScrapeRatePerMin int    `mapstructure:"scrape-rate-per-min"`
		APIRatePerMin    int    `mapstructure:"api-rate-per-min"`
	} `mapstructure:"discovery"`
	Pipeline *struct {
		Workers            int `mapstructure:"workers"`
		TaskTimeoutSeconds int `mapstructure:"task-timeout-seconds"`
		JobTimeoutSeconds  int `mapstructure:"job-timeout-seconds"`
		CacheTTLHours      int `mapstructure:"cache-ttl-hours"`
	} `mapstructure:"pipeline"`
	Weights *ai.Weights `mapstructure:"weights"`
}

type AIConfig struct {
	Gemini *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	RatePerMin   int    `mapstructure:"rate-per-min"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "synapse is an agent that sources, scores, and drafts outreach for job candidates",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("discovery.api-key-file", "RAPIDAPI_KEY_FILE"); err != nil {
		log.Fatalf("binding RAPIDAPI_KEY_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("discovery.api-key", "RAPIDAPI_KEY"); err != nil {
		log.Fatalf("binding RAPIDAPI_KEY environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is synapse.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Local .env files carry API keys during development; absence is fine.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		// We can't proceed if an explicit config file parses with error.
		if err := viper.ReadInConfig(); err != nil {
			log.Fatal(err)
		}
		return
	}

	viper.AddConfigPath(".")
	viper.SetConfigName(app + ".yaml")
	// The default config file is optional: every key has a default or an
	// environment binding.
	_ = viper.ReadInConfig()
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config == nil {
		config = &Config{}
	}

	return config, nil
}

// buildAgent wires the full pipeline: store, generator, scorer, composer,
// and the discovery source. The returned cleanup closes the store.
func buildAgent(ctx context.Context, config *Config, zl *zap.Logger) (*sourcing.Agent, func(), error) {
	storePath := config.StorePath
	if storePath == "" {
		storePath = defaultStorePath
	}

	db, err := store.Open(storePath)
	if err != nil {
		return nil, nil, err
	}

	weights := ai.DefaultWeights()
	if config.Weights != nil {
		weights = *config.Weights
	}
	if err := weights.Validate(); err != nil {
		db.Close()
		return nil, nil, err
	}

	geminiCfg := &GeminiConfig{}
	if config.AI != nil && config.AI.Gemini != nil {
		geminiCfg = config.AI.Gemini
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: geminiCfg.APIKey,
		File:  geminiCfg.APIKeyFile,
	})
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, geminiCfg.Model, geminiCfg.RatePerMin)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	aiLogger := logger.WithCommonFields(zl, "gemini", generator.Model())
	scorer := gemini.NewScorer(generator, weights, aiLogger, geminiCfg.MaxLogLength)
	composer := gemini.NewComposer(generator, aiLogger, geminiCfg.MaxLogLength)
	extractor := gemini.NewExtractor(generator, aiLogger)

	source := linkedin.New(discoveryConfig(config), zl, extractor)

	agent := sourcing.NewAgent(source, scorer, composer, db, zl, pipelineConfig(config))

	return agent, func() { db.Close() }, nil
}

// openStore opens the persistent store alone, for commands that do not
// need the full pipeline.
func openStore(config *Config) (*store.Store, error) {
	storePath := config.StorePath
	if storePath == "" {
		storePath = defaultStorePath
	}
	return store.Open(storePath)
}

func discoveryConfig(config *Config) linkedin.Config {
	cfg := linkedin.Config{}
	d := config.Discovery
	if d == nil {
		return cfg
	}

	cfg.ScrapeBaseURL = d.ScrapeBaseURL
	cfg.APIBaseURL = d.APIBaseURL
	cfg.UserAgent = d.UserAgent
	cfg.Timeout = time.Duration(d.TimeoutSeconds) * time.Second
	cfg.ScrapeRatePerMin = d.ScrapeRatePerMin
	cfg.APIRatePerMin = d.APIRatePerMin

	// The structured search key is optional; without it only the scrape
	// backend can produce results.
	if key, err := secrets.Load(secrets.Source{
		Name:  "profile search api key",
		Value: d.APIKey,
		File:  d.APIKeyFile,
	}); err == nil {
		cfg.APIKey = key
	}

	return cfg
}

func pipelineConfig(config *Config) sourcing.Config {
	cfg := sourcing.Config{TopN: config.TopN}
	p := config.Pipeline
	if p == nil {
		return cfg
	}

	cfg.Workers = p.Workers
	cfg.TaskTimeout = time.Duration(p.TaskTimeoutSeconds) * time.Second
	cfg.JobTimeout = time.Duration(p.JobTimeoutSeconds) * time.Second
	cfg.CacheTTL = time.Duration(p.CacheTTLHours) * time.Hour

	return cfg
}

func newLogger() *zap.Logger {
	zl, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return zl
}
