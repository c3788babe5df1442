package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Database struct {
		DSN string `mapstructure:"dsn"`
	} `mapstructure:"database"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Storage struct {
		Endpoint  string `mapstructure:"endpoint"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		Bucket    string `mapstructure:"bucket"`
		UseSSL    bool   `mapstructure:"use_ssl"`
	} `mapstructure:"storage"`

	Summarization struct {
		OpenaiApiKey   string `mapstructure:"openai_api_key"`
		Model          string `mapstructure:"model"`
		MaxChunkLength int    `mapstructure:"max_chunk_length"`
		MinLength      int    `mapstructure:"min_length"`
		MaxLength      int    `mapstructure:"max_length"`
		Parallelism    int    `mapstructure:"parallelism"`
	} `mapstructure:"summarization"`

	Extraction struct {
		TesseractPath string `mapstructure:"tesseract_path"`
	} `mapstructure:"extraction"`

	Worker struct {
		Count        int           `mapstructure:"count"`
		PollInterval time.Duration `mapstructure:"poll_interval"`
		CallTimeout  time.Duration `mapstructure:"call_timeout"`
	} `mapstructure:"worker"`

	Server struct {
		Address string `mapstructure:"address"`
		Port    string `mapstructure:"port"`
	} `mapstructure:"server"`
}

// LoadConfig reads config.yaml from the working directory and overlays
// environment variables. A missing config file is fine; the defaults plus
// env vars are enough for local runs.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")

	viper.AutomaticEnv()
	// Secrets come from the environment without needing a config entry.
	viper.BindEnv("summarization.openai_api_key", "OPENAI_API_KEY")
	viper.BindEnv("database.dsn", "DATABASE_DSN")
	viper.BindEnv("redis.address", "REDIS_ADDRESS")
	viper.BindEnv("storage.access_key", "MINIO_ACCESS_KEY")
	viper.BindEnv("storage.secret_key", "MINIO_SECRET_KEY")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("storage.bucket", "docflow")
	viper.SetDefault("summarization.model", "gpt-4o-mini")
	viper.SetDefault("summarization.max_chunk_length", 512)
	viper.SetDefault("summarization.min_length", 40)
	viper.SetDefault("summarization.max_length", 150)
	viper.SetDefault("summarization.parallelism", 4)
	viper.SetDefault("worker.count", 1)
	viper.SetDefault("worker.poll_interval", 5*time.Second)
	viper.SetDefault("worker.call_timeout", 30*time.Second)
	viper.SetDefault("server.address", "0.0.0.0")
	viper.SetDefault("server.port", "8080")
}
