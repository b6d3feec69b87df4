package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug     bool      `yaml:"debug" env:"SAMFILMS_DEBUG"`
	API       API       `yaml:"api"`
	Session   Session   `yaml:"session"`
	Search    Search    `yaml:"search"`
	Catalog   Catalog   `yaml:"catalog"`
	Providers Providers `yaml:"providers"`
	Tasks     Tasks     `yaml:"tasks"`
}

type API struct {
	BaseURL string `yaml:"base_url" env:"SAMFILMS_API_URL" env-default:"http://localhost:3000/api/v1"`
	// Zero means the request waits for the server indefinitely.
	Timeout time.Duration `yaml:"timeout" env:"SAMFILMS_API_TIMEOUT" env-default:"0s"`
}

type Session struct {
	DataDir string `yaml:"data_dir" env:"SAMFILMS_DATA_DIR" env-default:".samfilms"`
}

type Search struct {
	Debounce time.Duration `yaml:"debounce" env-default:"300ms"`
}

type Catalog struct {
	Limit int `yaml:"limit" env-default:"50"`
}

type Provider struct {
	APIKey  string  `yaml:"api_key" env:"API_KEY"`
	BaseURL string  `yaml:"base_url"`
	Rps     float64 `yaml:"rps" env-default:"2"`
	Burst   int     `yaml:"burst" env-default:"1"`
}

type Providers struct {
	Pexels Provider `yaml:"pexels" env-prefix:"PEXELS_"`
	TMDB   Provider `yaml:"tmdb" env-prefix:"TMDB_"`
}

type Tasks struct {
	Workers   int `yaml:"workers" env-default:"1"`
	QueueSize int `yaml:"queue_size" env-default:"16"`
}

// Load reads an optional .env file, then the YAML file at configPath. With an empty
// path only the environment is consulted.
func Load(configPath string) (*Config, error) {
	// .env is optional, as in local development setups.
	_ = godotenv.Load()

	var cfg Config
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
		return &cfg, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file %s not found", configPath)
	}
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		return nil, fmt.Errorf("read config %s: %w", configPath, err)
	}
	return &cfg, nil
}

func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(err)
	}
	return cfg
}
