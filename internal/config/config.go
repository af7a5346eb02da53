package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// AppConfig holds infrastructure config from standard env vars
type AppConfig struct {
	Env        string
	DBPath     string
	ConfigPath string // Path to the YAML config file
	HTTPAddr   string
	RedisAddr  string // empty disables the rating cache
	RedisDB    int
}

// SiteConfig holds the extraction and enrichment settings (from YAML)
type SiteConfig struct {
	UserAgent  string     `yaml:"user_agent"`
	Fetch      Fetch      `yaml:"fetch"`
	Sites      []Site     `yaml:"sites"`
	Generic    Generic    `yaml:"generic"`
	Metadata   Metadata   `yaml:"metadata"`
	Enrichment Enrichment `yaml:"enrichment"`
}

type Fetch struct {
	Mode         string        `yaml:"mode"` // "http" or "browser"
	Timeout      time.Duration `yaml:"timeout"`
	WaitSelector string        `yaml:"wait_selector"`
}

// Site describes a known menu-listing site. Selectors are tried in order.
type Site struct {
	Name             string   `yaml:"name"`
	Hosts            []string `yaml:"hosts"`
	ItemSelectors    []string `yaml:"item_selectors"`
	Fields           Fields   `yaml:"fields"`
	CaptionDelimiter string   `yaml:"caption_delimiter"`
}

type Fields struct {
	Name    []string `yaml:"name"`
	Brewery []string `yaml:"brewery"`
	Style   []string `yaml:"style"`
	ABV     []string `yaml:"abv"`
	Price   []string `yaml:"price"`
	Volume  []string `yaml:"volume"`
	Caption []string `yaml:"caption"`
}

type Generic struct {
	ItemSelectors []string `yaml:"item_selectors"`
}

type Metadata struct {
	Summary       []string `yaml:"summary"`
	BrandSuffixes []string `yaml:"brand_suffixes"`
}

type Enrichment struct {
	Disabled    bool          `yaml:"disabled"`
	BaseURL     string        `yaml:"base_url"`
	MinInterval time.Duration `yaml:"min_interval"`
	Timeout     time.Duration `yaml:"timeout"`
	CacheTTL    time.Duration `yaml:"cache_ttl"`
}

// GetAppConfig reads basic infrastructure settings from environment variables.
func GetAppConfig() (AppConfig, error) {
	redisDB := 0
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return AppConfig{}, fmt.Errorf("invalid REDIS_DB %q: %w", v, err)
		}
		redisDB = n
	}

	return AppConfig{
		Env:        env("APP_ENV", "prod"),
		DBPath:     env("DB_PATH", "./local-data/hopmetrics.db"),
		ConfigPath: env("CONFIG_PATH", "hopmetrics.yaml"),
		HTTPAddr:   env("HTTP_ADDR", ":8080"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		RedisDB:    redisDB,
	}, nil
}

// LoadSiteConfig reads the YAML file and fills anything it leaves out from Default.
// A missing file yields the defaults.
func LoadSiteConfig(path string) (*SiteConfig, error) {
	var cfg SiteConfig
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("failed to read config file at '%s': %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	}

	if err := mergo.Merge(&cfg, Default()); err != nil {
		return nil, fmt.Errorf("failed to apply config defaults: %w", err)
	}
	for i := range cfg.Sites {
		if cfg.Sites[i].CaptionDelimiter == "" {
			cfg.Sites[i].CaptionDelimiter = DefaultCaptionDelimiter
		}
	}
	return &cfg, nil
}

// LoadTargets reads a batch scrape file: a YAML list of url/name/location entries.
func LoadTargets(path string) ([]Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read targets file at '%s': %w", path, err)
	}
	var targets []Target
	if err := yaml.Unmarshal(data, &targets); err != nil {
		return nil, fmt.Errorf("failed to parse targets file: %w", err)
	}
	return targets, nil
}

// Target is one establishment to scrape.
type Target struct {
	URL      string `yaml:"url"`
	Name     string `yaml:"name"`
	Location string `yaml:"location"`
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
