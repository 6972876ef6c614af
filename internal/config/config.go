package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds service configuration loaded from YAML and env.
type Config struct {
	ServerPort string

	WeatherAPIKey     string
	WeatherAPIURL     string
	GeoAPIURL         string
	WeatherAPITimeout time.Duration

	RequestTimeout time.Duration

	FreshnessWindow time.Duration
	RetentionWindow time.Duration
	PurgeInterval   time.Duration // 0 disables the background purge job
	CacheBackend    string        // "memory", "memcached" or "postgres"

	MemcachedAddrs        string
	MemcachedTimeout      time.Duration
	MemcachedMaxIdleConns int

	DatabaseURL string

	RateLimitRPS   int
	RateLimitBurst int

	BreakerEnabled  bool
	BreakerFailures uint32
	BreakerCooldown time.Duration

	ShutdownTimeout    time.Duration
	DrainTimeout       time.Duration
	DrainCheckInterval time.Duration

	// WarmCoordinates are "lat,lon" pairs prefetched at startup.
	WarmCoordinates []string
}

type fileConfig struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`

	WeatherAPI struct {
		URL     string `yaml:"url"`
		GeoURL  string `yaml:"geo_url"`
		Timeout string `yaml:"timeout"`
	} `yaml:"weather_api"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Cache struct {
		Backend       string `yaml:"backend"`
		Freshness     string `yaml:"freshness"`
		Retention     string `yaml:"retention"`
		PurgeInterval string `yaml:"purge_interval"`
		Memcached     struct {
			Addrs        string `yaml:"addrs"`
			Timeout      string `yaml:"timeout"`
			MaxIdleConns int    `yaml:"max_idle_conns"`
		} `yaml:"memcached"`
	} `yaml:"cache"`

	Reliability struct {
		RateLimitRPS    int    `yaml:"rate_limit_rps"`
		RateLimitBurst  int    `yaml:"rate_limit_burst"`
		BreakerEnabled  bool   `yaml:"breaker_enabled"`
		BreakerFailures int    `yaml:"breaker_failures"`
		BreakerCooldown string `yaml:"breaker_cooldown"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout            string `yaml:"timeout"`
		DrainTimeout       string `yaml:"drain_timeout"`
		DrainCheckInterval string `yaml:"drain_check_interval"`
	} `yaml:"shutdown"`

	Warm struct {
		Coordinates []string `yaml:"coordinates"`
	} `yaml:"warm"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) with env
// overrides. A missing config file falls back to defaults. The provider API
// key comes from OPENWEATHER_API_KEY (or OPENWEATHERMAP_API_KEY); its absence
// is NOT an error here — weather requests surface it as a 500 instead.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	var fc fileConfig
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.ServerPort = os.Getenv("PORT")
	if cfg.ServerPort == "" {
		cfg.ServerPort = fc.Server.Port
	}
	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}

	cfg.WeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	if cfg.WeatherAPIKey == "" {
		cfg.WeatherAPIKey = os.Getenv("OPENWEATHERMAP_API_KEY")
	}

	cfg.WeatherAPIURL = fc.WeatherAPI.URL
	if cfg.WeatherAPIURL == "" {
		cfg.WeatherAPIURL = "https://api.openweathermap.org/data/2.5"
	}
	cfg.GeoAPIURL = fc.WeatherAPI.GeoURL
	if cfg.GeoAPIURL == "" {
		cfg.GeoAPIURL = "https://api.openweathermap.org/geo/1.0"
	}
	cfg.WeatherAPITimeout = parseDuration(fc.WeatherAPI.Timeout, 5*time.Second)

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 15*time.Second)

	cfg.FreshnessWindow = parseDuration(fc.Cache.Freshness, 10*time.Minute)
	cfg.RetentionWindow = parseDuration(fc.Cache.Retention, time.Hour)
	cfg.PurgeInterval = parseDurationOrZero(fc.Cache.PurgeInterval, 0)

	cfg.CacheBackend = strings.TrimSpace(strings.ToLower(os.Getenv("CACHE_BACKEND")))
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = strings.TrimSpace(strings.ToLower(fc.Cache.Backend))
	}
	if cfg.CacheBackend == "" {
		cfg.CacheBackend = "memory"
	}

	cfg.MemcachedAddrs = strings.TrimSpace(os.Getenv("MEMCACHED_ADDRS"))
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = strings.TrimSpace(fc.Cache.Memcached.Addrs)
	}
	if cfg.MemcachedAddrs == "" {
		cfg.MemcachedAddrs = "localhost:11211"
	}
	cfg.MemcachedTimeout = parseDuration(fc.Cache.Memcached.Timeout, 500*time.Millisecond)
	cfg.MemcachedMaxIdleConns = fc.Cache.Memcached.MaxIdleConns
	if cfg.MemcachedMaxIdleConns <= 0 {
		cfg.MemcachedMaxIdleConns = 2
	}

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")

	cfg.RateLimitRPS = intFromEnv("RATE_LIMIT_RPS", fc.Reliability.RateLimitRPS)
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 100
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 250
	}

	cfg.BreakerEnabled = fc.Reliability.BreakerEnabled
	// Guard before the uint32 conversion so a negative file value cannot wrap.
	breakerFailures := fc.Reliability.BreakerFailures
	if breakerFailures <= 0 {
		breakerFailures = 5
	}
	cfg.BreakerFailures = uint32(breakerFailures)
	cfg.BreakerCooldown = parseDuration(fc.Reliability.BreakerCooldown, 30*time.Second)

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.DrainTimeout = parseDuration(fc.Shutdown.DrainTimeout, 10*time.Second)
	cfg.DrainCheckInterval = parseDuration(fc.Shutdown.DrainCheckInterval, 100*time.Millisecond)

	cfg.WarmCoordinates = fc.Warm.Coordinates

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// parseDuration parses a duration string and returns defaultVal if parsing
// fails or the result is <= 0.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	d := parseDurationOrZero(s, defaultVal)
	if d <= 0 {
		return defaultVal
	}
	return d
}

// parseDurationOrZero parses a duration string, returning defaultVal on empty
// string or parse error. Zero and negative values pass through.
func parseDurationOrZero(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return defaultVal
	}
	return d
}

func intFromEnv(key string, fileVal int) int {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		if v, err := strconv.Atoi(s); err == nil {
			return v
		}
	}
	return fileVal
}

// validate performs post-load validation of configuration values.
func validate(cfg *Config) error {
	if cfg.RequestTimeout <= cfg.WeatherAPITimeout {
		cfg.RequestTimeout = cfg.WeatherAPITimeout + time.Second
	}
	if cfg.FreshnessWindow > cfg.RetentionWindow {
		return fmt.Errorf("cache.freshness (%s) must not exceed cache.retention (%s)", cfg.FreshnessWindow, cfg.RetentionWindow)
	}
	switch cfg.CacheBackend {
	case "memory", "memcached", "postgres":
		// valid
	default:
		return fmt.Errorf("cache.backend must be memory, memcached or postgres, got %q", cfg.CacheBackend)
	}
	if cfg.CacheBackend == "postgres" && cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL required when cache.backend is postgres")
	}
	return nil
}
