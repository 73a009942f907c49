package config

import (
	"os"
	"time"

	goyaml "gopkg.in/yaml.v3"
)

type Config struct {
	BotToken   string  `yaml:"bot_token"`
	DBPath     string  `yaml:"db_path"`
	HTTPAddr   string  `yaml:"http_addr"`
	Timezone   string  `yaml:"timezone"`
	AdminIDs   []int64 `yaml:"admin_ids"`
	ReportsDir string  `yaml:"reports_dir"`
	// SessionTTLMinutes bounds how long an unfinished bot dialogue is
	// kept before it is swept. Zero means one hour.
	SessionTTLMinutes int `yaml:"session_ttl_minutes"`
}

func MustLoad(path string) (*Config, error) {
	cfg := &Config{}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := goyaml.Unmarshal(b, cfg); err != nil {
		return nil, err
	}
	if v := os.Getenv("BOT_TOKEN"); v != "" {
		cfg.BotToken = v
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("TZ"); v != "" {
		cfg.Timezone = v
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.ReportsDir == "" {
		cfg.ReportsDir = "reports"
	}
	if cfg.SessionTTLMinutes <= 0 {
		cfg.SessionTTLMinutes = 60
	}
	return cfg, nil
}

// Location resolves the configured timezone, falling back to the
// process-local one. Report period boundaries are anchored here, not
// to the caller's clock.
func (c *Config) Location() *time.Location {
	if c.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
