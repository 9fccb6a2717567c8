package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultListen       = ":8080"
	DefaultAdminListen  = ":8081"
	DefaultExpireHours  = 24
	DefaultInstanceName = "Berlin 52"
)

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type Config struct {
	Logger      Logger      `yaml:"logger"`
	Storage     Storage     `yaml:"storage"`
	Auth        Auth        `yaml:"auth"`
	Listen      string      `yaml:"listen"`
	Admin       Admin       `yaml:"admin"`
	CORS        CORS        `yaml:"cors"`
	Competition Competition `yaml:"competition"`
}

type Logger struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type Storage struct {
	Database string `yaml:"database"`
}

type Auth struct {
	JWT            JWT            `yaml:"jwt"`
	BootstrapAdmin BootstrapAdmin `yaml:"bootstrap_admin"`
}

type JWT struct {
	Secret      string `yaml:"secret"`
	ExpireHours int    `yaml:"expire_hours"`
}

// BootstrapAdmin is created on startup when no account with this email exists.
type BootstrapAdmin struct {
	Email    string `yaml:"email"`
	Password string `yaml:"password"`
}

type Admin struct {
	Enabled bool   `yaml:"enabled"`
	Listen  string `yaml:"listen"`
}

type Competition struct {
	// InstanceName is the display name used until an admin sets one.
	InstanceName string `yaml:"instance_name"`
	// SeedInstance is a TSPLIB file loaded when no instance is active.
	SeedInstance string `yaml:"seed_instance"`
	// EndAt is an RFC3339 timestamp written on first start if no end date is stored.
	EndAt string `yaml:"end_at"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Admin.Listen == "" {
		c.Admin.Listen = DefaultAdminListen
	}
	if c.Auth.JWT.ExpireHours <= 0 {
		c.Auth.JWT.ExpireHours = DefaultExpireHours
	}
	if c.Competition.InstanceName == "" {
		c.Competition.InstanceName = DefaultInstanceName
	}
}
