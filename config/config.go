// Package config loads the CLI/API's runtime settings via viper,
// following the teacher config's SetDefault + SetConfigName +
// ReadInConfig + Unmarshal pattern.
package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds the ambient client and discovery settings named in
// SPEC_FULL.md §2.
type Config struct {
	Server struct {
		Port int
	}
	Client struct {
		ConnectTimeout string
		ReadTimeout    string
		Delay          string
		Jitter         string
		Proxy          string
		UserAgent      string
	}
	Discovery struct {
		MaxDepth        int
		Parallelism     int
		WellKnownPaths  []string
		ExtraKnownPaths []string
	}
	Storage struct {
		Driver string
		DSN    string
	}
	Logging struct {
		Level    string
		FilePath string
	}
}

// LoadConfig reads config.yaml from the working directory or ./config,
// falling back to spec-mandated defaults when a value is absent.
func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("client.connecttimeout", "9050ms")
	viper.SetDefault("client.readtimeout", "60s")
	viper.SetDefault("client.delay", "0s")
	viper.SetDefault("client.jitter", "0s")
	viper.SetDefault("client.useragent", "sitemaptree/usp")
	viper.SetDefault("discovery.maxdepth", 10)
	viper.SetDefault("discovery.parallelism", 1)
	viper.SetDefault("discovery.wellknownpaths", []string{
		"sitemap.xml", "sitemap_index.xml", "sitemap-index.xml", "sitemap.xml.gz", "sitemap_news.xml",
	})
	viper.SetDefault("storage.driver", "sqlite")
	viper.SetDefault("storage.dsn", "sitemaptree.db")
	viper.SetDefault("logging.level", "info")

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}

// ConnectTimeout parses Client.ConnectTimeout, defaulting to 9.05s on a
// malformed value.
func (c *Config) ConnectTimeout() time.Duration {
	return parseDurationOr(c.Client.ConnectTimeout, 9050*time.Millisecond)
}

// ReadTimeout parses Client.ReadTimeout, defaulting to 60s.
func (c *Config) ReadTimeout() time.Duration {
	return parseDurationOr(c.Client.ReadTimeout, 60*time.Second)
}

// Delay parses Client.Delay, defaulting to 0.
func (c *Config) Delay() time.Duration {
	return parseDurationOr(c.Client.Delay, 0)
}

// Jitter parses Client.Jitter, defaulting to 0.
func (c *Config) Jitter() time.Duration {
	return parseDurationOr(c.Client.Jitter, 0)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
