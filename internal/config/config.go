package config

import "time"

// Config is the root configuration for a tradecast instance.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Catalog   CatalogConfig   `yaml:"catalog"`
	Providers ProvidersConfig `yaml:"providers"`
	Consumers ConsumersConfig `yaml:"consumers"`
}

// ServerConfig holds the consumer-facing listener settings.
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// CatalogConfig holds symbol catalog fetch settings.
type CatalogConfig struct {
	URL            string        `yaml:"url"`
	RetryCount     int           `yaml:"retry_count"`
	RetryBaseDelay time.Duration `yaml:"retry_base_delay"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
}

// ProvidersConfig holds outbound provider connection settings.
type ProvidersConfig struct {
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	PingInterval  time.Duration `yaml:"ping_interval"`
	MessageBuffer int           `yaml:"message_buffer"`
}

// ConsumersConfig holds per-consumer delivery settings.
type ConsumersConfig struct {
	SendBuffer   int           `yaml:"send_buffer"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}
