package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return errors.New("server.listen_addr is required")
	}

	if c.Catalog.URL == "" {
		return errors.New("catalog.url is required")
	}
	if c.Catalog.RetryCount < 1 {
		return fmt.Errorf("catalog.retry_count must be >= 1, got %d", c.Catalog.RetryCount)
	}
	if c.Catalog.RetryBaseDelay < 0 {
		return errors.New("catalog.retry_base_delay must not be negative")
	}
	if c.Catalog.FetchTimeout <= 0 {
		return errors.New("catalog.fetch_timeout must be positive")
	}

	if c.Providers.MessageBuffer < 1 {
		return errors.New("providers.message_buffer must be >= 1")
	}

	if c.Consumers.SendBuffer < 1 {
		return errors.New("consumers.send_buffer must be >= 1")
	}

	return nil
}
