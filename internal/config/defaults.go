package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultListenAddr           = ":8080"
	DefaultRetryCount           = 5
	DefaultRetryBaseDelay       = 1000 * time.Millisecond
	DefaultFetchTimeout         = 5 * time.Second
	DefaultProviderWriteTimeout = 5 * time.Second
	DefaultPingInterval         = 15 * time.Second
	DefaultMessageBuffer        = 1000
	DefaultSendBuffer           = 256
	DefaultConsumerWriteTimeout = 5 * time.Second
)

func (c *Config) applyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}

	if c.Catalog.RetryCount == 0 {
		c.Catalog.RetryCount = DefaultRetryCount
	}
	if c.Catalog.RetryBaseDelay == 0 {
		c.Catalog.RetryBaseDelay = DefaultRetryBaseDelay
	}
	if c.Catalog.FetchTimeout == 0 {
		c.Catalog.FetchTimeout = DefaultFetchTimeout
	}

	if c.Providers.WriteTimeout == 0 {
		c.Providers.WriteTimeout = DefaultProviderWriteTimeout
	}
	if c.Providers.PingInterval == 0 {
		c.Providers.PingInterval = DefaultPingInterval
	}
	if c.Providers.MessageBuffer == 0 {
		c.Providers.MessageBuffer = DefaultMessageBuffer
	}

	if c.Consumers.SendBuffer == 0 {
		c.Consumers.SendBuffer = DefaultSendBuffer
	}
	if c.Consumers.WriteTimeout == 0 {
		c.Consumers.WriteTimeout = DefaultConsumerWriteTimeout
	}
}
