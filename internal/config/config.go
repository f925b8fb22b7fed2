// Package config loads the runtime knobs for the ledger engine: shard
// count, ingestion buffer sizes, and the async pipeline's channel capacity.
// Everything here has a working zero-configuration default; a config file
// or environment variables only need to be supplied to tune them.
package config

// Config holds the tunable parameters of a ledgerd engine instance.
type Config struct {
	// ShardCount is the number of partitions backing each sharded map
	// (accounts and transaction log). Must be a power of two.
	ShardCount int `mapstructure:"shard_count"`

	// ReadBufferBytes is the buffered-reader size used by the sync
	// ingestion pipeline (default: 16 KiB).
	ReadBufferBytes int `mapstructure:"read_buffer_bytes"`

	// ChannelCapacity is the buffer size of the producer/consumer channel
	// used by the async ingestion pipeline. Zero or a negative value
	// selects ingest.DefaultChannelCapacity (1024).
	ChannelCapacity int `mapstructure:"channel_capacity"`

	// LogLevel controls the operational diagnostics logger (internal/logging).
	// It never affects the protocol output written to stdout/stderr.
	LogLevel string `mapstructure:"log_level"`

	configPath string
}

// GetConfigPath returns the path the config was loaded from, if any.
func (c *Config) GetConfigPath() string {
	return c.configPath
}
