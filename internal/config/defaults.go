package config

import "github.com/spf13/viper"

// setDefaults sets the values used when neither a config file nor an
// environment variable overrides them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("shard_count", 16)
	v.SetDefault("read_buffer_bytes", 16*1024)
	v.SetDefault("channel_capacity", 1024)
	v.SetDefault("log_level", "info")
}
