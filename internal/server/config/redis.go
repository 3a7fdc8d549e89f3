package config

import (
	"fmt"
	"time"
)

// RedisConfig holds the feed cache settings.
type RedisConfig struct {
	Enabled        bool          `yaml:"enabled" env:"NOTED_REDIS_ENABLED" env-default:"false"`
	Host           string        `yaml:"host" env:"NOTED_REDIS_HOST" env-default:"localhost"`
	Port           int           `yaml:"port" env:"NOTED_REDIS_PORT" env-default:"6379"`
	Password       string        `yaml:"password" env:"NOTED_REDIS_PASSWORD" env-default:""`
	DB             int           `yaml:"db" env:"NOTED_REDIS_DB" env-default:"0"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" env:"NOTED_REDIS_CONNECT_TIMEOUT" env-default:"5s"`
	ReadTimeout    time.Duration `yaml:"read_timeout" env:"NOTED_REDIS_READ_TIMEOUT" env-default:"3s"`
	WriteTimeout   time.Duration `yaml:"write_timeout" env:"NOTED_REDIS_WRITE_TIMEOUT" env-default:"3s"`
	PoolSize       int           `yaml:"pool_size" env:"NOTED_REDIS_POOL_SIZE" env-default:"10"`
	MinIdle        int           `yaml:"min_idle" env:"NOTED_REDIS_MIN_IDLE" env-default:"2"`
	DefaultTTL     time.Duration `yaml:"default_ttl" env:"NOTED_REDIS_DEFAULT_TTL" env-default:"30s"`
}

// GetAddress returns the Redis address.
func (c *RedisConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
