package config

import "time"

// JWTConfig holds token signing settings.
type JWTConfig struct {
	SecretKey      string `yaml:"secret_key" env:"NOTED_JWT_SECRET_KEY" env-default:"mFzS1Z4T0ZkQmJXcVhFdHlVd1p3dUp2Tm9TZkFqQ2tIckdpTGRQZVhiWW1Rc1do"`
	AccessTokenTTL string `yaml:"access_token_ttl" env:"NOTED_JWT_ACCESS_TOKEN_TTL" env-default:"15m"`
	BCryptCost     int    `yaml:"bcrypt_cost" env:"NOTED_JWT_BCRYPT_COST" env-default:"10"`
}

// GetAccessTokenTTL returns the access token lifetime.
func (c *JWTConfig) GetAccessTokenTTL() time.Duration {
	duration, err := time.ParseDuration(c.AccessTokenTTL)
	if err != nil {
		return 15 * time.Minute
	}
	return duration
}
