package config

import (
	"fmt"
)

// PostgresConfig holds the database connection settings.
type PostgresConfig struct {
	Host     string `yaml:"host" env:"NOTED_POSTGRES_HOST" env-default:"0.0.0.0"`
	Port     int    `yaml:"port" env:"NOTED_POSTGRES_PORT" env-default:"5432"`
	User     string `yaml:"user" env:"NOTED_POSTGRES_USER" env-default:"postgres"`
	Password string `yaml:"password" env:"NOTED_POSTGRES_PASSWORD" env-default:"postgres"`
	Database string `yaml:"database" env:"NOTED_POSTGRES_DB" env-default:"noted"`
	MinConn  int    `yaml:"min_conn" env:"NOTED_POSTGRES_MIN_CONN" env-default:"1"`
	MaxConn  int    `yaml:"max_conn" env:"NOTED_POSTGRES_MAX_CONN" env-default:"10"`
}

// GetDSN returns the Postgres connection string.
func (p *PostgresConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		p.Host, p.Port, p.User, p.Password, p.Database)
}

// GetConnectionURL returns the URL form used by migrations.
func (p *PostgresConfig) GetConnectionURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		p.User, p.Password, p.Host, p.Port, p.Database)
}
