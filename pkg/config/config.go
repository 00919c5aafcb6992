package config

import "time"

// Marketplace definition marketplace_service YAML structure
type Marketplace struct {
	Port string `mapstructure:"port"`

	Mongo DatabaseConfig `mapstructure:"mongo"`
	Redis RedisConfig    `mapstructure:"redis"`
	MinIO MinIOConfig    `mapstructure:"minio"`

	// RequiredMessageCount messages each party must send before a
	// connection request is allowed
	RequiredMessageCount int64 `mapstructure:"required_message_count"`
}

// Client definition chat client YAML structure
type Client struct {
	ServerURL    string        `mapstructure:"server_url"`
	WSURL        string        `mapstructure:"ws_url"`
	AssistantURL string        `mapstructure:"assistant_url"`
	StateDir     string        `mapstructure:"state_dir"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`
}

// RedisConfig definition redis setting
type RedisConfig struct {
	RedisDB int `mapstructure:"redis_db"`
}

// MinIOConfig definition minio setting
type MinIOConfig struct {
	Endpoint      string `mapstructure:"endpoint"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Bucket        string `mapstructure:"bucket"`
	UseSSL        bool   `mapstructure:"use_ssl"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}

// DatabaseConfig definition db setting
type DatabaseConfig struct {
	Host          string `mapstructure:"host"`
	Port          int    `mapstructure:"port"`
	User          string `mapstructure:"user"`
	Password      string `mapstructure:"password"`
	Database      string `mapstructure:"database"`
	RetryInterval int    `mapstructure:"retry_interval"`
	RetryCount    int    `mapstructure:"retry_count"`
}
