// internal/pipeline/enrichstore/config.go
package enrichstore

import "time"

type Config struct {
	InsertTimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		InsertTimeout: 10 * time.Second,
	}
}
