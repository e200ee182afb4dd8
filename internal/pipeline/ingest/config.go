// internal/pipeline/ingest/config.go
package ingest

import "time"

type Config struct {
	RequestTimeout     time.Duration
	EscalationTimeout  time.Duration
	DuplicateMarkerTTL time.Duration
}

func LoadConfig() *Config {
	return &Config{
		RequestTimeout:     30 * time.Second,
		EscalationTimeout:  10 * time.Second,
		DuplicateMarkerTTL: 24 * time.Hour,
	}
}
