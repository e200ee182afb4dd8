// internal/pipeline/escalate/config.go
package escalate

import "time"

type Config struct {
	SNSTopicARN    string
	AWSRegion      string
	DashboardIndex string
	Timeout        time.Duration
}

func LoadConfig() *Config {
	return &Config{
		DashboardIndex: "order-escalations",
		Timeout:        10 * time.Second,
	}
}
