package instance

import (
	"os"

	"github.com/angelmondragon/pulse-analytics/pkg/env"
)

// ID names this process in logs. It prefers an explicit PULSE_INSTANCE_ID,
// then the platform dyno name, then the hostname.
func ID() string {
	if id := env.First("PULSE_INSTANCE_ID", "DYNO"); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return "local"
}
