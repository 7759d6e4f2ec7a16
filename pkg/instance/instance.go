package instance

import "os"

// EnvInstanceID overrides the identifier attached to every log line.
const EnvInstanceID = "FRESHCART_INSTANCE_ID"

// GetID returns the process instance identifier: the override when set,
// otherwise the hostname, otherwise fallback.
func GetID(fallback string) string {
	if id := os.Getenv(EnvInstanceID); id != "" {
		return id
	}
	if host, err := os.Hostname(); err == nil && host != "" {
		return host
	}
	return fallback
}
