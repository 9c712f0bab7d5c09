package testutil

import (
	"fmt"
	"os"
)

// DatabaseConfig describes an externally provided test database.
type DatabaseConfig struct {
	URL string
}

// GetDatabaseConfig reads DATABASE_URL, or builds a URL from DATABASE_HOST
// and friends. An empty URL means tests start their own container.
func GetDatabaseConfig() DatabaseConfig {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return DatabaseConfig{URL: url}
	}
	host := os.Getenv("DATABASE_HOST")
	if host == "" {
		return DatabaseConfig{}
	}
	user := getEnv("DATABASE_USER", "postgres")
	if pw := os.Getenv("DATABASE_PASSWORD"); pw != "" {
		user += ":" + pw
	}
	return DatabaseConfig{URL: fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=%s",
		user, host,
		getEnv("DATABASE_PORT", "5432"),
		getEnv("DATABASE_NAME", "postgres"),
		getEnv("DATABASE_SSLMODE", "prefer"),
	)}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
