package env

import "os"

// Get reads key from the environment, returning fallback when it is unset
// or blank.
func Get(key, fallback string) string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	return val
}
