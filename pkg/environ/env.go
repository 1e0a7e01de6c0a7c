package environ

import (
	"os"
	"strconv"
	"time"

	"k8s.io/kube-openapi/pkg/validation/strfmt"
)

// lookup returns the parsed value of key, or fallback when it is unset or unparsable.
func lookup[T any](key string, fallback T, parse func(string) (T, error)) T {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	v, err := parse(value)
	if err != nil {
		return fallback
	}
	return v
}

func GetString(key, fallback string) string {
	return lookup(key, fallback, func(s string) (string, error) { return s, nil })
}

func GetInt(key string, fallback int) int {
	return lookup(key, fallback, strconv.Atoi)
}

// GetBool treats any value other than "true" as false.
func GetBool(key string, fallback bool) bool {
	return lookup(key, fallback, func(s string) (bool, error) { return s == "true", nil })
}

// GetDuration accepts Go durations as well as day and week units such as "1d".
func GetDuration(key string, fallback time.Duration) time.Duration {
	return lookup(key, fallback, strfmt.ParseDuration)
}
