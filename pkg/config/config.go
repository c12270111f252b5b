// Package config loads configuration from .env files and environment
// variables into typed structs.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration from a .env file and environment variables.
// prefix is the environment variable prefix (e.g. "TABULA_"); target is a
// pointer to the config struct to load into.
func Load(prefix string, target any) error {
	v := viper.New()

	// The .env file is optional.
	v.SetConfigFile(".env")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return fmt.Errorf("read .env: %w", err)
		}
	}

	// Viper's AutomaticEnv does not populate Unmarshal when the keys are not
	// already known, so matching variables are set explicitly:
	// TABULA_CACHE_REDIS_ADDR -> cache.redis.addr
	prefixUpper := strings.ToUpper(prefix)
	for _, envStr := range os.Environ() {
		pair := strings.SplitN(envStr, "=", 2)
		key, value := pair[0], pair[1]

		if strings.HasPrefix(key, prefixUpper) {
			propKey := strings.TrimPrefix(key, prefixUpper)
			propKey = strings.ToLower(strings.ReplaceAll(propKey, "_", "."))
			propKey = strings.TrimPrefix(propKey, ".")
			v.Set(propKey, value)
		}
	}

	if err := v.Unmarshal(target); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}
