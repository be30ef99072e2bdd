// Package env reads daemon knobs from the process environment with typed
// fallbacks. Config files stay the source of truth for domain behavior;
// environment variables only tune deployment surfaces (listen address, log
// level, misfire grace).
package env

import (
	"fmt"
	"os"
	"time"
)

func String(key string, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func Duration(key string, def time.Duration) (time.Duration, error) {
	if v, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return 0, fmt.Errorf("parse %s: %w", key, err)
		}
		return d, nil
	}
	return def, nil
}
