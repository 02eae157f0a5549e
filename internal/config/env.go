package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/endoverdosing/vyla-api/internal/log"
)

// envValue resolves key through parse. An unset or empty variable yields def;
// a value parse rejects is logged and also yields def.
func envValue[T any](key string, def T, parse func(string) (T, error)) T {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return def
	}

	logger := log.WithComponent("config")
	v, err := parse(raw)
	if err != nil {
		logger.Warn().
			Str("key", key).
			Str("value", raw).
			Interface("default", def).
			Err(err).
			Msg("ignoring malformed environment variable")
		return def
	}

	ev := logger.Debug().Str("key", key).Str("source", "environment")
	if isSensitiveKey(key) {
		ev = ev.Bool("sensitive", true)
	} else {
		ev = ev.Interface("value", v)
	}
	ev.Msg("environment override")
	return v
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		return true, nil
	case "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("not a boolean: %q", s)
}

// ParseString returns the variable's value, or defaultValue when unset or empty.
func ParseString(key, defaultValue string) string {
	return envValue(key, defaultValue, func(s string) (string, error) { return s, nil })
}

// ParseInt returns the variable as an int.
func ParseInt(key string, defaultValue int) int {
	return envValue(key, defaultValue, strconv.Atoi)
}

// ParseDuration returns the variable in Go duration syntax ("5s", "250ms").
func ParseDuration(key string, defaultValue time.Duration) time.Duration {
	return envValue(key, defaultValue, time.ParseDuration)
}

// ParseBool accepts true/false, 1/0 and yes/no in any case.
func ParseBool(key string, defaultValue bool) bool {
	return envValue(key, defaultValue, parseBool)
}

// ParseFloat returns the variable as a float64.
func ParseFloat(key string, defaultValue float64) float64 {
	return envValue(key, defaultValue, func(s string) (float64, error) {
		return strconv.ParseFloat(s, 64)
	})
}

// ParseList splits a comma separated variable, trimming entries and dropping
// empty ones. A list with no entries left yields defaultValue.
func ParseList(key string, defaultValue []string) []string {
	return envValue(key, defaultValue, func(s string) ([]string, error) {
		var out []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) == 0 {
			return nil, fmt.Errorf("no entries")
		}
		return out, nil
	})
}
