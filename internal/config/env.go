package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// getEnvString retrieves a string environment variable with the DAFT_ prefix.
func getEnvString(key string) (string, bool) {
	return os.LookupEnv(EnvPrefix + key)
}

// getEnvInt retrieves an integer environment variable with the DAFT_ prefix.
// Invalid values are ignored rather than failing startup.
func getEnvInt(key string) (int, bool) {
	raw, ok := getEnvString(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// getEnvInt64 retrieves an int64 environment variable with the DAFT_ prefix.
func getEnvInt64(key string) (int64, bool) {
	raw, ok := getEnvString(key)
	if !ok {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// getEnvBool retrieves a boolean environment variable with the DAFT_ prefix.
func getEnvBool(key string) (bool, bool) {
	raw, ok := getEnvString(key)
	if !ok {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}

// getEnvDuration retrieves a duration environment variable with the DAFT_
// prefix, expressed in Go duration syntax (e.g. "90s", "10m").
func getEnvDuration(key string) (time.Duration, bool) {
	raw, ok := getEnvString(key)
	if !ok {
		return 0, false
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

// applyEnvOverrides applies environment variable values to configuration
// fields whose flags were not explicitly set on the command line. CLI flags
// always take precedence over the environment.
//
// Parameters:
//   - config: The configuration to update in place.
//   - fs: The flag set used for parsing, consulted for explicitly set flags.
func applyEnvOverrides(config *AppConfig, fs *flag.FlagSet) {
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})

	if !explicit["input"] && !explicit["i"] {
		if v, ok := getEnvString("INPUT"); ok {
			config.InputPath = v
		}
	}
	if !explicit["output"] && !explicit["o"] {
		if v, ok := getEnvString("OUTPUT"); ok {
			config.OutputSpec = v
		}
	}
	if !explicit["axis"] {
		if v, ok := getEnvInt("AXIS"); ok {
			config.Axis = v
		}
	}
	if !explicit["chunk-size"] {
		if v, ok := getEnvInt("CHUNK_SIZE"); ok {
			config.ChunkSize = v
		}
	}
	if !explicit["memory-budget"] {
		if v, ok := getEnvInt64("MEMORY_BUDGET"); ok {
			config.MemoryBudget = v
		}
	}
	if !explicit["inverse"] {
		if v, ok := getEnvBool("INVERSE"); ok {
			config.Inverse = v
		}
	}
	if !explicit["workers"] {
		if v, ok := getEnvInt("WORKERS"); ok {
			config.Workers = v
		}
	}
	if !explicit["timeout"] {
		if v, ok := getEnvDuration("TIMEOUT"); ok {
			config.Timeout = v
		}
	}
	if !explicit["log-level"] {
		if v, ok := getEnvString("LOG_LEVEL"); ok {
			config.LogLevel = v
		}
	}
	if !explicit["metrics-addr"] {
		if v, ok := getEnvString("METRICS_ADDR"); ok {
			config.MetricsAddr = v
		}
	}
}
