/*
Package config loads runtime settings for the dashboard engine.

PURPOSE:
  All knobs in one struct, resolved once at startup. Sources, in order of
  precedence: environment variables (SKIPPY_ prefix), an optional YAML file,
  then compiled-in defaults.

KEYS:
  kafka.brokers                  Broker list (comma separated in env)
  kafka.topic                    Topic to consume
  kafka.group                    Consumer group id
  db.path                        SQLite reference database path
  http.addr                      Listen address for the dashboard API
  pipeline.decode_failure_policy "fatal" or "skip" for malformed payloads
  debug                          Development logging

ENVIRONMENT EXAMPLES:
  SKIPPY_KAFKA_BROKERS=kafka-1:9092,kafka-2:9092
  SKIPPY_DB_PATH=/data/skippy.db
  SKIPPY_PIPELINE_DECODE_FAILURE_POLICY=skip
*/
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Decode-failure policies accepted by pipeline.decode_failure_policy.
const (
	DecodeFatal = "fatal"
	DecodeSkip  = "skip"
)

// Config holds every runtime setting the process needs.
type Config struct {
	Brokers      []string
	Topic        string
	Group        string
	DBPath       string
	HTTPAddr     string
	DecodePolicy string
	Debug        bool
}

// Load resolves configuration from env and the optional file at path.
// An empty path means env + defaults only.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "skippy")
	v.SetDefault("kafka.group", "skippy-dashboard")
	v.SetDefault("db.path", "skippy.db")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("pipeline.decode_failure_policy", DecodeFatal)
	v.SetDefault("debug", false)

	v.SetEnvPrefix("SKIPPY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Brokers:      splitBrokers(v.GetString("kafka.brokers")),
		Topic:        v.GetString("kafka.topic"),
		Group:        v.GetString("kafka.group"),
		DBPath:       v.GetString("db.path"),
		HTTPAddr:     v.GetString("http.addr"),
		DecodePolicy: v.GetString("pipeline.decode_failure_policy"),
		Debug:        v.GetBool("debug"),
	}

	if cfg.DecodePolicy != DecodeFatal && cfg.DecodePolicy != DecodeSkip {
		return nil, fmt.Errorf("invalid decode_failure_policy %q (want %q or %q)",
			cfg.DecodePolicy, DecodeFatal, DecodeSkip)
	}
	if len(cfg.Brokers) == 0 {
		return nil, fmt.Errorf("kafka.brokers must not be empty")
	}
	return cfg, nil
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
