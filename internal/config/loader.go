package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "ZIRAK_"

// listKeys are split on commas when they come from the environment.
var listKeys = map[string]bool{
	"auth.api_keys":          true,
	"server.allowed_origins": true,
}

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New)
//  2. YAML file at path, or at ZIRAK_CONFIG when path is empty
//  3. env (prefix ZIRAK_, "__" separates sections: ZIRAK_LLM__PROVIDER)
func Load(path string) (*Config, error) {
	cfg := New()
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv("ZIRAK_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.ProviderWithValue(EnvPrefix, ".", func(key, value string) (string, any) {
		key = envKey(key)
		if key == "" {
			return "", nil
		}
		if listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load env config: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// envKey maps ZIRAK_LLM__ANTHROPIC__API_KEY to llm.anthropic.api_key.
// ZIRAK_CONFIG and ZIRAK_DB are not config keys.
func envKey(s string) string {
	s = strings.TrimPrefix(s, EnvPrefix)
	switch s {
	case "CONFIG", "DB":
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
