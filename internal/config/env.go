package config

import (
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// loadFromEnv overrides configuration with environment variables.
//
// Fields carry no `default` tags so values loaded from the YAML file survive
// when the matching variable is unset. Nested sections resolve their tag
// names without a prefix (envconfig falls back to the bare tag), so
// SMTP_HOST is read directly rather than as MAIL_SMTP_HOST. A variable set
// to an empty string counts as unset.
func loadFromEnv(config *Config) error {
	if err := unsetEmptyVars(config); err != nil {
		return err
	}
	return envconfig.Process("", config)
}

func unsetEmptyVars(config *Config) error {
	infos, err := envconfig.Gather("", config)
	if err != nil {
		return err
	}

	for _, info := range infos {
		for _, key := range []string{info.Key, info.Alt} {
			if key == "" {
				continue
			}
			if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) == "" {
				if err := os.Unsetenv(key); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
