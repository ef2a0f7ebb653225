package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix is prepended to every environment override, e.g. GEMMAD_MAX_NEW_TOKENS.
// Fields with an explicit envconfig tag (HF_TOKEN, HF_HUB_OFFLINE,
// GEMINI_API_KEY) are also read without the prefix.
const EnvPrefix = "gemmad"

// LoadDotEnv loads KEY=VALUE pairs from the given files into the process
// environment without overriding variables that are already set. Missing
// files are ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// FromEnv reads overrides from the environment. Unset variables leave the
// corresponding field at its zero value.
func FromEnv() (Config, error) {
	var c Config
	if err := envconfig.Process(EnvPrefix, &c); err != nil {
		return c, fmt.Errorf("env config: %w", err)
	}
	return c, nil
}
