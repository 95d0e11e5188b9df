package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix of environment variables mapped onto config keys
// (SHORTMIX_GROUP_SIZE -> group_size).
const EnvPrefix = "SHORTMIX_"

// ConfigPathEnvVar overrides the config file path when --config is absent.
const ConfigPathEnvVar = EnvPrefix + "CONFIG"

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"shortmix.yaml",
	"shortmix.yml",
}

// sliceKeys are keys whose environment value is a comma-separated list.
var sliceKeys = []string{"video_exts", "audio_exts"}

// Load layers cfg's current values (defaults), an optional YAML file and
// SHORTMIX_* environment variables, in that order, and writes the result
// back into cfg. An empty path falls back to [FindConfigFile]'s search.
func Load(cfg *Config, path string) error {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(*cfg, "koanf"), nil); err != nil {
		return fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = FindConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return fmt.Errorf("load config file %s: %w", path, err)
		}
		cfg.ConfigFile = path
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return fmt.Errorf("load environment: %w", err)
	}

	if err := splitSliceKeys(k); err != nil {
		return err
	}

	// Slices would otherwise be merged element-wise into the old values.
	cfg.VideoExts, cfg.AudioExts = nil, nil
	if err := k.Unmarshal("", cfg); err != nil {
		return fmt.Errorf("decode configuration: %w", err)
	}
	return nil
}

// FindConfigFile returns the config path from SHORTMIX_CONFIG or the first
// existing entry of [DefaultConfigPaths]; "" when none exists.
func FindConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// ConfigFileArg extracts the --config value from raw CLI args so the file
// can be loaded before flags are parsed (flags must win over the file).
func ConfigFileArg(args []string) string {
	for i := 0; i < len(args); i++ {
		a := args[i]
		if a == "--" {
			break
		}
		for _, name := range []string{"--config", "-config"} {
			if a == name && i+1 < len(args) {
				return args[i+1]
			}
			if v, ok := strings.CutPrefix(a, name+"="); ok {
				return v
			}
		}
	}
	return ""
}

// envKey maps SHORTMIX_BGM_VOLUME to bgm_volume. The config file option is
// not itself a config key.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config" {
		return ""
	}
	return key
}

// splitSliceKeys turns comma-separated strings (from the environment) into
// string slices for list-valued keys.
func splitSliceKeys(k *koanf.Koanf) error {
	for _, key := range sliceKeys {
		s, ok := k.Get(key).(string)
		if !ok || s == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(key, parts); err != nil {
			return fmt.Errorf("set %s: %w", key, err)
		}
	}
	return nil
}
