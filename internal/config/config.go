// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/apex/log"
	"gopkg.in/yaml.v3"
)

// EnvFile names the environment variable holding an explicit config path.
const EnvFile = "SNAPDIFF_CFG_FILE"

// fileName is looked up in os.UserConfigDir when EnvFile is unset.
const fileName = "snapdiff.yaml"

// Type is a loaded snapdiff.yaml. Namespace is usually the running command
// name; keys under it shadow top level keys of the same name, so
// replay.mode wins over mode while replay is running.
type Type struct {
	Source    string
	Namespace string
	Data      map[string]interface{}
}

// Config is the process wide configuration. Getters load it on first use.
var Config Type

func init() {
	_, _ = Load()
}

// GetInt reads an integer. YAML may hand back int, int64 or float64; floats
// are truncated.
func GetInt(key string, defaultValue ...int) (int, error) {
	return lookup(key, defaultValue, func(v any) (int, error) {
		switch n := v.(type) {
		case int:
			return n, nil
		case int64:
			return int(n), nil
		case float64:
			return int(n), nil
		}
		return 0, errors.New("value is not an int")
	})
}

// GetBool reads a boolean. Quoted "yes", "1" and "true" (and their negatives)
// are accepted.
func GetBool(key string, defaultValue ...bool) (bool, error) {
	return lookup(key, defaultValue, func(v any) (bool, error) {
		if b, ok := v.(bool); ok {
			return b, nil
		}
		if s, ok := v.(string); ok {
			switch strings.ToLower(s) {
			case "true", "1", "yes":
				return true, nil
			case "false", "0", "no":
				return false, nil
			}
		}
		return false, errors.New("value is not a bool")
	})
}

// GetString reads a string.
func GetString(key string, defaultValue ...string) (string, error) {
	return lookup(key, defaultValue, func(v any) (string, error) {
		if s, ok := v.(string); ok {
			return s, nil
		}
		return "", errors.New("value is not a string")
	})
}

// GetStringSlice reads a list of strings, such as the <command>.defaults
// argument sets.
func GetStringSlice(key string, defaultValue ...[]string) ([]string, error) {
	return lookup(key, defaultValue, func(v any) ([]string, error) {
		switch items := v.(type) {
		case []string:
			return items, nil
		case []interface{}:
			out := make([]string, 0, len(items))
			for _, item := range items {
				s, ok := item.(string)
				if !ok {
					return nil, errors.New("slice element is not a string")
				}
				out = append(out, s)
			}
			return out, nil
		}
		return nil, errors.New("value is not a slice")
	})
}

// lookup resolves key against Config and converts the hit with conv. A single
// default is returned when the key is absent; a present value that fails
// conversion is always an error.
func lookup[T any](key string, def []T, conv func(any) (T, error)) (T, error) {
	if len(Config.Data) == 0 {
		_, _ = Load()
	}

	raw, err := Config.get(key)
	if err != nil {
		if len(def) == 1 {
			return def[0], nil
		}
		var zero T
		return zero, err
	}
	return conv(raw)
}

// Load parses the config file into Config, keeping the current Namespace. A
// non-empty cfgFilePath overrides EnvFile and the user config directory.
func Load(cfgFilePath ...string) (Type, error) {
	path := ""
	if len(cfgFilePath) == 1 {
		path = cfgFilePath[0]
	}
	if path == "" {
		var err error
		if path, err = locate(); err != nil {
			return Type{}, err
		}
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return Type{}, err
	}

	var data map[string]interface{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return Type{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	Config = Type{Source: path, Namespace: Config.Namespace, Data: data}
	return Config, nil
}

// candidates lists the dotted keys tried for kspec, most specific first.
func (cfg *Type) candidates(kspec string) []string {
	if cfg.Namespace == "" || strings.HasPrefix(kspec, cfg.Namespace+".") {
		return []string{kspec}
	}
	return []string{cfg.Namespace + "." + kspec, kspec}
}

func (cfg *Type) get(kspec string) (any, error) {
	if len(cfg.Data) == 0 {
		_, _ = Load(cfg.Source)
	}

	keys := cfg.candidates(kspec)
	for _, key := range keys {
		if v, ok := walk(cfg.Data, strings.Split(key, ".")); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("no valid path found among: %v", keys)
}

// walk descends through nested maps one segment at a time.
func walk(node any, segments []string) (any, bool) {
	for _, seg := range segments {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil, false
		}
		if node, ok = m[seg]; !ok {
			return nil, false
		}
	}
	return node, true
}

// locate finds the config file: EnvFile when set, else fileName under the
// user config directory.
func locate() (string, error) {
	if p := os.Getenv(EnvFile); p != "" {
		info, err := os.Stat(p)
		switch {
		case err != nil:
			return "", fmt.Errorf("config file not found at %s path: %s", EnvFile, p)
		case info.IsDir():
			return "", fmt.Errorf("%s points to a directory: %s", EnvFile, p)
		}
		log.Debugf("using config file from %s: %s", EnvFile, p)
		return p, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	p := filepath.Join(dir, fileName)
	if info, err := os.Stat(p); err == nil && !info.IsDir() {
		log.Debugf("using config file: %s", p)
		return p, nil
	}
	return "", errors.New("no config file found in standard locations")
}
