// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to upper-cased keys for environment overrides,
// e.g. STAKEPOOL_NETWORK.
const EnvPrefix = "STAKEPOOL"

// Config holds the node-local settings for a stake pool.
type Config struct {
	DataDir       string        // ledger database and config live here
	Network       string        // mainnet, testnet or regtest; selects address encoding
	LogLevel      string        // debug, info, warn or error
	FundingWindow time.Duration // contribution window opened at genesis
	BatchFee      uint64        // fee charged per accepted record batch
	ShareAsset    string        // share unit identifier
	Policy        string        // settle or forfeit
}

// Config file keys.
const (
	keyDataDir       = "datadir"
	keyNetwork       = "network"
	keyLogLevel      = "loglevel"
	keyFundingWindow = "fundingwindow"
	keyBatchFee      = "batchfee"
	keyShareAsset    = "shareasset"
	keyPolicy        = "policy"
)

// DefaultDataDir returns ~/.stakepool, or .stakepool in the working
// directory when the home directory cannot be resolved.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stakepool"
	}
	return filepath.Join(home, ".stakepool")
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		DataDir:       DefaultDataDir(),
		Network:       "mainnet",
		LogLevel:      "info",
		FundingWindow: 7 * 24 * time.Hour,
		BatchFee:      10_000_000,
		ShareAsset:    "SHR",
		Policy:        "settle",
	}
}

// ConfigPath returns the config file location inside dataDir.
func ConfigPath(dataDir string) string {
	return filepath.Join(dataDir, "config")
}

// SetDefaults registers DefaultConfig values on v under the config file keys.
func SetDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault(keyDataDir, d.DataDir)
	v.SetDefault(keyNetwork, d.Network)
	v.SetDefault(keyLogLevel, d.LogLevel)
	v.SetDefault(keyFundingWindow, d.FundingWindow.String())
	v.SetDefault(keyBatchFee, strconv.FormatUint(d.BatchFee, 10))
	v.SetDefault(keyShareAsset, d.ShareAsset)
	v.SetDefault(keyPolicy, d.Policy)
}

// LoadConfig reads the properties file at path and overlays it on the
// defaults. Unknown keys are ignored.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := checkLines(data); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigType("properties")
	SetDefaults(v)
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfigLine, err)
	}
	return FromViper(v)
}

// Load merges, in increasing priority, the defaults, the config file inside
// the data directory, STAKEPOOL_* environment variables and any changed
// flags in fs whose names match config keys. The data directory itself may
// come from a flag or the environment. A missing config file is not an error.
func Load(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.SetConfigType("properties")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	SetDefaults(v)

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return Config{}, fmt.Errorf("config: bind flags: %w", err)
		}
	}

	path := ConfigPath(v.GetString(keyDataDir))
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	default:
		if err := checkLines(data); err != nil {
			return Config{}, err
		}
		if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
			return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfigLine, err)
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from the values visible through v, including any
// defaults, flags or environment bindings registered on it.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		DataDir:    strings.TrimSpace(v.GetString(keyDataDir)),
		Network:    strings.TrimSpace(v.GetString(keyNetwork)),
		LogLevel:   strings.TrimSpace(v.GetString(keyLogLevel)),
		ShareAsset: strings.TrimSpace(v.GetString(keyShareAsset)),
		Policy:     strings.TrimSpace(v.GetString(keyPolicy)),
	}

	if s := strings.TrimSpace(v.GetString(keyFundingWindow)); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfigLine, keyFundingWindow, err)
		}
		cfg.FundingWindow = d
	}
	if s := strings.TrimSpace(v.GetString(keyBatchFee)); s != "" {
		fee, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %w", ErrInvalidConfigLine, keyBatchFee, err)
		}
		cfg.BatchFee = fee
	}
	return cfg, nil
}

// checkLines rejects lines that are neither blank, a comment, nor key = value.
// The properties codec would otherwise read a bare word as a key with no value.
func checkLines(data []byte) error {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, _, ok := strings.Cut(line, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return fmt.Errorf("%w: line %d: %q", ErrInvalidConfigLine, lineNum, line)
		}
	}
	return scanner.Err()
}

// SaveConfig writes cfg to path as a properties file, creating parent
// directories as needed.
func SaveConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config: create directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# Stakepool Configuration\n\n")
	fmt.Fprintf(&b, "%s = %s\n", keyDataDir, cfg.DataDir)
	fmt.Fprintf(&b, "%s = %s\n", keyNetwork, cfg.Network)
	fmt.Fprintf(&b, "%s = %s\n", keyLogLevel, cfg.LogLevel)
	b.WriteString("\n# Pool parameters, applied at genesis\n")
	fmt.Fprintf(&b, "%s = %s\n", keyFundingWindow, cfg.FundingWindow)
	fmt.Fprintf(&b, "%s = %d\n", keyBatchFee, cfg.BatchFee)
	fmt.Fprintf(&b, "%s = %s\n", keyShareAsset, cfg.ShareAsset)
	fmt.Fprintf(&b, "%s = %s\n", keyPolicy, cfg.Policy)

	if err := os.WriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
