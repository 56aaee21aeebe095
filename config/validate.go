// Copyright (c) 2024 The BitFS developers
// Use of this source code is governed by the Open BSV License v5
// that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strings"

	"github.com/bitfsorg/stakepool-go/identity"
	"github.com/bitfsorg/stakepool-go/ledger"
)

// validLogLevels lists the accepted log level strings.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// ValidateConfig checks that all configuration values are within acceptable
// ranges and returns the first error encountered, or nil if valid.
func ValidateConfig(cfg Config) error {
	if cfg.DataDir == "" {
		return ErrEmptyDataDir
	}

	if _, err := identity.GetNetwork(cfg.Network); err != nil {
		return ErrInvalidNetwork
	}

	if !validLogLevels[strings.ToLower(cfg.LogLevel)] {
		return ErrInvalidLogLevel
	}

	if cfg.FundingWindow <= 0 {
		return ErrInvalidFundingWindow
	}

	if cfg.BatchFee == 0 {
		return ErrInvalidBatchFee
	}

	if cfg.ShareAsset == "" || len(cfg.ShareAsset) > ledger.MaxShareAssetLen {
		return fmt.Errorf("%w: %q must be 1 to %d bytes", ErrInvalidShareAsset, cfg.ShareAsset, ledger.MaxShareAssetLen)
	}

	if _, err := ledger.ParsePolicy(cfg.Policy); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPolicy, err)
	}

	return nil
}
