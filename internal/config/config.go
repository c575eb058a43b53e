// Copyright 2025 bitjungle - Rune Mathisen. All rights reserved.
// Use of this source code is governed by the MIT license
// that can be found in the LICENSE file.

// Package config loads, defaults, and persists the solver's
// configuration (spec.md §6 / SPEC_FULL.md §4.K), layering a JSON
// Schema check (pkg/validation) under the semantic check already
// implemented by types.Config.Validate.
package config

import (
	"encoding/json"
	"os"

	"github.com/DominiqueFouchez/ip-diffim/pkg/security"
	"github.com/DominiqueFouchez/ip-diffim/pkg/types"
	"github.com/DominiqueFouchez/ip-diffim/pkg/validation"
)

// Default returns the documented default configuration.
func Default() *types.Config {
	return types.DefaultConfig()
}

// Load reads a JSON configuration file at path, overlaying it onto the
// documented defaults so a file only needs to mention the keys it wants
// to change. An empty path returns the defaults unmodified. The result
// is schema-checked and then semantically validated before it is
// returned.
func Load(path string) (*types.Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	if err := security.ValidateInputPath(path); err != nil {
		return nil, types.NewConfigError("refusing to read configuration file", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, types.NewConfigError("failed to read configuration file", err)
	}

	if err := validation.ValidateConfig(raw); err != nil {
		return nil, types.NewConfigError("configuration failed schema validation", err)
	}

	if err := json.Unmarshal(raw, cfg); err != nil {
		return nil, types.NewConfigError("failed to parse configuration file", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as indented JSON, creating or truncating the
// file as needed.
func Save(path string, cfg *types.Config) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return types.NewConfigError("failed to marshal configuration", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return types.NewConfigError("failed to write configuration file", err)
	}
	return nil
}
