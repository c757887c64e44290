// SPDX-License-Identifier: MIT
// Copyright (c) 2026 RetroData
// Source: github.com/retrodata/dosbackup

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// cliConfig holds defaults read from the optional config file and
// DOSRESTORE_* environment variables. Flags set on the command line
// always win over config values.
type cliConfig struct {
	Clobber    bool `mapstructure:"clobber"`
	Timestamps bool `mapstructure:"timestamps"`
	Strict     bool `mapstructure:"strict"`
	Human      bool `mapstructure:"human"`
	Workers    int  `mapstructure:"workers"`
}

// loadConfig reads the config file and environment into defaults.
func loadConfig(path string) (*cliConfig, error) {
	v := viper.New()
	v.SetDefault("clobber", false)
	v.SetDefault("timestamps", false)
	v.SetDefault("strict", false)
	v.SetDefault("human", false)
	v.SetDefault("workers", 1)

	v.SetEnvPrefix("DOSRESTORE")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("dosrestore")
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "dosrestore"))
		}

		var notFound viper.ConfigFileNotFoundError
		if err := v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &cliConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return cfg, nil
}

// applyConfig fills flag values that were not set on the command line.
func applyConfig(cfg *cliConfig) {
	flags := rootCmd.Flags()
	if !flags.Changed("clobber") {
		flagClobber = cfg.Clobber
	}
	if !flags.Changed("timestamp") {
		flagTimestamp = cfg.Timestamps
	}
	if !flags.Changed("strict") {
		flagStrict = cfg.Strict
	}
	if !flags.Changed("human") {
		flagHuman = cfg.Human
	}
	if !flags.Changed("workers") {
		flagWorkers = cfg.Workers
	}
}
