// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the miitool configuration file
// (~/.config/miitool/config.yaml, or config.toml).  Pointer fields
// distinguish "not set" from zero values.
type Config struct {
	LogLevel  string `yaml:"log_level" toml:"log_level"`
	LogFormat string `yaml:"log_format" toml:"log_format"`
	Encoding  string `yaml:"encoding" toml:"encoding"`

	VerifyNames *bool   `yaml:"verify_names" toml:"verify_names"`
	Seed        *uint64 `yaml:"seed" toml:"seed"`

	ScanInclude []string `yaml:"scan_include" toml:"scan_include"`

	ServerAddress string `yaml:"server_address" toml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	yamlPath := filepath.Join(dir, "miitool", "config.yaml")
	tomlPath := filepath.Join(dir, "miitool", "config.toml")
	if _, err := os.Stat(yamlPath); err != nil {
		if _, err := os.Stat(tomlPath); err == nil {
			return tomlPath
		}
	}
	return yamlPath
}

// loadConfig reads the config file at path.  A missing file is an
// empty Config.
func loadConfig(path string) (Config, error) {
	var c Config
	if path == "" {
		return c, nil
	}
	path, err := homedir.Expand(path)
	if err != nil {
		return c, fmt.Errorf("homedir.Expand: %w", err)
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return c, nil
	} else if err != nil {
		return c, err
	}
	switch filepath.Ext(path) {
	case ".toml":
		err = toml.Unmarshal(data, &c)
	default:
		err = yaml.Unmarshal(data, &c)
	}
	if err != nil {
		return c, fmt.Errorf("config %s: %w", path, err)
	}
	return c, nil
}

// applyGlobalConfig fills global flags the command line left unset.
func applyGlobalConfig(cmd *cli.Command, c Config) {
	if c.LogLevel != "" && !cmd.IsSet("log-level") {
		logLevel = c.LogLevel
	}
	if c.LogFormat != "" && !cmd.IsSet("log-format") {
		logFormat = c.LogFormat
	}
	if c.Encoding != "" && !cmd.IsSet("encoding") {
		encoding = c.Encoding
	}
}

// setup runs before every command: it loads the config file and
// installs the logger.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	c, err := loadConfig(configFile)
	if err != nil {
		return ctx, err
	}
	cfg = c
	applyGlobalConfig(cmd, cfg)

	logger, err := newLogger(errWriter(cmd), logLevel, logFormat)
	if err != nil {
		return ctx, err
	}
	return withLogger(ctx, logger), nil
}
