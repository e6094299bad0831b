// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mattermost/googlechat-mcp/mcpserver"
)

const (
	envTransport       = "MCP_TRANSPORT"
	envPort            = "PORT"
	envDisplayTimezone = "GOOGLE_CHAT_DISPLAY_TIMEZONE"
)

// options holds the raw command-line flag values
type options struct {
	configFile      string
	transport       string
	port            int
	debug           bool
	logFile         string
	displayTimezone string
	skipValidation  bool
}

// fileConfig is the optional YAML configuration file
type fileConfig struct {
	Transport         string `yaml:"transport"`
	Port              int    `yaml:"port"`
	Debug             bool   `yaml:"debug"`
	LogFile           string `yaml:"logfile"`
	DisplayTimezone   string `yaml:"display_timezone"`
	ValidateAtStartup *bool  `yaml:"validate_at_startup"`
}

// settings is the effective configuration after all sources are merged
type settings struct {
	server  mcpserver.Config
	debug   bool
	logFile string
}

// loadSettings merges defaults, the YAML file, environment variables and
// the flags that were explicitly set, in increasing order of precedence.
func loadSettings(opts options, changed func(name string) bool, getenv func(string) string, readFile func(string) ([]byte, error)) (settings, error) {
	s := settings{server: mcpserver.DefaultConfig()}

	if opts.configFile != "" {
		data, err := readFile(opts.configFile)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return settings{}, fmt.Errorf("config file %s does not exist", opts.configFile)
			}
			return settings{}, fmt.Errorf("failed to read config file: %w", err)
		}

		var file fileConfig
		if err := yaml.Unmarshal(data, &file); err != nil {
			return settings{}, fmt.Errorf("failed to parse config file %s: %w", opts.configFile, err)
		}
		s.applyFile(file)
	}

	if transport := strings.TrimSpace(getenv(envTransport)); transport != "" {
		s.server.Transport = strings.ToLower(transport)
	}
	if port := strings.TrimSpace(getenv(envPort)); port != "" {
		parsed, err := strconv.Atoi(port)
		if err != nil {
			return settings{}, fmt.Errorf("invalid %s value %q: must be a number", envPort, port)
		}
		s.server.HTTPPort = parsed
	}
	if tz := strings.TrimSpace(getenv(envDisplayTimezone)); tz != "" {
		s.server.DisplayTimezone = tz
	}

	if changed("transport") {
		s.server.Transport = strings.ToLower(opts.transport)
	}
	if changed("port") {
		s.server.HTTPPort = opts.port
	}
	if changed("debug") {
		s.debug = opts.debug
	}
	if changed("logfile") {
		s.logFile = opts.logFile
	}
	if changed("display-timezone") {
		s.server.DisplayTimezone = opts.displayTimezone
	}
	if changed("skip-validation") {
		s.server.ValidateAtStartup = !opts.skipValidation
	}

	if err := s.server.Validate(); err != nil {
		return settings{}, err
	}
	return s, nil
}

func (s *settings) applyFile(file fileConfig) {
	if file.Transport != "" {
		s.server.Transport = strings.ToLower(file.Transport)
	}
	if file.Port != 0 {
		s.server.HTTPPort = file.Port
	}
	if file.DisplayTimezone != "" {
		s.server.DisplayTimezone = file.DisplayTimezone
	}
	if file.ValidateAtStartup != nil {
		s.server.ValidateAtStartup = *file.ValidateAtStartup
	}
	s.debug = file.Debug
	s.logFile = file.LogFile
}
