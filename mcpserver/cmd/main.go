// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/mattermost/mattermost/server/public/shared/mlog"
	"github.com/spf13/cobra"

	"github.com/mattermost/googlechat-mcp/mcpserver"
	"github.com/mattermost/googlechat-mcp/mcpserver/auth"
)

const version = "0.1.0"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:   "googlechat-mcp",
		Short: "MCP server for Google Chat spaces, messages, members, reactions and attachments",
		Long: `googlechat-mcp exposes the Google Chat REST API as MCP tools.

Credentials are read from the environment, in this order:
  GOOGLE_APPLICATION_CREDENTIALS  path to a service account key file
  GOOGLE_CHAT_CREDENTIALS_JSON    the service account key JSON itself
  GOOGLE_CHAT_ACCESS_TOKEN        an OAuth 2.0 access token`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configFile, "config", "", "Path to a YAML configuration file")
	flags.StringVar(&opts.transport, "transport", mcpserver.TransportStdio, "Transport type (stdio, http) - stdio is default")
	flags.IntVar(&opts.port, "port", mcpserver.DefaultHTTPPort, "HTTP port for http transport")
	flags.BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	flags.StringVar(&opts.logFile, "logfile", "", "Path to log file (logs to file in addition to stderr)")
	flags.StringVar(&opts.displayTimezone, "display-timezone", "UTC", "Time zone used to display timestamps")
	flags.BoolVar(&opts.skipValidation, "skip-validation", false, "Do not acquire a token at startup")

	return cmd
}

func run(cmd *cobra.Command, opts options) error {
	s, err := loadSettings(opts, cmd.Flags().Changed, os.Getenv, os.ReadFile)
	if err != nil {
		reportFatal(os.Stderr, err)
		return err
	}

	logger, err := newLogger(s.debug, s.logFile)
	if err != nil {
		reportFatal(os.Stderr, err)
		return err
	}
	defer func() {
		_ = logger.Shutdown()
	}()

	// Only log startup info in debug mode to avoid interfering with JSON-RPC for stdio
	logger.Debug("starting google chat mcp server",
		mlog.String("version", version),
		mlog.String("transport", s.server.Transport),
		mlog.Int("port", s.server.HTTPPort),
		mlog.String("display_timezone", s.server.DisplayTimezone),
	)

	server, err := mcpserver.NewGoogleChatMCPServer(s.server, auth.NewResolver(auth.EnvSources()), logger)
	if err != nil {
		logger.Error("failed to start server", mlog.Err(err))
		reportFatal(os.Stderr, err)
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Serve(ctx); err != nil {
		logger.Error("server error", mlog.Err(err))
		return err
	}

	logger.Debug("mcp server stopped")
	return nil
}

// reportFatal prints a startup failure, with credential remediation when
// the failure comes from credential configuration or token acquisition
func reportFatal(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	if needsRemediation(err) {
		fmt.Fprintln(w, auth.Remediation())
	}
}

func needsRemediation(err error) bool {
	var configErr *auth.ConfigurationError
	if errors.As(err, &configErr) {
		// The missing-credentials message already carries it
		return configErr.Kind != auth.MissingCredentials
	}
	var exchangeErr *auth.AuthExchangeError
	var expiredErr *auth.AuthExpiredError
	return errors.As(err, &exchangeErr) || errors.As(err, &expiredErr)
}

func newLogger(debug bool, logFile string) (*mlog.Logger, error) {
	logger, err := mlog.NewLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	levels := []mlog.Level{mlog.LvlInfo, mlog.LvlWarn, mlog.LvlError, mlog.LvlStdLog}
	if debug {
		levels = []mlog.Level{mlog.LvlDebug, mlog.LvlInfo, mlog.LvlWarn, mlog.LvlError, mlog.LvlStdLog}
	}

	cfg := make(mlog.LoggerConfiguration)
	cfg["console"] = mlog.TargetCfg{
		Type:          "console",
		Levels:        levels,
		Format:        "plain",
		FormatOptions: json.RawMessage(`{"enable_color": false}`),
		Options:       json.RawMessage(`{"out": "stderr"}`),
		MaxQueueSize:  1000,
	}

	// Add file logging if a log file is configured
	if logFile != "" {
		fileOptions, err := json.Marshal(map[string]any{"compress": false, "filename": logFile})
		if err != nil {
			return nil, fmt.Errorf("failed to encode file logger options: %w", err)
		}
		cfg["file"] = mlog.TargetCfg{
			Type:         "file",
			Levels:       mlog.StdAll,
			Format:       "json",
			Options:      fileOptions,
			MaxQueueSize: 1000,
		}
	}

	if err := logger.ConfigureTargets(cfg, nil); err != nil {
		return nil, fmt.Errorf("failed to configure logger: %w", err)
	}
	logger.RedirectStdLog(mlog.LvlStdLog)

	return logger, nil
}
