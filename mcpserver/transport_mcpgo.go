// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mattermost/mattermost/server/public/shared/mlog"
)

// serveStdio serves JSON-RPC over stdin/stdout. Nothing else may write to
// stdout while it runs; logs go to stderr.
func (s *GoogleChatMCPServer) serveStdio(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcpServer)
	// Configure error logger to forward to mlog
	stdio.SetErrorLogger(log.New(&mlogWriter{logger: s.logger}, "", 0))

	s.logger.Debug("starting stdio transport")
	err := stdio.Listen(ctx, os.Stdin, os.Stdout)
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("stdio transport failed: %w", err)
	}
	return nil
}

// mlogWriter adapts mlog.LoggerIFace to io.Writer for the mcp-go error logger
type mlogWriter struct {
	logger mlog.LoggerIFace
}

func (w *mlogWriter) Write(p []byte) (n int, err error) {
	if w.logger != nil {
		w.logger.Error(strings.TrimRight(string(p), "\n"))
	}
	return len(p), nil
}
