// Copyright (c) 2023-present Mattermost, Inc. All Rights Reserved.
// See LICENSE.txt for license information.

package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mattermost/mattermost/server/public/shared/mlog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// HTTPHandler returns the router served in http mode: the streamable MCP
// endpoint plus health and metrics
func (s *GoogleChatMCPServer) HTTPHandler() http.Handler {
	return s.newRouter(server.NewStreamableHTTPServer(s.mcpServer))
}

func (s *GoogleChatMCPServer) newRouter(streamable *server.StreamableHTTPServer) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.logger))

	router.Match([]string{http.MethodPost, http.MethodGet, http.MethodDelete}, "/mcp", gin.WrapH(streamable))
	router.GET("/health", handleHealth)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})))

	return router
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func requestLogger(logger mlog.LoggerIFace) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			mlog.String("method", c.Request.Method),
			mlog.String("path", c.Request.URL.Path),
			mlog.Int("status", c.Writer.Status()),
			mlog.String("duration", time.Since(start).String()),
		)
	}
}

// serveHTTP runs the HTTP listener until ctx is cancelled, then shuts down
// gracefully
func (s *GoogleChatMCPServer) serveHTTP(ctx context.Context) error {
	streamable := server.NewStreamableHTTPServer(s.mcpServer)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.config.HTTPPort),
		Handler:           s.newRouter(streamable),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("starting http transport", mlog.Int("port", s.config.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()

		s.logger.Info("shutting down http transport")
		if err := streamable.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("failed to close MCP sessions", mlog.Err(err))
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http server shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}
