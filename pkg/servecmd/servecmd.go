// Package servecmd provides functionality for creating and running the
// portfolio HTTP server without any dependencies on specific CLI or
// configuration systems.
package servecmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ronit-raj9/portfolio-server/internal/ghmcp"
	"github.com/ronit-raj9/portfolio-server/pkg/github"
	"github.com/ronit-raj9/portfolio-server/pkg/translations"
	"github.com/sirupsen/logrus"
	"github.com/teris-io/shortid"
)

// Config holds all configuration options for the HTTP server
type Config struct {
	Token           string
	Username        string
	Host            string
	Address         string
	BasePath        string
	LogFilePath     string
	LogLevel        string
	EnableMCP       bool
	Version         string
	ShutdownTimeout time.Duration
}

// DefaultConfig creates a basic Config with sensible defaults
func DefaultConfig() Config {
	return Config{
		Address:         "localhost:8080",
		BasePath:        "",
		Username:        ghmcp.DefaultUsername,
		ShutdownTimeout: 10 * time.Second,
	}
}

// StatsFetcher produces the payload of the stats route.
type StatsFetcher interface {
	Fetch(ctx context.Context, year int) (*github.PortfolioStats, error)
}

// Server serves the stats route and, optionally, the MCP SSE endpoints.
type Server struct {
	config    Config
	logger    logrus.FieldLogger
	closeLog  func()
	fetcher   StatsFetcher
	sseServer *server.SSEServer
	engine    *gin.Engine
	now       func() time.Time
}

// NewServer creates a new HTTP server with the provided configuration. An
// empty token is accepted: the stats route then answers 401.
func NewServer(config Config) (*Server, error) {
	logger, closeLog, err := ghmcp.NewLogger(config.LogFilePath, config.LogLevel)
	if err != nil {
		return nil, err
	}

	aggregator, err := ghmcp.NewAggregator(ghmcp.AggregatorConfig{
		Version:  config.Version,
		Host:     config.Host,
		Token:    config.Token,
		Username: config.Username,
		Logger:   logger,
	})
	if err != nil {
		closeLog()
		return nil, err
	}

	var mcpServer *server.MCPServer
	if config.EnableMCP {
		t, _ := translations.TranslationHelper()
		mcpServer = github.NewServer(config.Version, aggregator, t)
	}

	s := newServer(config, aggregator, mcpServer, logger)
	s.closeLog = closeLog
	return s, nil
}

func newServer(config Config, fetcher StatsFetcher, mcpServer *server.MCPServer, logger logrus.FieldLogger) *Server {
	config.BasePath = normalizeBasePath(config.BasePath)
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = DefaultConfig().ShutdownTimeout
	}

	s := &Server{
		config:   config,
		logger:   logger,
		closeLog: func() {},
		fetcher:  fetcher,
		now:      time.Now,
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	base := r.Group(config.BasePath)
	base.GET("/healthz", get(func(_ context.Context) (any, error) {
		return gin.H{"status": "ok"}, nil
	}))

	api := base.Group("/api", noCache())
	api.GET("/github", getP[statsParams](s.githubStats))

	if mcpServer != nil {
		s.sseServer = server.NewSSEServer(mcpServer,
			server.WithStaticBasePath(config.BasePath+"/mcp"),
		)
		base.GET("/mcp/sse", gin.WrapH(s.sseServer.SSEHandler()))
		base.POST("/mcp/message", gin.WrapH(s.sseServer.MessageHandler()))
	}

	s.engine = r
	return s
}

func normalizeBasePath(basePath string) string {
	basePath = strings.TrimRight(strings.TrimSpace(basePath), "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	return basePath
}

// Handler returns the routes as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	defer s.closeLog()

	srv := &http.Server{
		Addr:              s.config.Address,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errC := make(chan error, 1)
	go func() {
		errC <- srv.ListenAndServe()
	}()

	// Print server info
	_, _ = fmt.Fprintf(os.Stderr, "Portfolio server running on %s with base path %q\n",
		s.config.Address, s.config.BasePath)

	select {
	case err := <-errC:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if s.sseServer != nil {
		if err := s.sseServer.Shutdown(shutdownCtx); err != nil {
			s.logger.WithError(err).Warn("failed to close MCP sessions")
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// RunServer is a convenience function that creates and starts a server in one
// call.
func RunServer(ctx context.Context, config Config) error {
	s, err := NewServer(config)
	if err != nil {
		return err
	}
	return s.Start(ctx)
}

// ServerOption represents an option for configuring the server
type ServerOption func(*Config)

// WithAddress sets the address to listen on
func WithAddress(address string) ServerOption {
	return func(c *Config) {
		c.Address = address
	}
}

// WithBasePath sets the prefix of every route
func WithBasePath(basePath string) ServerOption {
	return func(c *Config) {
		c.BasePath = basePath
	}
}

// WithLogFilePath sets the log file path for the server
func WithLogFilePath(logFilePath string) ServerOption {
	return func(c *Config) {
		c.LogFilePath = logFilePath
	}
}

// WithLogLevel sets the logrus level
func WithLogLevel(level string) ServerOption {
	return func(c *Config) {
		c.LogLevel = level
	}
}

// WithEnableMCP mounts the MCP SSE endpoints next to the stats route
func WithEnableMCP(enable bool) ServerOption {
	return func(c *Config) {
		c.EnableMCP = enable
	}
}

// WithHost sets the GitHub host for the server
func WithHost(host string) ServerOption {
	return func(c *Config) {
		c.Host = host
	}
}

// WithToken sets the GitHub token for the server
func WithToken(token string) ServerOption {
	return func(c *Config) {
		c.Token = token
	}
}

// WithUsername sets the account the server reports on
func WithUsername(username string) ServerOption {
	return func(c *Config) {
		if username != "" {
			c.Username = username
		}
	}
}

// WithShutdownTimeout bounds the graceful shutdown
func WithShutdownTimeout(timeout time.Duration) ServerOption {
	return func(c *Config) {
		c.ShutdownTimeout = timeout
	}
}

// WithVersion sets the version for the server
func WithVersion(version string) ServerOption {
	return func(c *Config) {
		c.Version = version
	}
}

// CreateServerWithOptions creates a new server with the provided options
func CreateServerWithOptions(options ...ServerOption) (*Server, error) {
	config := DefaultConfig()
	for _, option := range options {
		option(&config)
	}
	return NewServer(config)
}

// requestLogger logs every request with a short id, which is also returned
// in the X-Request-Id header.
func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := shortid.Generate()
		if err != nil {
			id = "unknown"
		}
		c.Header("X-Request-Id", id)

		start := time.Now()
		c.Next()

		entry := logger.WithFields(logrus.Fields{
			"requestId":  id,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"durationMs": time.Since(start).Milliseconds(),
		})
		if len(c.Errors) > 0 {
			entry.WithField("errors", c.Errors.String()).Warn("request failed")
			return
		}
		entry.Info("request")
	}
}
