package ghmcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-viper/mapstructure/v2"
	gogithub "github.com/google/go-github/v69/github"
	"github.com/mark3labs/mcp-go/server"
	"github.com/ronit-raj9/portfolio-server/pkg/github"
	"github.com/ronit-raj9/portfolio-server/pkg/profiler"
	"github.com/ronit-raj9/portfolio-server/pkg/translations"
	"github.com/shurcooL/githubv4"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// DefaultUsername is the account reported on when none is configured.
const DefaultUsername = "Ronit-Raj9"

// Config is everything the commands read from flags, the environment and
// .env files.
type Config struct {
	Token           string        `mapstructure:"token"`
	Username        string        `mapstructure:"username"`
	Host            string        `mapstructure:"host"`
	Address         string        `mapstructure:"address"`
	BasePath        string        `mapstructure:"base-path"`
	LogFile         string        `mapstructure:"log-file"`
	LogLevel        string        `mapstructure:"log-level"`
	EnableMCP       bool          `mapstructure:"enable-mcp"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
}

// LoadConfig decodes the global viper state into a Config.
func LoadConfig() (Config, error) {
	var cfg Config
	err := viper.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return Config{}, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if cfg.Username == "" {
		cfg.Username = DefaultUsername
	}
	return cfg, nil
}

// AuthConfig holds the GitHub credential.
type AuthConfig struct {
	Token string
}

// BuildAuthConfig reads the credential from viper. It fails when none is set.
func BuildAuthConfig() (AuthConfig, error) {
	token := viper.GetString("token")
	if token == "" {
		return AuthConfig{}, errors.New("GITHUB_TOKEN not set")
	}
	return AuthConfig{Token: token}, nil
}

// NewLogger creates a logrus logger at level writing to logFile, or to stderr
// when logFile is empty. The returned func closes the file.
func NewLogger(logFile, level string) (*logrus.Logger, func(), error) {
	logger := logrus.New()

	lvl := logrus.InfoLevel
	if level != "" {
		parsed, err := logrus.ParseLevel(level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
		lvl = parsed
	}
	logger.SetLevel(lvl)

	if logFile == "" {
		return logger, func() {}, nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger.SetOutput(file)
	logger.SetFormatter(&logrus.JSONFormatter{})

	return logger, func() { _ = file.Close() }, nil
}

// AggregatorConfig describes how to reach GitHub.
type AggregatorConfig struct {
	// Version of the server, sent in the user agent.
	Version string

	// GitHub host to target, for GitHub Enterprise. Empty means github.com.
	Host string

	// Token may be empty; the aggregator then reports a missing credential on
	// every request.
	Token string

	// Username is the account to aggregate.
	Username string

	// Transport overrides http.DefaultTransport, mostly for tests.
	Transport http.RoundTripper

	Logger *logrus.Logger
}

// NewAggregator wires the REST and GraphQL clients into a github.Aggregator.
func NewAggregator(cfg AggregatorConfig) (*github.Aggregator, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	username := cfg.Username
	if username == "" {
		username = DefaultUsername
	}

	httpClient := github.NewHTTPClient(cfg.Token, cfg.Transport, logger)

	restClient, err := github.NewRESTClient(httpClient, cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub client: %w", err)
	}
	restClient.UserAgent = fmt.Sprintf("portfolio-server/%s", cfg.Version)

	gqlClient, err := github.NewGQLClient(httpClient, cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("failed to create GitHub GraphQL client: %w", err)
	}

	getClient := func(_ context.Context) (*gogithub.Client, error) {
		return restClient, nil
	}
	getGQLClient := func(_ context.Context) (*githubv4.Client, error) {
		return gqlClient, nil
	}

	return github.NewAggregator(cfg.Token, username, getClient, getGQLClient,
		github.WithLogger(logger),
		github.WithProfiler(profiler.New(logger, logger.IsLevelEnabled(logrus.DebugLevel))),
	), nil
}

type MCPServerConfig struct {
	// Version of the server
	Version string

	// GitHub host to target for API requests (e.g. github.com or github.enterprise.com)
	Host string

	// GitHub token to authenticate with the GitHub API
	Token string

	// Username is the account whose statistics are served
	Username string

	// Translator provides translated text for the server tooling
	Translator translations.TranslationHelperFunc

	Logger *logrus.Logger
}

// NewMCPServer creates an MCP server exposing the portfolio tool.
func NewMCPServer(cfg MCPServerConfig) (*server.MCPServer, error) {
	aggregator, err := NewAggregator(AggregatorConfig{
		Version:  cfg.Version,
		Host:     cfg.Host,
		Token:    cfg.Token,
		Username: cfg.Username,
		Logger:   cfg.Logger,
	})
	if err != nil {
		return nil, err
	}

	t := cfg.Translator
	if t == nil {
		t = translations.NullTranslationHelper
	}

	return github.NewServer(cfg.Version, aggregator, t), nil
}

type StdioServerConfig struct {
	// Version of the server
	Version string

	// GitHub host to target for API requests (e.g. github.com or github.enterprise.com)
	Host string

	// GitHub token to authenticate with the GitHub API
	Token string

	// Username is the account whose statistics are served
	Username string

	// ExportTranslations writes the resolved tool descriptions to
	// portfolio-server-config.json so they can be overridden.
	ExportTranslations bool

	// Path to the log file if not stderr
	LogFilePath string

	// LogLevel is parsed with logrus.ParseLevel
	LogLevel string
}

// RunStdioServer is not concurrent safe.
func RunStdioServer(cfg StdioServerConfig) error {
	return runStdioServer(cfg, os.Stdin, os.Stdout)
}

func runStdioServer(cfg StdioServerConfig, in io.Reader, out io.Writer) error {
	if cfg.Token == "" {
		return errors.New("GITHUB_TOKEN not set")
	}

	// Create app context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, closeLog, err := NewLogger(cfg.LogFilePath, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	t, dumpTranslations := translations.TranslationHelper()

	mcpServer, err := NewMCPServer(MCPServerConfig{
		Version:    cfg.Version,
		Host:       cfg.Host,
		Token:      cfg.Token,
		Username:   cfg.Username,
		Translator: t,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}

	if cfg.ExportTranslations {
		if err := exportTranslations(dumpTranslations()); err != nil {
			return err
		}
	}

	stdioServer := server.NewStdioServer(mcpServer)
	stdioServer.SetErrorLogger(stdlog.New(logger.Writer(), "stdioserver", 0))

	// Start listening for messages
	errC := make(chan error, 1)
	go func() {
		errC <- stdioServer.Listen(ctx, in, out)
	}()

	// Output portfolio-server string
	_, _ = fmt.Fprintf(os.Stderr, "Portfolio MCP Server running on stdio\n")

	// Wait for shutdown signal
	select {
	case <-ctx.Done():
		logger.Infof("shutting down server...")
	case err := <-errC:
		if err != nil {
			return fmt.Errorf("error running server: %w", err)
		}
	}

	return nil
}

func exportTranslations(keys map[string]string) error {
	b, err := json.MarshalIndent(keys, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal translations: %w", err)
	}
	if err := os.WriteFile("portfolio-server-config.json", b, 0600); err != nil {
		return fmt.Errorf("failed to write translations: %w", err)
	}
	return nil
}
