package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/joho/godotenv"
	"github.com/ronit-raj9/portfolio-server/internal/ghmcp"
	"github.com/ronit-raj9/portfolio-server/pkg/github"
	"github.com/ronit-raj9/portfolio-server/pkg/servecmd"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	rootCmd = &cobra.Command{
		Use:     "server",
		Short:   "Portfolio GitHub stats server",
		Long:    `A server that aggregates a GitHub account's profile, repositories and contributions for a portfolio site.`,
		Version: buildInfo.String(),
	}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start HTTP server",
		Long:  `Start an HTTP server answering GET /api/github with the aggregated statistics of the configured account.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ghmcp.LoadConfig()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			// Create server with options using the functional options pattern
			server, err := servecmd.CreateServerWithOptions(
				servecmd.WithToken(cfg.Token),
				servecmd.WithUsername(cfg.Username),
				servecmd.WithHost(cfg.Host),
				servecmd.WithAddress(cfg.Address),
				servecmd.WithBasePath(cfg.BasePath),
				servecmd.WithLogFilePath(cfg.LogFile),
				servecmd.WithLogLevel(cfg.LogLevel),
				servecmd.WithEnableMCP(cfg.EnableMCP),
				servecmd.WithShutdownTimeout(cfg.ShutdownTimeout),
				servecmd.WithVersion(buildInfo.version),
			)
			if err != nil {
				return err
			}
			return server.Start(ctx)
		},
	}

	stdioCmd = &cobra.Command{
		Use:   "stdio",
		Short: "Start stdio server",
		Long:  `Start an MCP server that communicates via standard input/output streams using JSON-RPC messages.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			auth, err := ghmcp.BuildAuthConfig()
			if err != nil {
				return err
			}
			cfg, err := ghmcp.LoadConfig()
			if err != nil {
				return err
			}

			stdioServerConfig := ghmcp.StdioServerConfig{
				Version:            buildInfo.version,
				Host:               cfg.Host,
				Token:              auth.Token,
				Username:           cfg.Username,
				ExportTranslations: viper.GetBool("export-translations"),
				LogFilePath:        cfg.LogFile,
				LogLevel:           cfg.LogLevel,
			}
			return ghmcp.RunStdioServer(stdioServerConfig)
		},
	}

	fetchCmd = &cobra.Command{
		Use:   "fetch",
		Short: "Print the statistics once",
		Long:  `Fetch the aggregated statistics for one year and print them as JSON, or as a one-line summary.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			year, _ := cmd.Flags().GetInt("year")
			summary, _ := cmd.Flags().GetBool("summary")
			return runFetch(cmd.Context(), cmd.OutOrStdout(), year, summary)
		},
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.SetGlobalNormalizationFunc(wordSepNormalizeFunc)

	rootCmd.SetVersionTemplate("{{.Short}}\n{{.Version}}\n")

	// Add global flags that will be shared by all commands
	rootCmd.PersistentFlags().String("username", ghmcp.DefaultUsername, "GitHub account to report on")
	rootCmd.PersistentFlags().String("gh-host", "", "Specify the GitHub hostname (for GitHub Enterprise etc.)")
	rootCmd.PersistentFlags().String("log-file", "", "Path to log file")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("export-translations", false, "Save translations to a JSON file")

	// Bind flag to viper
	_ = viper.BindPFlag("username", rootCmd.PersistentFlags().Lookup("username"))
	_ = viper.BindPFlag("host", rootCmd.PersistentFlags().Lookup("gh-host"))
	_ = viper.BindPFlag("log-file", rootCmd.PersistentFlags().Lookup("log-file"))
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("export-translations", rootCmd.PersistentFlags().Lookup("export-translations"))

	// The token is only ever read from the environment
	viper.SetDefault("token", "")

	// Setup flags for serve command
	serveCmd.Flags().String("address", "localhost:8080", "Address to listen on")
	serveCmd.Flags().String("base-path", "", "Prefix of every route")
	serveCmd.Flags().Bool("enable-mcp", false, "Also serve the MCP tool over SSE")
	serveCmd.Flags().Duration("shutdown-timeout", servecmd.DefaultConfig().ShutdownTimeout, "How long to wait for open requests on shutdown")

	// Bind serve flags to viper
	_ = viper.BindPFlag("address", serveCmd.Flags().Lookup("address"))
	_ = viper.BindPFlag("base-path", serveCmd.Flags().Lookup("base-path"))
	_ = viper.BindPFlag("enable-mcp", serveCmd.Flags().Lookup("enable-mcp"))
	_ = viper.BindPFlag("shutdown-timeout", serveCmd.Flags().Lookup("shutdown-timeout"))

	// Setup flags for fetch command
	fetchCmd.Flags().Int("year", 0, "Year to report on, defaults to the current year")
	fetchCmd.Flags().Bool("summary", false, "Print a one-line summary instead of JSON")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(stdioCmd)
	rootCmd.AddCommand(fetchCmd)
}

func initConfig() {
	// A missing .env file is fine
	_ = godotenv.Load()

	// Initialize Viper configuration
	viper.SetEnvPrefix("github")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

func runFetch(ctx context.Context, out io.Writer, year int, summary bool) error {
	cfg, err := ghmcp.LoadConfig()
	if err != nil {
		return err
	}

	logger, closeLog, err := ghmcp.NewLogger(cfg.LogFile, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	aggregator, err := ghmcp.NewAggregator(ghmcp.AggregatorConfig{
		Version:  buildInfo.version,
		Host:     cfg.Host,
		Token:    cfg.Token,
		Username: cfg.Username,
		Logger:   logger,
	})
	if err != nil {
		return err
	}

	stats, err := aggregator.Fetch(ctx, year)
	if err != nil {
		return fmt.Errorf("failed to fetch stats: %w", err)
	}

	if summary {
		_, err = fmt.Fprintln(out, summaryLine(stats))
		return err
	}

	b, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	_, err = fmt.Fprintln(out, string(b))
	return err
}

// summaryLine renders stats the way a status bar would.
func summaryLine(stats *github.PortfolioStats) string {
	line := fmt.Sprintf("%s: %s contributions in %d, %s stars across %s repositories",
		stats.Profile.Name,
		humanize.Comma(int64(stats.Contributions.Total)),
		stats.SelectedYear,
		humanize.Comma(int64(stats.Profile.TotalStars)),
		humanize.Comma(int64(stats.Repos)),
	)
	if len(stats.Languages) > 0 {
		top := stats.Languages[0]
		line += fmt.Sprintf(", mostly %s (%d%%)", top.Name, top.Percentage)
	}
	if len(stats.RepositoryCommits) > 0 {
		busiest := stats.RepositoryCommits[0]
		line += fmt.Sprintf(", busiest repository %s with %s commits", busiest.Name, humanize.Comma(int64(busiest.CommitCount)))
	}
	return line
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func wordSepNormalizeFunc(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	from := []string{"_"}
	to := "-"
	for _, sep := range from {
		name = strings.ReplaceAll(name, sep, to)
	}
	return pflag.NormalizedName(name)
}
