package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/manual"
	"github.com/aretw0/manual/pkg/adapters/sqlite"
	"github.com/aretw0/manual/pkg/logo"
)

var (
	cfgFile string

	// projectRoot is the directory holding manual.yaml, if one was found upwards.
	projectRoot string

	// registry is non-nil when --metrics is set.
	registry *prometheus.Registry
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "manual",
	Short: "Browse and edit the program process manual",
	Long: `The manual outlines the key processes and timelines of the program,
grouped into sections (Discord, Pre-Onboarding, Program Proper, Post-Program).

Entries are kept in memory, in a JSON/YAML document or in a SQLite database,
selected with --adapter and --uri or via manual.yaml / MANUAL_* variables.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if viper.GetBool("verbose") {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{
			Level: level,
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
		slog.SetDefault(logger)

		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug("using config file", "path", used)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	err := rootCmd.Execute()
	// Commands return instead of exiting, so deferred closes have run and
	// metrics cover failed operations too.
	if registry != nil {
		printMetrics(registry)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: manual.yaml in the project root or ~/.config/manual/)")
	flags.String("adapter", manual.AdapterDocument, "storage adapter: memory, document or sqlite")
	flags.String("uri", "", "store location (document path or database path; default depends on adapter)")
	flags.String("logo", logo.DefaultPath, "logo image path")
	flags.BoolP("verbose", "v", false, "Enable verbose logging")
	flags.Bool("metrics", false, "Print operation metrics on exit")

	for _, key := range []string{"adapter", "uri", "logo", "verbose", "metrics"} {
		_ = viper.BindPFlag(key, flags.Lookup(key))
	}
}

func initConfig() {
	if wd, err := os.Getwd(); err == nil {
		if root, err := manual.FindProjectRoot(wd); err == nil {
			projectRoot = root
		}
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("manual")
		viper.SetConfigType("yaml")
		if projectRoot != "" {
			viper.AddConfigPath(projectRoot)
		}
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "manual"))
		}
	}

	viper.SetEnvPrefix("MANUAL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "Error reading config:", err)
			os.Exit(1)
		}
	}
}

// resolvePath anchors a relative path at the directory of the config file in use,
// or the project root, so the CLI works from any subdirectory.
func resolvePath(path string) string {
	if path == "" || path == sqlite.MemoryPath || filepath.IsAbs(path) {
		return path
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return filepath.Join(filepath.Dir(used), path)
	}
	if projectRoot != "" {
		return filepath.Join(projectRoot, path)
	}
	return path
}

// openService builds the service from flags, config file and environment.
func openService() (*manual.Service, error) {
	adapter := viper.GetString("adapter")
	uri := viper.GetString("uri")
	if uri == "" {
		uri = manual.DefaultURI(adapter)
	}

	opts := []manual.Option{
		manual.WithAdapter(adapter),
		manual.WithLogger(slog.Default()),
	}
	if viper.GetBool("metrics") {
		registry = prometheus.NewRegistry()
		opts = append(opts, manual.WithMetrics(registry))
	}

	svc, err := manual.New(resolvePath(uri), opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open manual: %w", err)
	}
	return svc, nil
}

func openLogo() *logo.Store {
	return logo.NewStore(resolvePath(viper.GetString("logo")), slog.Default())
}

// printMetrics writes counters and histogram summaries to stderr.
func printMetrics(g prometheus.Gatherer) {
	families, err := g.Gather()
	if err != nil {
		slog.Error("failed to gather metrics", "error", err)
		return
	}

	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			var labels []string
			for _, lp := range m.GetLabel() {
				labels = append(labels, fmt.Sprintf("%s=%q", lp.GetName(), lp.GetValue()))
			}
			name := mf.GetName() + "{" + strings.Join(labels, ",") + "}"
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s %g", name, m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				h := m.GetHistogram()
				lines = append(lines, fmt.Sprintf("%s count=%d sum=%gs", name, h.GetSampleCount(), h.GetSampleSum()))
			}
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Fprintln(os.Stderr, l)
	}
}
