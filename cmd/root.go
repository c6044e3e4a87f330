// Package cmd contains the CLI entry points.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"loupe/internal/app"
	"loupe/internal/config"
	"loupe/internal/git"
	"loupe/internal/log"
	"loupe/internal/pubsub"
	"loupe/internal/tracing"
	"loupe/internal/ui/styles"
	"loupe/internal/watcher"
)

func init() {
	// Force lipgloss/termenv to query the terminal background color BEFORE
	// any Bubble Tea program starts. This prevents the terminal's OSC 11
	// response from racing with Bubble Tea's input loop and appearing as
	// garbage text.
	//
	// See: https://github.com/charmbracelet/bubbletea/issues/1036
	_ = lipgloss.HasDarkBackground()
}

var (
	version = "dev"
	cfgFile string
	debug   bool
	cfg     config.Config
)

var rootCmd = &cobra.Command{
	Use:   "loupe [path]",
	Short: "A terminal explorer for git history and working-tree changes",
	Long: `Loupe browses a repository's commit history, the files each commit
changed, and per-file diffs, with live refresh of working-tree views as
files change on disk.`,
	Version: version,
	Args:    cobra.MaximumNArgs(1),
	RunE:    runApp,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ~/.config/loupe/config.yaml)")
	rootCmd.Flags().BoolVar(&debug, "debug", false,
		"write debug logs to loupe-debug.log")
	rootCmd.Flags().Bool("no-auto-refresh", false,
		"disable automatic refresh when the working tree changes")
	rootCmd.Flags().Int("log-limit", 0,
		"maximum commits to load (0 uses the configured limit)")
}

func initConfig() {
	defaults := config.Defaults()
	viper.SetDefault("auto_refresh", defaults.AutoRefresh)
	viper.SetDefault("debounce_ms", defaults.DebounceMs)
	viper.SetDefault("log_limit", defaults.LogLimit)
	viper.SetDefault("ui.show_status_bar", defaults.UI.ShowStatusBar)
	viper.SetDefault("ui.word_diff", defaults.UI.WordDiff)
	viper.SetDefault("ui.commit_graph", defaults.UI.CommitGraph)
	viper.SetDefault("tracing.exporter", defaults.Tracing.Exporter)
	viper.SetDefault("tracing.otlp_endpoint", defaults.Tracing.OTLPEndpoint)
	viper.SetDefault("tracing.sample_rate", defaults.Tracing.SampleRate)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// Config lookup order:
		// 1. .loupe/config.yaml (current directory)
		// 2. ~/.config/loupe/config.yaml (user config)
		if _, err := os.Stat(".loupe/config.yaml"); err == nil {
			viper.SetConfigFile(".loupe/config.yaml")
		} else {
			home, _ := os.UserHomeDir()
			viper.AddConfigPath(filepath.Join(home, ".config", "loupe"))
			viper.SetConfigName("config")
			viper.SetConfigType("yaml")
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			home, homeErr := os.UserHomeDir()
			if homeErr == nil {
				defaultPath := filepath.Join(home, ".config", "loupe", "config.yaml")
				if writeErr := config.WriteDefaultConfig(defaultPath); writeErr == nil {
					viper.SetConfigFile(defaultPath)
					_ = viper.ReadInConfig()
				}
			}
			// If write fails, continue with defaults only.
		}
	}

	_ = viper.Unmarshal(&cfg)
}

func runApp(cmd *cobra.Command, args []string) error {
	if debug || os.Getenv("LOUPE_DEBUG") != "" {
		cleanup, err := log.Init("loupe-debug.log")
		if err != nil {
			return fmt.Errorf("opening debug log: %w", err)
		}
		defer cleanup()
	}

	if cfg.Tracing.Enabled && cfg.Tracing.Exporter == "file" && cfg.Tracing.FilePath == "" {
		cfg.Tracing.FilePath = config.DefaultTracesFilePath()
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if noAuto, _ := cmd.Flags().GetBool("no-auto-refresh"); noAuto {
		cfg.AutoRefresh = false
	}
	if limit, _ := cmd.Flags().GetInt("log-limit"); limit > 0 {
		cfg.LogLimit = limit
	}

	applyTheme()

	workDir := "."
	if len(args) == 1 {
		workDir = args[0]
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cli := git.NewCLIClient(workDir)
	root, err := cli.RepoRoot(ctx)
	if err != nil {
		return fmt.Errorf("opening repository at %s: %w", workDir, err)
	}

	provider, err := newTracingProvider()
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}
	defer func() { _ = provider.Shutdown(context.Background()) }()

	client := git.NewTracedClient(cli, provider.Tracer())

	// Live refresh degrades to manual when the watch cannot start.
	var listener *pubsub.ContinuousListener[watcher.Signal]
	w, err := watcher.New(watcher.Config{Root: root, Debounce: cfg.Debounce()})
	if err == nil {
		err = w.Start()
	}
	switch {
	case err == nil:
		listener = pubsub.NewContinuousListener(ctx, w.Broker())
		defer func() { _ = w.Stop() }()
	case errors.Is(err, watcher.ErrWatchUnavailable):
		log.Warn(log.CatWatcher, "running without live refresh", "error", err)
	default:
		return fmt.Errorf("starting watcher: %w", err)
	}

	model := app.New(ctx, app.Options{
		Client:     client,
		Config:     cfg,
		RepoRoot:   root,
		Listener:   listener,
		ConfigPath: viper.ConfigFileUsed(),
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running program: %w", err)
	}
	if m, ok := final.(app.Model); ok && m.FatalErr() != nil {
		return m.FatalErr()
	}
	return nil
}

func applyTheme() {
	switch cfg.Theme.Mode {
	case "light":
		lipgloss.SetHasDarkBackground(false)
	case "dark":
		lipgloss.SetHasDarkBackground(true)
	}
	if unknown := styles.ApplyOverrides(cfg.Theme.Colors); len(unknown) > 0 {
		for _, key := range unknown {
			log.Warn(log.CatConfig, "unknown theme color token", "key", key)
		}
	}
}

func newTracingProvider() (*tracing.Provider, error) {
	tc := cfg.Tracing
	if tc.Exporter == "none" {
		tc.Enabled = false
	}
	return tracing.NewProvider(tc)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string (called from main with ldflags).
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}
