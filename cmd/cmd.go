package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/thiagokokada/jjk-go/internal/buildinfo"
	"github.com/thiagokokada/jjk-go/internal/config"
	"github.com/thiagokokada/jjk-go/internal/jj"
	"github.com/thiagokokada/jjk-go/internal/jj/backend"
	"github.com/thiagokokada/jjk-go/internal/tui"
)

type options struct {
	path            string
	configPath      string
	jjBin           string
	mode            string
	revset          string
	logFile         string
	noWatch         bool
	noSyntax        bool
	ignoreJJVersion bool
	verbose         bool
	showVersion     bool
}

func Run() error {
	return run(os.Args[1:], os.Stdout)
}

func run(args []string, stdout io.Writer) error {
	root := newRootCommand(stdout, tui.Run)
	root.SetArgs(args)
	return root.Execute()
}

type runFunc func(tui.RunConfig) error

func newRootCommand(stdout io.Writer, runUI runFunc) *cobra.Command {
	var opts options
	cmd := &cobra.Command{
		Use:           "jjk [path]",
		Short:         "Terminal browser for jj repositories",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.showVersion {
				fmt.Fprintln(stdout, buildinfo.VersionWithTags())
				return nil
			}
			if len(args) > 0 {
				opts.path = args[0]
			}
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			return start(opts, cfg, runUI)
		},
	}
	cmd.SetOut(stdout)

	f := cmd.Flags()
	f.StringVarP(&opts.path, "path", "p", ".", "path to the jj repository")
	f.StringVar(&opts.configPath, "config", "", "path to the configuration file")
	f.StringVar(&opts.jjBin, "jj-bin", "", "jj executable to run")
	f.StringVar(&opts.mode, "mode", config.ThemeAuto, "color mode: auto, light, or dark")
	f.StringVarP(&opts.revset, "revset", "r", "", "revset shown in the log tab")
	f.StringVar(&opts.logFile, "log-file", "", "file receiving debug logs")
	f.BoolVar(&opts.noWatch, "nowatch", false, "disable automatic reload when repository changes")
	f.BoolVar(&opts.noSyntax, "nosyntax", false, "disable syntax highlighting in git diffs")
	f.BoolVar(&opts.ignoreJJVersion, "ignore-jj-version", false, "skip the minimum jj version check")
	f.BoolVar(&opts.verbose, "verbose", false, "enable verbose logging")
	f.BoolVar(&opts.showVersion, "version", false, "print version information and exit")
	return cmd
}

// loadConfig reads the settings file and applies the flags the user set on
// top of it.
func loadConfig(cmd *cobra.Command, opts options) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			slog.Debug("no default config path", slog.Any("error", err))
		}
	}
	cfg := config.Default()
	if path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return nil, err
		}
	}
	f := cmd.Flags()
	if f.Changed("jj-bin") {
		cfg.JJBin = opts.jjBin
	}
	if f.Changed("mode") {
		cfg.Theme = opts.mode
	}
	if f.Changed("revset") {
		cfg.Revset = opts.revset
	}
	if f.Changed("log-file") {
		cfg.LogFile = opts.logFile
	}
	if opts.noWatch {
		cfg.Watch = false
	}
	if opts.noSyntax {
		cfg.Syntax = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setupLogging(path string, verbose bool) (io.Closer, error) {
	if path == "" {
		path = config.DefaultLogFile()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})))
	return f, nil
}

func start(opts options, cfg *config.Config, runUI runFunc) error {
	logs, err := setupLogging(cfg.LogFile, opts.verbose)
	if err != nil {
		return err
	}
	defer logs.Close()

	dir, err := filepath.Abs(opts.path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}
	runner := backend.NewRunner(cfg.JJBin, dir)
	if !opts.ignoreJJVersion {
		version, err := runner.CheckVersion()
		if err != nil {
			return err
		}
		slog.Info("jj version", slog.String("version", version))
	}
	env, err := jj.OpenEnv(runner)
	if err != nil {
		if errors.Is(err, jj.ErrNoRepository) {
			return fmt.Errorf("%s: %w", dir, err)
		}
		return err
	}
	runner.Root = env.Root
	slog.Info("opened repository",
		slog.String("root", env.Root),
		slog.String("version", buildinfo.VersionWithTags()),
	)

	return runUI(tui.RunConfig{
		Service: jj.NewService(runner),
		History: runner.History,
		Env:     env,
		Options: tui.Options{
			Theme:  tui.ThemePreferenceFromString(cfg.Theme),
			Syntax: cfg.Syntax,
			Revset: cfg.Revset,
		},
		IdleInterval: cfg.IdleInterval,
		NotifyDelay:  cfg.NotifyDelay,
		Watch:        cfg.Watch,
	})
}
