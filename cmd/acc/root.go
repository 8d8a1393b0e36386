package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dshills/accepted/internal/app"
	"github.com/dshills/accepted/internal/clipboard"
	"github.com/dshills/accepted/internal/config"
	"github.com/dshills/accepted/internal/config/watcher"
	"github.com/dshills/accepted/internal/input/mode"
	"github.com/dshills/accepted/internal/integration/tool"
	"github.com/dshills/accepted/internal/syntax"
	"github.com/dshills/accepted/internal/terminal"
)

// options are the process-level settings. Language settings live in the
// configuration file instead.
type options struct {
	ConfigPath    string
	LogLevel      string
	LogFile       string
	PrefixTimeout time.Duration
	MaxRuntime    time.Duration
}

// newRootCommand builds the acc command. Flags can also be set through
// ACC_* environment variables, e.g. ACC_LOG_LEVEL=debug.
func newRootCommand(version string) *cobra.Command {
	var v *viper.Viper

	cmd := &cobra.Command{
		Use:          "acc [file]",
		Short:        "A modal editor for competitive programming",
		Long:         "acc edits one source file and formats, compiles and tests it with the tools configured for its extension.",
		Version:      version,
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions(v)
			if err != nil {
				return err
			}
			var path string
			if len(args) > 0 {
				path = args[0]
			}
			return run(cmd.Context(), opts, path)
		},
	}

	flags := cmd.Flags()
	flags.StringP("config", "c", "", "config file (default: "+config.DefaultPath()+")")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-file", "", "log file (default: "+app.DefaultLogPath()+")")
	flags.Duration("prefix-timeout", mode.DefaultPrefixTimeout, "how long the Space prefix waits for its key")
	flags.Duration("max-runtime", 0, "stop tool jobs that run longer than this (0 for no limit)")

	v = bindOptions(cmd)
	return cmd
}

// bindOptions binds the command's flags and the ACC_* environment.
func bindOptions(cmd *cobra.Command) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("acc")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(cmd.Flags())
	return v
}

func loadOptions(v *viper.Viper) (options, error) {
	opts := options{
		ConfigPath:    v.GetString("config"),
		LogLevel:      v.GetString("log-level"),
		LogFile:       v.GetString("log-file"),
		PrefixTimeout: v.GetDuration("prefix-timeout"),
		MaxRuntime:    v.GetDuration("max-runtime"),
	}

	switch strings.ToLower(opts.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return opts, fmt.Errorf("invalid log level %q (use debug, info, warn or error)", opts.LogLevel)
	}
	if opts.PrefixTimeout <= 0 {
		return opts, fmt.Errorf("prefix timeout must be positive, got %s", opts.PrefixTimeout)
	}
	if opts.MaxRuntime < 0 {
		return opts, fmt.Errorf("max runtime must not be negative, got %s", opts.MaxRuntime)
	}
	if opts.ConfigPath == "" {
		opts.ConfigPath = config.DefaultPath()
	}
	if opts.LogFile == "" {
		opts.LogFile = app.DefaultLogPath()
	}
	return opts, nil
}

// run opens path and edits it until the user quits.
func run(ctx context.Context, opts options, path string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logFile, err := app.OpenLogFile(opts.LogFile)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer logFile.Close()
	logger := app.NewLogger(app.LoggerConfig{
		Level:  app.ParseLogLevel(opts.LogLevel),
		Output: logFile,
		Prefix: "acc",
	})

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	appOpts := []app.Option{
		app.WithClipboard(clipboard.Default()),
		app.WithHighlighter(syntax.NewChroma()),
		app.WithLogger(logger),
		app.WithPolicy(tool.Policy{MaxRuntime: opts.MaxRuntime}),
		app.WithPrefixTimeout(opts.PrefixTimeout),
	}
	if w, err := watcher.New(opts.ConfigPath); err != nil {
		logger.Warn("not watching %s: %v", opts.ConfigPath, err)
	} else {
		defer w.Close()
		appOpts = append(appOpts, app.WithConfigWatcher(w))
	}

	scr, err := terminal.New()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	appOpts = append(appOpts, app.WithRenderer(scr))

	editor, err := app.New(cfg, path, appOpts...)
	if err != nil {
		return err
	}

	if err := scr.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer scr.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	err = editor.Run(ctx, scr.Keys(ctx))
	if errors.Is(err, context.Canceled) {
		logger.Info("stopped by signal")
		return nil
	}
	return err
}
