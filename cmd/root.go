package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"keysim/internal/logging"
)

var version = "0.1.0"

// globalOptions holds the persistent flags shared by every command
type globalOptions struct {
	log      bool
	logLevel string
	logDir   string

	logger *logging.Logger
}

func newRootCmd(opts *globalOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "keysim",
		Short: "Type text or files into the focused window",
		Long: `keysim simulates keyboard input on Windows.

It types a configured text, or a base64 script that rebuilds a file on the
target machine, into whatever window has focus. Runs can be paused, resumed
and stopped from hotkeys, the tray, or the local control server.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setupLogging(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVar(&opts.log, "log", false, "write logs to the console and the log file")
	pf.StringVar(&opts.logLevel, "log-level", "info", "console log level (debug, info, warning, error)")
	pf.StringVar(&opts.logDir, "log-dir", logging.DefaultDir, "directory for "+logging.FileName)

	root.SetVersionTemplate("keysim {{.Version}}\n")
	root.AddCommand(
		newRunCmd(opts),
		newScriptCmd(),
		newInitCmd(),
		newCtlCmd(),
		newWatchCmd(opts),
		newKeysCmd(),
	)
	return root
}

func (o *globalOptions) setupLogging(cmd *cobra.Command) error {
	if !o.log {
		o.logger = logging.Discard()
		slog.SetDefault(o.logger.Logger)
		return nil
	}

	level, err := logging.ParseLevel(o.logLevel)
	if err != nil {
		return err
	}
	logger, err := logging.New(logging.Options{
		Level:   level,
		File:    true,
		Dir:     o.logDir,
		Console: cmd.ErrOrStderr(),
	})
	if err != nil {
		return fmt.Errorf("setting up logging: %w", err)
	}
	o.logger = logger
	slog.SetDefault(logger.Logger)
	return nil
}

// component returns a tagged logger, or a discarding one before setup
func (o *globalOptions) component(name string) *slog.Logger {
	if o.logger == nil {
		return logging.Discard().Logger
	}
	return o.logger.Component(name)
}

func (o *globalOptions) close() {
	if o.logger != nil {
		o.logger.Close()
	}
}

// Execute runs the root command.
func Execute() error {
	opts := &globalOptions{}
	defer opts.close()
	return newRootCmd(opts).Execute()
}
