package main

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/username/ruwps/internal/config"
	"github.com/username/ruwps/internal/daemon"
	"github.com/username/ruwps/pkg/ruwps"
)

var (
	configPath string
	debug      bool
	logger     *zap.Logger
)

// Windows delivers window messages to the thread that created the window.
func init() { runtime.LockOSThread() }

func main() {
	rootCmd := &cobra.Command{
		Use:   "ruwps-demo",
		Short: "Windows tray application runtime demo",
		Long:  "Run a notification-area application described by a YAML file, or show a single alert or prompt",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load config to get log file path
			cfg, err := config.Load(configPath)
			if err == nil && cfg.Log.File != "" {
				logger, err = initFileLogger(cfg.Log.File, cfg.Log.Level)
				if err != nil {
					initLogger() // Fallback to console
				}
			} else {
				initLogger() // Default console logger
			}
			ruwps.DebugMode(debug)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Config file path")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Log runtime internals to stderr")

	rootCmd.AddCommand(runCmd(), alertCmd(), promptCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the tray application described by the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			app, err := buildApp(cfg, logger)
			if err != nil {
				return err
			}
			return daemon.NewDaemon(app, logger).Start(context.Background())
		},
	}
}

func alertCmd() *cobra.Command {
	var cancel string
	cmd := &cobra.Command{
		Use:   "alert TITLE [MESSAGE]",
		Short: "Show a blocking alert and print the pressed button",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := ""
			if len(args) == 2 {
				message = args[1]
			}
			var opts []ruwps.ButtonOption
			if cmd.Flags().Changed("cancel") {
				opts = append(opts, ruwps.Cancel(cancel))
			}
			resp, err := ruwps.Alert(args[0], message, opts...)
			if err != nil {
				return fmt.Errorf("failed to show alert: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Clicked)
			return nil
		},
	}
	cmd.Flags().StringVar(&cancel, "cancel", "", "Add a cancel button with this label (empty for the system label)")
	return cmd
}

func promptCmd() *cobra.Command {
	var defaultText, ok, cancel string
	var buttons []string
	cmd := &cobra.Command{
		Use:   "prompt TITLE MESSAGE",
		Short: "Ask for a line of text and print it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := []ruwps.ButtonOption{ruwps.OK(ok), ruwps.Cancel(cancel)}
			w := ruwps.NewWindow(args[0], args[1], defaultText, opts...)
			w.AddButtons(buttons...)
			resp, err := w.Run()
			if err != nil {
				return fmt.Errorf("failed to show prompt: %w", err)
			}
			if !resp.Accepted() {
				return fmt.Errorf("prompt dismissed (button %d)", resp.Button)
			}
			fmt.Fprintln(cmd.OutOrStdout(), resp.Text)
			return nil
		},
	}
	cmd.Flags().StringVar(&defaultText, "default", "", "Initial text")
	cmd.Flags().StringVar(&ok, "ok", "", "Label of the accept button")
	cmd.Flags().StringVar(&cancel, "cancel", "", "Label of the cancel button")
	cmd.Flags().StringSliceVar(&buttons, "button", nil, "Extra buttons")
	return cmd
}

func initLogger() {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var err error
	logger, err = config.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
}

func initFileLogger(logFile string, level string) (*zap.Logger, error) {
	// Setup lumberjack for log rotation
	logWriter := &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var zapLevel zapcore.Level
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(logWriter),
		zapLevel,
	)

	return zap.New(core), nil
}
