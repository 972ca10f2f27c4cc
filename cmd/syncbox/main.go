package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/entrydrive/syncbox/internal/client/config"
	"github.com/entrydrive/syncbox/internal/utils"
	"github.com/entrydrive/syncbox/internal/version"
)

var (
	home, _        = os.UserHomeDir()
	defaultLogFile = filepath.Join(home, ".syncbox", "logs", "syncbox.log")
	configFileName = "config"

	// logLevel gates the terminal handler; the file handler always gets debug.
	logLevel = new(slog.LevelVar)
)

var rootCmd = &cobra.Command{
	Use:     "syncbox",
	Short:   "Inspect and manage entry sync state on a synchronized drive",
	Version: version.Detailed(),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig(cmd)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().SortFlags = false
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "syncbox config file")
	rootCmd.PersistentFlags().StringP("datadir", "d", config.DefaultDataDir, "synchronized drive root")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
}

func main() {
	if err := setupLogging(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func setupLogging() error {
	if err := utils.EnsureParent(defaultLogFile); err != nil {
		return err
	}
	file, err := os.OpenFile(defaultLogFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	stderrHandler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      logLevel,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	})
	fileHandler := slog.NewTextHandler(file, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	})

	slog.SetDefault(slog.New(utils.NewFanoutHandler(stderrHandler, fileHandler)))
	return nil
}

func loadConfig(cmd *cobra.Command) error {
	if f := cmd.Flag("config"); f != nil && f.Changed {
		viper.SetConfigFile(f.Value.String())
	} else {
		viper.AddConfigPath(filepath.Join(home, ".syncbox"))
		viper.AddConfigPath(filepath.Join(home, ".config/syncbox"))
		viper.SetConfigName(configFileName)
		viper.SetConfigType("json")
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return fmt.Errorf("config read '%s': %w", viper.ConfigFileUsed(), err)
		}
	}

	flags := cmd.Root().PersistentFlags()
	viper.BindPFlag("data_dir", flags.Lookup("datadir"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))

	viper.SetEnvPrefix("SYNCBOX")
	viper.AutomaticEnv()

	return nil
}

// clientConfig materializes and validates the effective config from viper.
func clientConfig() (*config.Config, error) {
	cfg := &config.Config{
		Path:     viper.ConfigFileUsed(),
		DataDir:  viper.GetString("data_dir"),
		LogLevel: viper.GetString("log_level"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, err := cfg.SlogLevel()
	if err != nil {
		return nil, err
	}
	logLevel.Set(level)

	return cfg, nil
}
