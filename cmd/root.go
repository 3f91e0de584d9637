package cmd

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lhecker/threading/config"
	"github.com/lhecker/threading/database"
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	configFile string
	logLevel   string
	silent     bool

	rootCmd = &cobra.Command{
		Use:   "threading",
		Short: "Stress tests for lock-free asynchronous synchronization primitives",
	}
)

func init() {
	// By setting these members here we break an initialization loop between rootCmd (C) and rootPersistentPreRunE (R):
	// Otherwise C refers to R which in turn refers back to C, in the implementation of the silent flag.
	rootCmd.PersistentPreRunE = rootPersistentPreRunE
	rootCmd.PersistentPostRun = rootPersistentPostRun

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", `config file`)
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", `log level (debug, info, warn, error)`)
	rootCmd.PersistentFlags().BoolVarP(&silent, "silent", "s", false, `Silent or quiet mode`)
}

func rootPersistentPreRunE(cmd *cobra.Command, args []string) error {
	if silent {
		rootCmd.SilenceErrors = true
		rootCmd.SilenceUsage = true
	}

	for _, f := range []func() error{
		initConfig,
		initLogger,
		initDatabase,
	} {
		err := f()
		if err != nil {
			return err
		}
	}

	return nil
}

func rootPersistentPostRun(cmd *cobra.Command, args []string) {
	for _, f := range []func(){
		deinitDatabase,
	} {
		f()
	}
}

func initConfig() (err error) {
	if len(configFile) != 0 {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName("threading")
		viper.AddConfigPath(".")
	}

	viper.SetDefault("database_path", "threading.db")
	viper.SetDefault("log_level", "info")

	err = viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if len(configFile) == 0 && errors.As(err, &notFound) {
			singletons.Config = config.Default()
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	singletons.Config = &config.Config{}
	defer func() {
		if err != nil {
			singletons.Config = nil
		}
	}()

	err = viper.Unmarshal(
		singletons.Config,
		func(config *mapstructure.DecoderConfig) {
			config.TagName = "toml"
			config.DecodeHook = mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeHookFunc(time.RFC3339),
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			)
		},
	)
	if err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	// A config file without scenarios still gets the built-in smoke matrix.
	if len(singletons.Config.Scenarios) == 0 {
		singletons.Config.Scenarios = config.Default().Scenarios
	}

	singletons.Config.ApplyDefaults()
	return singletons.Config.Validate()
}

func initLogger() error {
	level := singletons.Config.LogLevel
	if len(logLevel) != 0 {
		level = logLevel
	}

	lvl, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}

	singletons.Logger = log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	})
	return nil
}

func initDatabase() (err error) {
	singletons.Database, err = database.NewDatabase(singletons.Config.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	return nil
}

func deinitDatabase() {
	if singletons.Database == nil {
		return
	}

	err := singletons.Database.Close()
	if err != nil {
		singletons.Logger.Error("failed to close database", "err", err)
	}
}
