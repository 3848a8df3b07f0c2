package main

import (
	"context"
	"fmt"
	"io"
	"os"

	breedcache "github.com/ericselin/breedcache"
	"github.com/ericselin/breedcache/cache"
	"github.com/ericselin/breedcache/dogapi"
	"github.com/ericselin/breedcache/local"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type options struct {
	configFilename string
	verbosityTrace bool
	logFilename    string
	config         Config

	logger  zerolog.Logger
	logFile *os.File
}

func newOptions() *options {
	return &options{config: defaultConfig()}
}

func newRootCmd(o *options) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "breedcache",
		Short: "Look up dog sub-breeds through a cache",
		Long: `breedcache looks up the sub-breeds of dog breeds from the dog.ceo API.

Successful lookups are cached for the lifetime of the process.
Breeds that are not found are looked up again every time.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.init(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&o.configFilename, "config", "", "Path to config file")
	flags.BoolVar(&o.verbosityTrace, "vv", false, "Verbosity: trace logging")
	flags.StringVar(&o.logFilename, "log-file", "", "Log file to use (in addition to stderr)")
	flags.BoolVar(&o.config.Local, "local", o.config.Local, "Use the built-in breed table instead of the API")
	flags.StringVar(&o.config.Store, "store", o.config.Store, "Cache store to use (memory or sqlite)")
	flags.StringVar(&o.config.BaseURL, "base-url", dogapi.DefaultBaseURL, "Base URL of the breed API")

	rootCmd.AddCommand(newCountCmd(o))
	rootCmd.AddCommand(newServeCmd(o))
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// execute runs the command and then releases what init opened.
// Cobra skips post-run hooks when a command fails, so this is done here.
func execute(ctx context.Context, o *options, cmd *cobra.Command) error {
	defer o.close()
	return cmd.ExecuteContext(ctx)
}

func (o *options) close() {
	if o.logFile != nil {
		o.logFile.Close()
	}
}

// init loads the config file, lets flags override it and sets up logging.
func (o *options) init(cmd *cobra.Command) error {
	if o.configFilename != "" {
		config, err := getConfig(o.configFilename)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		// flags override config
		flags := cmd.Flags()
		if flags.Changed("local") {
			config.Local = o.config.Local
		}
		if flags.Changed("store") {
			config.Store = o.config.Store
		}
		if flags.Changed("base-url") || config.BaseURL == "" {
			config.BaseURL = o.config.BaseURL
		}
		if flags.Changed("port") {
			config.Port = o.config.Port
		}
		o.config = config
	}
	if err := o.config.validate(); err != nil {
		return err
	}

	// set log level
	logLevel := zerolog.DebugLevel
	if o.verbosityTrace {
		logLevel = zerolog.TraceLevel
	}

	// set up log output to stderr
	// also output to logfile if specified
	logOutputs := []io.Writer{zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}}
	if o.logFilename != "" {
		logFile, err := os.OpenFile(o.logFilename, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		o.logFile = logFile
		logOutputs = append(logOutputs, logFile)
	}
	o.logger = zerolog.New(zerolog.MultiLevelWriter(logOutputs...)).
		Level(logLevel).
		With().Timestamp().Str("version", version).Logger()

	cmd.SetContext(o.logger.WithContext(cmd.Context()))
	return nil
}

// provider builds the caching provider described by the config.
// The returned function releases the cache store.
func (o *options) provider(concurrent bool) (*breedcache.CachingProvider, func() error, error) {
	var upstream breedcache.Provider
	if o.config.Local {
		upstream = local.Default()
	} else {
		upstream = dogapi.New(dogapi.Config{
			BaseURL: o.config.BaseURL,
			Logger:  &o.logger,
		})
	}

	var store cache.Store
	closer := func() error { return nil }
	switch o.config.Store {
	case "sqlite":
		sqlite, err := cache.NewSQLiteStore()
		if err != nil {
			return nil, nil, err
		}
		store = sqlite
		closer = sqlite.Close
	default:
		store = cache.NewMemStore()
	}

	return breedcache.NewCachingProvider(breedcache.Config{
		Provider:   upstream,
		Store:      store,
		Logger:     &o.logger,
		Concurrent: concurrent,
	}), closer, nil
}
