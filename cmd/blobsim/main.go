package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/san-kum/blobsim/internal/config"
	"github.com/san-kum/blobsim/internal/sim"
	"github.com/san-kum/blobsim/internal/stream"
	"github.com/san-kum/blobsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	variant    string
	preset     string
	configFile string
	dataDir    string
	logLevel   string

	duration     float64
	scenarioFile string
	sampleEvery  int
	idle         bool

	addr  string
	theme string

	// sweep / montecarlo / tune
	sweepTime    float64
	mcTime       float64
	tuneTime     float64
	sweepParam   string
	sweepMin     float64
	sweepMax     float64
	sweepSteps   int
	trials       int
	perturbation float64
	seed         int64
	grid         []string
	objective    string

	// run inspection
	body   int
	axis   string
	frame  int
	output string

	logger *log.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "blobsim",
		Short:         "draggable spring-damper bodies that settle and replay",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := newLogger(logLevel)
			if err != nil {
				return err
			}
			logger = l
			return nil
		},
		RunE: runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&variant, "variant", config.VariantPair, "body layout (pair, quad)")
	pf.StringVar(&preset, "preset", "", "named preset of the variant")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	pf.StringVar(&logLevel, "log-level", config.DefaultLogLevel, "debug, info, warn or error")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "drag the bodies around in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	liveCmd.Flags().StringVar(&theme, "theme", "", "colour theme ("+strings.Join(viz.ThemeNames(), ", ")+")")
	rootCmd.Flags().AddFlagSet(liveCmd.Flags())

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "stream the simulation to websocket clients",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets of every variant",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, v := range config.Variants {
				fmt.Printf("%s:\n", v)
				for _, p := range config.ListPresets(v) {
					fmt.Printf("  %s\n", p)
				}
			}
			return nil
		},
	}

	rootCmd.AddCommand(liveCmd, serveCmd, presetsCmd)
	rootCmd.AddCommand(headlessCommands()...)
	rootCmd.AddCommand(inspectCommands()...)

	if err := rootCmd.Execute(); err != nil {
		if logger == nil {
			logger = log.New(os.Stderr)
		}
		logger.Error(err)
		if errors.Is(err, sim.ErrSetup) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func newLogger(level string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("--log-level: %w", err)
	}
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		Prefix:          "blobsim",
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
	}), nil
}

// loadConfig resolves the configuration from --config, then --preset, then
// the variant defaults. Explicit flags win over the file.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var cfg *config.Config
	switch {
	case configFile != "":
		c, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		variantFlag := ""
		if cmd.Flags().Changed("variant") {
			variantFlag = variant
		}
		if err := checkConfigFlags(c, preset, variantFlag); err != nil {
			return nil, err
		}
		cfg = c
	case preset != "":
		cfg = config.GetPreset(variant, preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset %q for %s (available: %v)", preset, variant, config.ListPresets(variant))
		}
	default:
		c, err := config.DefaultConfig(variant)
		if err != nil {
			return nil, err
		}
		cfg = c
	}

	if cmd.Flags().Changed("data") {
		cfg.Host.DataDir = dataDir
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Host.LogLevel = logLevel
	}
	if lvl, err := log.ParseLevel(cfg.Host.LogLevel); err == nil && logger != nil {
		logger.SetLevel(lvl)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debug("config", "variant", cfg.Variant, "preset", preset, "file", configFile)
	return cfg, nil
}

// checkConfigFlags rejects --preset and a mismatched --variant next to
// --config, since the file fixes both.
func checkConfigFlags(cfg *config.Config, preset, variantFlag string) error {
	if preset != "" {
		return fmt.Errorf("--preset %q cannot be combined with --config", preset)
	}
	if variantFlag != "" && variantFlag != cfg.Variant {
		return fmt.Errorf("--variant %s conflicts with config variant %s", variantFlag, cfg.Variant)
	}
	return nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := sim.New(cfg.Params())
	if err != nil {
		return err
	}
	if theme == "" {
		theme = cfg.Host.Theme
	}
	title := cfg.Variant
	if preset != "" {
		title += " · " + preset
	}
	return viz.Run(s, viz.Options{Title: title, TickHz: cfg.Host.TickHz, Theme: theme})
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	s, err := sim.New(cfg.Params())
	if err != nil {
		return err
	}
	if addr == "" {
		addr = cfg.Host.Listen
	}

	ctx, cancel := signalContext()
	defer cancel()

	session := stream.NewSession(s, stream.SessionOptions{
		Variant:        cfg.Variant,
		TickHz:         cfg.Host.TickHz,
		BroadcastEvery: cfg.Host.BroadcastEvery,
		Logger:         logger.With("component", "session"),
	})
	return stream.ListenAndServe(ctx, addr, session, logger.With("component", "server"))
}
