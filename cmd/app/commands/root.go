package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"road-vision/internal/config"
	"road-vision/internal/core"
	"road-vision/internal/detect"
	"road-vision/internal/io"
	"road-vision/internal/lane"
	"road-vision/internal/metrics"
	"road-vision/internal/pipeline"
	"road-vision/internal/render"
	"road-vision/internal/stream"
)

const AppVersion = "1.0.0"

const (
	// ExitFailure is returned for bad input and unavailable resources.
	ExitFailure = -1
	// ExitRuntime is returned when processing fails after startup.
	ExitRuntime = 1
)

type options struct {
	cfgFile  string
	show     bool
	store    string
	debug    bool
	headless bool
}

// NewRootCmd builds the command line. v receives the flag bindings.
func NewRootCmd(v *viper.Viper) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "road-vision <video_file> [--show] [--store <output_file>]",
		Short: "Lane overlay and object detection over a video stream",
		Long: `road-vision reads a video file, capture device or still image and, for
every frame, highlights the current road lane and marks pedestrians,
vehicles and traffic signals.

Keys while playing:
  q, ESC   quit
  space    toggle lane and object processing`,
		Version:       AppVersion,
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 1 {
				return fmt.Errorf("%w: expected exactly one video source, got %d", core.ErrInput, len(args))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return run(cmd.Context(), v, opts, args[0])
		},
	}

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", core.ErrInput, err)
	})

	flags := cmd.Flags()
	flags.BoolVar(&opts.show, "show", false, "show intermediate results in a second window")
	flags.StringVar(&opts.store, "store", "", "write annotated frames to this video file")
	flags.StringVar(&opts.cfgFile, "config", "", "YAML configuration file")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.BoolVar(&opts.debug, "debug", false, "enable debug mode with verbose logging")
	flags.BoolVar(&opts.headless, "headless", false, "do not open any window")
	flags.String("serve", "", "serve an HTTP preview on this address, e.g. :8080")

	v.BindPFlag("log_level", flags.Lookup("log-level"))
	v.BindPFlag("output.serve_addr", flags.Lookup("serve"))

	return cmd
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	cmd := NewRootCmd(viper.New())
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return 0
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, core.ErrInput), errors.Is(err, core.ErrResource):
		return ExitFailure
	default:
		return ExitRuntime
	}
}

func run(ctx context.Context, v *viper.Viper, opts *options, uri string) error {
	cfg, err := config.LoadWith(v, opts.cfgFile)
	if err != nil {
		return err
	}

	logger := initLogger(opts.debug, cfg.LogLevel, nil)
	entry := logger.WithField("run_id", uuid.NewString())
	entry.WithFields(logrus.Fields{
		"version":  AppVersion,
		"source":   uri,
		"show":     opts.show,
		"store":    opts.store,
		"headless": opts.headless,
	}).Info("Starting road vision")

	source, err := io.OpenSource(uri, entry)
	if err != nil {
		entry.WithError(err).Error("Cannot open source")
		return err
	}
	defer source.Close()

	timings := metrics.NewStageTimings(120)

	bank, err := detect.LoadRegistry(cfg.Detectors, entry)
	if err != nil {
		entry.WithError(err).Error("Cannot load classifiers")
		return err
	}
	defer bank.Close()
	bank.WithObserver(timings.Observe)

	lanes := lane.NewDetector(cfg, entry).WithObserver(timings.Observe)

	deps := pipeline.Deps{
		Source:    source,
		Lanes:     lanes,
		Detector:  bank,
		Annotator: render.NewAnnotator(),
		FPS:       metrics.NewFPSCounter(metrics.SystemClock),
		Timings:   timings,
	}

	if opts.store != "" {
		w, h := source.Size()
		sink, err := io.OpenSink(opts.store, cfg.Output.Codec, source.FPS(), w, h, entry)
		if err != nil {
			entry.WithError(err).Error("Cannot open output")
			return err
		}
		deps.Sink = sink
	}

	display := io.NewDisplay(opts.show, opts.headless)
	defer display.Close()
	deps.Display = display

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Output.ServeAddr != "" {
		srv := stream.NewServer(cfg.Output.ServeAddr, cfg.Output.JPEGQuality, entry)
		go func() {
			if err := srv.Start(ctx); err != nil {
				entry.WithError(err).Error("Preview server stopped")
			}
		}()
		deps.Preview = srv
	}

	driver := pipeline.NewDriver(deps, pipeline.Options{Show: opts.show, Headless: opts.headless}, entry)
	if err := driver.Run(ctx); err != nil {
		return err
	}

	state := driver.State()
	entry.WithFields(logrus.Fields{
		"frames":      state.Frames,
		"sink_errors": state.SinkErrors,
	}).Info("Application shutting down gracefully")
	return nil
}
